// Package book holds the canonical data model exchanged by every stage of the
// search pipeline.
package book

// Condition is the physical condition a provider reports for an offer.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionUsed    Condition = "used"
	ConditionUnknown Condition = "unknown"
)

// CanonicalBook is the provider-agnostic book record.
// Pointer fields distinguish "not set" from the zero value.
type CanonicalBook struct {
	// IdentityHint is a strong identifier (ISBN-13) used preferentially for grouping.
	IdentityHint *string `json:"identityHint" yaml:"identityHint"`

	Title string `json:"title" yaml:"title"`

	// Authors keeps provider order and is never nil.
	Authors []string `json:"authors" yaml:"authors"`

	Description      *string `json:"description" yaml:"description"`
	CoverImageURL    *string `json:"coverImageUrl" yaml:"coverImageUrl"`
	FirstPublishYear *int    `json:"firstPublishYear" yaml:"firstPublishYear"`

	// Subjects is a set: sorted and free of duplicates.
	Subjects []string `json:"subjects" yaml:"subjects"`

	// Category is a single label derived from the subjects, nil when unmappable.
	Category *string `json:"category" yaml:"category"`

	Condition Condition `json:"condition" yaml:"condition"`
	Price     *float64  `json:"price" yaml:"price"`
	Currency  *string   `json:"currency" yaml:"currency"`

	// SourceID names the adapter that produced the record. Only merge priority uses it.
	SourceID string `json:"sourceId" yaml:"sourceId"`

	// AffiliateURL is only ever set by affiliate enrichment.
	AffiliateURL *string `json:"affiliateUrl" yaml:"affiliateUrl"`
}

// FirstAuthor returns the first listed author or "" when there is none.
func (b *CanonicalBook) FirstAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// RawRecord is one provider response item mapped onto loosely-typed fields.
// Adapters fill what their wire format offers; the normalizer turns it into a
// CanonicalBook.
type RawRecord struct {
	Source string

	// ISBNs in whatever form the provider reports them, preferred first.
	ISBNs []string

	Title       string
	Authors     []string
	Description string
	CoverURL    string

	// PublishDate is the provider's date string ("1965", "1965-08-01", "Aug 1965").
	PublishDate string
	// PublishYear is set when the provider reports a bare year.
	PublishYear int

	Subjects   []string
	Genres     []string
	Categories []string

	Condition string
	Price     float64
	Currency  string
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
