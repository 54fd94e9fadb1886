package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/shelfsearch/internal/book"
	"github.com/lepinkainen/shelfsearch/internal/search"
	"github.com/lepinkainen/shelfsearch/internal/tui"
)

var (
	stdout io.Writer = os.Stdout
	browse           = tui.Browse
)

// SearchCmd represents the search command
type SearchCmd struct {
	Title       string `short:"t" help:"Title to search for"`
	Author      string `short:"a" help:"Author to search for"`
	Category    string `short:"c" help:"Category label to filter on (e.g. fantasy)"`
	Subject     string `short:"s" help:"Subject to search for"`
	Condition   string `help:"Offer condition: any, new or used" default:"any"`
	Sort        string `help:"Result order: relevance, newest or author_az" default:"relevance"`
	Page        int    `short:"p" help:"Result page" default:"1"`
	Format      string `short:"f" help:"Output format: table, json or yaml" default:"table" enum:"table,json,yaml"`
	Interactive bool   `short:"i" help:"Browse results in an interactive terminal UI"`
}

func (s *SearchCmd) query() book.SearchQuery {
	return book.SearchQuery{
		Title:     s.Title,
		Author:    s.Author,
		Category:  s.Category,
		Subject:   s.Subject,
		Condition: s.Condition,
		Sort:      s.Sort,
		Page:      s.Page,
	}
}

func (s *SearchCmd) Run(ctx context.Context) error {
	a := newApp(slog.Default())
	defer a.Close()

	if s.Interactive {
		return s.browse(ctx, a.service)
	}

	result, err := a.service.Search(ctx, s.query())
	if err != nil {
		return err
	}
	return writeResult(stdout, s.Format, result)
}

// browse pages through results until the user picks a book or quits.
func (s *SearchCmd) browse(ctx context.Context, svc *search.Service) error {
	q := s.query()
	label := describeQuery(q)

	for {
		result, err := svc.Search(ctx, q)
		if err != nil {
			return err
		}

		choice, err := browse(label, result)
		if err != nil {
			return fmt.Errorf("interactive browser failed: %w", err)
		}

		switch choice.Action {
		case tui.ActionNextPage:
			q.Page++
		case tui.ActionPrevPage:
			q.Page--
		case tui.ActionSelected:
			return writeBook(stdout, *choice.Selection)
		default:
			return nil
		}
	}
}

func describeQuery(q book.SearchQuery) string {
	var parts []string
	for _, f := range []struct{ name, value string }{
		{"title", q.Title},
		{"author", q.Author},
		{"category", q.Category},
		{"subject", q.Subject},
	} {
		if strings.TrimSpace(f.value) != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", f.name, strings.TrimSpace(f.value)))
		}
	}
	return strings.Join(parts, " ")
}

func writeResult(w io.Writer, format string, result book.SearchResult) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return enc.Close()
	default:
		return writeTable(w, result)
	}
}

func writeTable(w io.Writer, result book.SearchResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TITLE\tAUTHORS\tYEAR\tCONDITION\tPRICE\tCATEGORY")
	for _, b := range result.Items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.Title,
			strings.Join(b.Authors, ", "),
			optionalInt(b.FirstPublishYear),
			b.Condition,
			tui.FormatPrice(b),
			optionalString(b.Category))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := result.Pagination
	_, _ = fmt.Fprintf(w, "\nPage %d of %d (%d results)\n", p.CurrentPage, p.TotalPages, p.TotalResults)
	for _, e := range result.Errors {
		_, _ = fmt.Fprintf(w, "! %s\n", e)
	}
	return nil
}

func writeBook(w io.Writer, b book.CanonicalBook) error {
	_, _ = fmt.Fprintf(w, "%s\n", b.Title)
	if len(b.Authors) > 0 {
		_, _ = fmt.Fprintf(w, "  by %s\n", strings.Join(b.Authors, ", "))
	}
	_, _ = fmt.Fprintf(w, "  %s\n", tui.FormatMetadata(b, 0))
	_, _ = fmt.Fprintf(w, "  price: %s\n", tui.FormatPrice(b))
	if b.AffiliateURL != nil {
		_, _ = fmt.Fprintf(w, "  buy: %s\n", *b.AffiliateURL)
	}
	if b.Description != nil {
		_, _ = fmt.Fprintf(w, "\n%s\n", *b.Description)
	}
	return nil
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func optionalString(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}
