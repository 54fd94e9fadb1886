package normalize

import "strings"

type categoryRule struct {
	keyword string
	label   string
}

// categoryTable is checked in order and the first keyword found wins, so
// compound genres have to be listed before their parts.
var categoryTable = []categoryRule{
	{"science fiction", "science fiction"},
	{"sci-fi", "science fiction"},
	{"nonfiction", "nonfiction"},
	{"non-fiction", "nonfiction"},
	{"fantasy", "fantasy"},
	{"mystery", "mystery"},
	{"detective", "mystery"},
	{"thriller", "thriller"},
	{"suspense", "thriller"},
	{"romance", "romance"},
	{"horror", "horror"},
	{"young adult", "young adult"},
	{"juvenile", "children"},
	{"children", "children"},
	{"biography", "biography"},
	{"memoir", "biography"},
	{"history", "history"},
	{"poetry", "poetry"},
	{"science", "science"},
	{"fiction", "fiction"},
}

// Category maps the raw subject, genre and category fields onto one label.
// It returns "" when no keyword matches.
func Category(fields ...[]string) string {
	var parts []string
	for _, f := range fields {
		parts = append(parts, f...)
	}
	if len(parts) == 0 {
		return ""
	}
	haystack := strings.ToLower(strings.Join(parts, " | "))

	for _, rule := range categoryTable {
		if strings.Contains(haystack, rule.keyword) {
			return rule.label
		}
	}
	return ""
}

// Labels lists every category label in table order without duplicates.
func Labels() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(categoryTable))
	for _, rule := range categoryTable {
		if !seen[rule.label] {
			seen[rule.label] = true
			out = append(out, rule.label)
		}
	}
	return out
}
