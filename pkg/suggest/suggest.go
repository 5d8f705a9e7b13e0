// Package suggest proposes alternative queries when a search comes back
// empty: common Arabic spelling corrections first, then related product
// terms for a few staple categories.
package suggest

import (
	"slices"
	"strings"
)

// MaxSuggestions caps every suggestion list shown to the user.
const MaxSuggestions = 4

type correction struct {
	from, to string
}

// corrections is matched in order against the lowercased query.
var corrections = []correction{
	{"ارز", "أرز"},
	{"سكار", "سكر"},
	{"زيت", "زيت طبخ"},
	{"لبن", "حليب"},
	{"خبز", "عيش"},
	{"شامبو", "شامبو للشعر"},
	{"صابون", "صابون استحمام"},
}

type category struct {
	keywords []string
	related  []string
}

var categories = []category{
	{keywords: []string{"أرز", "rice"}, related: []string{"أرز مصري", "أرز أبيض", "أرز بسمتي"}},
	{keywords: []string{"زيت", "oil"}, related: []string{"زيت عباد الشمس", "زيت الذرة", "زيت الزيتون"}},
	{keywords: []string{"سكر", "sugar"}, related: []string{"سكر أبيض", "سكر بني", "سكر ناعم"}},
}

// Suggest returns up to MaxSuggestions alternative queries for query.
// The result is deterministic and never nil.
func Suggest(query string) []string {
	q := strings.ToLower(query)
	out := make([]string, 0, MaxSuggestions)

	for _, c := range corrections {
		if strings.Contains(q, c.from) {
			out = append(out, c.to)
		}
	}

	for _, cat := range categories {
		if slices.ContainsFunc(cat.keywords, func(k string) bool { return strings.Contains(q, k) }) {
			out = append(out, cat.related...)
		}
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// Merge concatenates suggestion lists in priority order, drops blanks and
// exact duplicates, and caps the result at MaxSuggestions.
func Merge(lists ...[]string) []string {
	out := make([]string, 0, MaxSuggestions)
	for _, list := range lists {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" || slices.Contains(out, s) {
				continue
			}
			out = append(out, s)
			if len(out) == MaxSuggestions {
				return out
			}
		}
	}
	return out
}
