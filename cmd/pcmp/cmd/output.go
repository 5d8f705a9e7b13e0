package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/donaldgifford/price-compare/internal/present"
	"github.com/donaldgifford/price-compare/internal/session"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

const nameWidth = 40

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// printView writes the heading and one row per offer. The cheapest in-stock
// offers are marked with a star.
func printView(w io.Writer, v *session.View) error {
	tw := newTabWriter(w)
	lang := v.Language

	tw.writef("%s\n\n", present.ResultsHeading(v.Query, v.Total, lang))

	if v.Total > 0 && len(v.Rows) == 0 {
		none := present.NoMatches(lang)
		tw.writef("%s\n%s\n", none.Title, none.Hint)
		return tw.finish()
	}

	if len(v.Rows) == 0 {
		empty := present.Empty(lang)
		tw.writef("%s\n%s\n", empty.Title, empty.Hint)
		if len(v.Suggestions) > 0 {
			tw.writef("%s: %s\n", empty.SuggestionLabel, strings.Join(v.Suggestions, ", "))
		}
		return tw.finish()
	}

	tw.writef(" \t%s\n", strings.Join(present.Columns(lang), "\t"))
	for i := range v.Rows {
		r := &v.Rows[i]
		mark := " "
		if r.Cheapest {
			mark = "*"
		}
		perUnit := "-"
		if r.PricePerUnit != nil {
			perUnit = present.Currency(*r.PricePerUnit, lang)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			mark,
			truncate(r.Name, nameWidth),
			r.Retailer,
			present.Currency(r.Price, lang),
			perUnit,
			present.Stock(r.InStock, lang),
		)
	}

	if v.CheapestPrice != nil {
		tw.writef("\n* %s: %s\n", present.Cheapest(lang), present.Currency(*v.CheapestPrice, lang))
	}
	return tw.finish()
}

func printMessage(w io.Writer, m *present.Message) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", m.Title, m.Hint)
	return err
}

func printList(w io.Writer, items []string) error {
	tw := newTabWriter(w)
	for i, s := range items {
		tw.writef("%d\t%s\n", i+1, s)
	}
	return tw.finish()
}

func printRetailers(w io.Writer, retailers []domain.Retailer, lang domain.Language) error {
	tw := newTabWriter(w)
	tw.writef("NAME\tSTATUS\n")
	for i := range retailers {
		tw.writef("%s\t%s\n", retailers[i].DisplayName(lang), retailers[i].Status)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
