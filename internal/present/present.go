// Package present turns gateway errors and result sets into localized,
// user-facing text in Arabic or English.
package present

import (
	"errors"

	"github.com/donaldgifford/price-compare/internal/gateway"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// Action is the recovery the user is offered for an error.
type Action string

// Action constants.
const (
	ActionRetry           Action = "retry"
	ActionWait            Action = "wait"
	ActionCheckConnection Action = "check_connection"
)

// Message is a localized description of a failed search.
type Message struct {
	Kind   gateway.Kind `json:"kind"`
	Title  string       `json:"title"`
	Hint   string       `json:"hint"`
	Detail string       `json:"detail,omitempty"`
	Action Action       `json:"action"`
}

// Describe maps err to a localized message. Errors that did not come from
// the gateway are described as unknown errors.
func Describe(err error, lang domain.Language) Message {
	kind := gateway.KindUnknownError
	var detail string
	var se *gateway.SearchError
	if errors.As(err, &se) {
		kind = se.Kind
		detail = se.Detail
	}

	p := printer(lang)
	return Message{
		Kind:   kind,
		Title:  p.Sprintf("error." + string(kind) + ".title"),
		Hint:   p.Sprintf("error." + string(kind) + ".hint"),
		Detail: detail,
		Action: actionFor(kind),
	}
}

func actionFor(kind gateway.Kind) Action {
	switch kind {
	case gateway.KindRateLimited:
		return ActionWait
	case gateway.KindNetworkError:
		return ActionCheckConnection
	default:
		return ActionRetry
	}
}

// Currency formats an EGP amount with locale digits and grouping.
func Currency(amount float64, lang domain.Language) string {
	return printer(lang).Sprintf(keyCurrency, amount)
}

// PerUnit formats a price-per-unit label.
func PerUnit(amount float64, lang domain.Language) string {
	return printer(lang).Sprintf(keyPerUnit, Currency(amount, lang))
}

// Stock returns the availability label for an offer.
func Stock(inStock bool, lang domain.Language) string {
	if inStock {
		return printer(lang).Sprintf(keyInStock)
	}
	return printer(lang).Sprintf(keyOutOfStock)
}

// Cheapest returns the cheapest-offer badge text.
func Cheapest(lang domain.Language) string {
	return printer(lang).Sprintf(keyCheapest)
}

// ResultsHeading summarizes a result set for query.
func ResultsHeading(query string, count int, lang domain.Language) string {
	p := printer(lang)
	if count == 0 {
		return p.Sprintf(keyNoResultsFor, query)
	}
	return p.Sprintf(keyResultsFor, count, query)
}

// Columns returns the result table headings in display order: product,
// retailer, price, per-unit price, availability.
func Columns(lang domain.Language) []string {
	p := printer(lang)
	return []string{
		p.Sprintf(keyColProduct),
		p.Sprintf(keyColRetailer),
		p.Sprintf(keyColPrice),
		p.Sprintf(keyColPerUnit),
		p.Sprintf(keyColStock),
	}
}

// EmptyState is the text shown when a search returns nothing.
type EmptyState struct {
	Title           string `json:"title"`
	Hint            string `json:"hint"`
	SuggestionLabel string `json:"suggestion_label"`
	PopularLabel    string `json:"popular_label"`
}

// Empty returns the localized empty-state text.
func Empty(lang domain.Language) EmptyState {
	p := printer(lang)
	return EmptyState{
		Title:           p.Sprintf(keyNoResults),
		Hint:            p.Sprintf(keyNoResultsHint),
		SuggestionLabel: p.Sprintf(keySuggestions),
		PopularLabel:    p.Sprintf(keyPopularSearches),
	}
}

// NoMatches returns the text shown when a search found offers but the
// filters hide all of them.
func NoMatches(lang domain.Language) EmptyState {
	p := printer(lang)
	return EmptyState{
		Title: p.Sprintf(keyNoMatches),
		Hint:  p.Sprintf(keyNoMatchesHint),
	}
}
