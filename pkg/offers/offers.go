// Package offers derives the displayed view of a result set: filtering,
// stable sorting and cheapest-offer detection. Every function here is pure
// and safe to call on each render.
package offers

import (
	"cmp"
	"math"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// Default price bounds used when there is nothing to derive them from.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 1000
)

type options struct {
	tag language.Tag
}

// Option configures Apply.
type Option func(*options)

// WithLanguage selects the collation used for retailer ordering.
func WithLanguage(lang domain.Language) Option {
	return func(o *options) {
		if lang == domain.LanguageEnglish {
			o.tag = language.English
		} else {
			o.tag = language.Arabic
		}
	}
}

// Apply returns the offers that satisfy criteria, stably sorted by the
// criteria's comparator. The input slice is never modified and the result is
// never nil.
func Apply(in []domain.Offer, criteria domain.Criteria, opts ...Option) []domain.Offer {
	o := options{tag: language.Arabic}
	for _, opt := range opts {
		opt(&o)
	}

	c := criteria.Normalize()

	out := make([]domain.Offer, 0, len(in))
	for i := range in {
		if c.Match(&in[i]) {
			out = append(out, in[i])
		}
	}

	compare := comparator(c.SortBy, o.tag)
	if c.SortOrder == domain.SortDesc {
		asc := compare
		compare = func(a, b domain.Offer) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, compare)

	return out
}

func comparator(by domain.SortBy, tag language.Tag) func(a, b domain.Offer) int {
	switch by {
	case domain.SortByRetailer:
		// collate.Collator keeps an internal buffer and is not safe for
		// concurrent use, so each Apply call gets its own.
		col := collate.New(tag)
		return func(a, b domain.Offer) int {
			return col.CompareString(a.Retailer, b.Retailer)
		}
	case domain.SortByAvailability:
		return func(a, b domain.Offer) int {
			return cmp.Compare(stockRank(a), stockRank(b))
		}
	default:
		return func(a, b domain.Offer) int {
			return cmp.Compare(a.Price, b.Price)
		}
	}
}

func stockRank(o domain.Offer) int {
	if o.InStock {
		return 0
	}
	return 1
}

// CheapestPrice returns the minimum price among in-stock offers. ok is false
// when no offer is in stock, in which case no cheapest badge should be shown.
func CheapestPrice(in []domain.Offer) (price float64, ok bool) {
	for i := range in {
		if !in[i].InStock {
			continue
		}
		if !ok || in[i].Price < price {
			price = in[i].Price
			ok = true
		}
	}
	return price, ok
}

// IsCheapest reports whether o carries the cheapest badge given the result of
// CheapestPrice. Ties are all cheapest.
func IsCheapest(o *domain.Offer, price float64, ok bool) bool {
	return ok && o.InStock && o.Price == price
}

// Row is one displayed offer with its list key and cheapest flag.
type Row struct {
	domain.Offer
	Key      string `json:"key"`
	Cheapest bool   `json:"cheapest"`
}

// Annotate keys each offer by position and marks the cheapest in-stock ones.
func Annotate(view []domain.Offer) []Row {
	price, ok := CheapestPrice(view)
	rows := make([]Row, len(view))
	for i := range view {
		rows[i] = Row{
			Offer:    view[i],
			Key:      view[i].Key(i),
			Cheapest: IsCheapest(&view[i], price, ok),
		}
	}
	return rows
}

// PriceBounds returns floor(min) and ceil(max) of all offer prices, or the
// default range when in is empty.
func PriceBounds(in []domain.Offer) domain.PriceRange {
	if len(in) == 0 {
		return domain.PriceRange{Min: DefaultMinPrice, Max: DefaultMaxPrice}
	}
	lo, hi := in[0].Price, in[0].Price
	for i := range in[1:] {
		lo = min(lo, in[i+1].Price)
		hi = max(hi, in[i+1].Price)
	}
	return domain.PriceRange{Min: math.Floor(lo), Max: math.Ceil(hi)}
}

// DefaultCriteria returns the criteria a fresh result set starts with, and
// the state a reset restores: full observed price range, no retailer
// restriction, cheapest first, out-of-stock offers included.
func DefaultCriteria(in []domain.Offer) domain.Criteria {
	return domain.Criteria{
		PriceRange: PriceBounds(in),
		SortBy:     domain.SortByPrice,
		SortOrder:  domain.SortAsc,
	}
}

// Retailers returns the distinct retailer names in the result set, sorted.
func Retailers(in []domain.Offer) []string {
	names := make([]string, 0, len(in))
	for i := range in {
		names = append(names, in[i].Retailer)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Toggle returns criteria sorted by column. Choosing the active column again
// flips the order; choosing a new column starts ascending.
func Toggle(c domain.Criteria, by domain.SortBy) domain.Criteria {
	if c.SortBy == by && c.SortOrder == domain.SortAsc {
		c.SortOrder = domain.SortDesc
	} else {
		c.SortOrder = domain.SortAsc
	}
	c.SortBy = by
	return c
}
