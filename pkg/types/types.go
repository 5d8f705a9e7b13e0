// Package domain defines the core business types for price-compare.
package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Language is the display/query language sent to the search backend.
type Language string

// Language constants.
const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// ParseLanguage maps a user-supplied value to a Language.
// Anything other than "en" falls back to Arabic, the backend default.
func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(LanguageEnglish)) {
		return LanguageEnglish
	}
	return LanguageArabic
}

// RTL reports whether the language is written right-to-left.
func (l Language) RTL() bool {
	return l != LanguageEnglish
}

// SortBy selects the comparator used when ordering offers.
type SortBy string

// SortBy constants.
const (
	SortByPrice        SortBy = "price"
	SortByRetailer     SortBy = "retailer"
	SortByAvailability SortBy = "availability"
)

// SortOrder selects ascending or descending order.
type SortOrder string

// SortOrder constants.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// RetailerStatus is the backend-reported health of a retailer integration.
type RetailerStatus string

// RetailerStatus constants.
const (
	RetailerActive   RetailerStatus = "active"
	RetailerInactive RetailerStatus = "inactive"
	RetailerError    RetailerStatus = "error"
)

// DefaultCurrency is the currency every supported retailer prices in.
const DefaultCurrency = "EGP"

// Offer is one retailer's listing for a product matching a query.
type Offer struct {
	Name         string   `json:"name"`
	Brand        string   `json:"brand,omitempty"`
	Retailer     string   `json:"retailer"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency,omitempty"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	WeightUnit   string   `json:"weight_unit,omitempty"`
	Category     string   `json:"category,omitempty"`
	InStock      bool     `json:"in_stock"`
	URL          string   `json:"url"`
	ImageURL     string   `json:"image_url,omitempty"`
}

// Key returns the list identity of an offer at position pos. Two retailers
// may list identical names, so content alone is not unique.
func (o *Offer) Key(pos int) string {
	return fmt.Sprintf("%s-%s-%d", o.Retailer, o.Name, pos)
}

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies within the range, bounds inclusive.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Criteria is the user-controlled filter and sort state applied to a result
// set. It is view state only and never persisted server-side.
type Criteria struct {
	PriceRange        PriceRange `json:"price_range"`
	SelectedRetailers []string   `json:"selected_retailers,omitempty"`
	SortBy            SortBy     `json:"sort_by"`
	SortOrder         SortOrder  `json:"sort_order"`
	AvailableOnly     bool       `json:"available_only"`
}

// Normalize returns a copy of c with swapped price bounds when min > max and
// unknown sort values replaced by their defaults.
func (c Criteria) Normalize() Criteria {
	if c.PriceRange.Min > c.PriceRange.Max {
		c.PriceRange.Min, c.PriceRange.Max = c.PriceRange.Max, c.PriceRange.Min
	}
	switch c.SortBy {
	case SortByPrice, SortByRetailer, SortByAvailability:
	default:
		c.SortBy = SortByPrice
	}
	if c.SortOrder != SortDesc {
		c.SortOrder = SortAsc
	}
	c.SelectedRetailers = slices.Clone(c.SelectedRetailers)
	return c
}

// Match reports whether an offer passes every filter predicate of c.
// c is expected to be normalized.
func (c *Criteria) Match(o *Offer) bool {
	if !c.PriceRange.Contains(o.Price) {
		return false
	}
	if len(c.SelectedRetailers) > 0 && !slices.Contains(c.SelectedRetailers, o.Retailer) {
		return false
	}
	if c.AvailableOnly && !o.InStock {
		return false
	}
	return true
}

// Retailer describes a retailer the backend can search.
type Retailer struct {
	Name   string         `json:"name"`
	NameAr string         `json:"name_ar,omitempty"`
	Status RetailerStatus `json:"status"`
}

// DisplayName returns the retailer name for the given language, falling back
// to the canonical name when no Arabic name is known.
func (r *Retailer) DisplayName(lang Language) string {
	if lang == LanguageArabic && r.NameAr != "" {
		return r.NameAr
	}
	return r.Name
}

// SearchHints are optional constraints forwarded to the backend with a
// query. A nil bound is not sent.
type SearchHints struct {
	MinPrice  *float64
	MaxPrice  *float64
	Retailers []string
}

// HintsFrom returns hints carrying c's retailer selection and whichever
// price bounds are marked known.
func HintsFrom(c Criteria, minKnown, maxKnown bool) *SearchHints {
	h := &SearchHints{Retailers: slices.Clone(c.SelectedRetailers)}
	if minKnown {
		v := c.PriceRange.Min
		h.MinPrice = &v
	}
	if maxKnown {
		v := c.PriceRange.Max
		h.MaxPrice = &v
	}
	if h.MinPrice == nil && h.MaxPrice == nil && len(h.Retailers) == 0 {
		return nil
	}
	return h
}

// SearchRequest is the body of POST /search on the backend.
type SearchRequest struct {
	Query               string   `json:"query"`
	Language            Language `json:"language"`
	MaxResults          int      `json:"max_results"`
	IncludeAlternatives bool     `json:"include_alternatives"`
	MinPrice            *float64 `json:"min_price,omitempty"`
	MaxPrice            *float64 `json:"max_price,omitempty"`
	PreferredRetailers  []string `json:"preferred_retailers,omitempty"`
}

// SearchResponse is the body of a successful POST /search.
type SearchResponse struct {
	RequestID            string   `json:"request_id,omitempty"`
	Query                string   `json:"query,omitempty"`
	Products             []Offer  `json:"products"`
	TotalResults         int      `json:"total_results,omitempty"`
	SearchTimeMS         int      `json:"search_time_ms,omitempty"`
	RetailersSearched    []string `json:"retailers_searched,omitempty"`
	AlternativesIncluded bool     `json:"alternatives_included,omitempty"`
	ErrorRetailers       []string `json:"error_retailers,omitempty"`
}
