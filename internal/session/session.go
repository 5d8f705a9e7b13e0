// Package session holds the state of one user's result set: the active
// query, the raw offers, the filter criteria and the single current error.
// Searches are last-request-wins: a response that arrives after a newer
// search was started is discarded.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/donaldgifford/price-compare/internal/gateway"
	"github.com/donaldgifford/price-compare/internal/metrics"
	"github.com/donaldgifford/price-compare/pkg/offers"
	"github.com/donaldgifford/price-compare/pkg/suggest"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// ErrSuperseded is returned by Search when a newer search started before
// this one completed. Its result was not applied.
var ErrSuperseded = errors.New("search superseded by a newer search")

// Status is the lifecycle state of a result set.
type Status string

// Status constants.
const (
	StatusIdle      Status = "idle"
	StatusSearching Status = "searching"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Searcher is the subset of the gateway a Session needs.
type Searcher interface {
	Search(ctx context.Context, query string, hints *domain.SearchHints, lang domain.Language) (*domain.SearchResponse, error)
	Suggestions(ctx context.Context, query string, lang domain.Language) []string
}

// Recorder records successful queries.
type Recorder interface {
	Add(ctx context.Context, query string)
}

// Session is safe for concurrent use. Only the newest search may write its
// result.
type Session struct {
	searcher Searcher
	history  Recorder
	logger   *slog.Logger

	mu       sync.Mutex
	lang     domain.Language
	seq      uint64
	status   Status
	query    string
	offers   []domain.Offer
	criteria *domain.Criteria
	err      *gateway.SearchError
	remote   []string

	// minSet and maxSet mark price bounds chosen by the caller. derived is
	// set once the remaining bounds were taken from a result set.
	minSet  bool
	maxSet  bool
	derived bool
}

// Option configures a Session.
type Option func(*Session)

// WithHistory records every successful query in r.
func WithHistory(r Recorder) Option {
	return func(s *Session) {
		s.history = r
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithLanguage sets the initial query language.
func WithLanguage(lang domain.Language) Option {
	return func(s *Session) {
		s.lang = lang
	}
}

// WithCriteria seeds the filter criteria, for callers that restore view
// state from a request. Both price bounds count as chosen.
func WithCriteria(c domain.Criteria) Option {
	return func(s *Session) {
		n := c.Normalize()
		s.criteria = &n
		s.minSet, s.maxSet = true, true
	}
}

// WithPriceRange seeds the given price bounds. A nil bound is taken from the
// first successful result set. Apply it after WithCriteria.
func WithPriceRange(lo, hi *float64) Option {
	return func(s *Session) {
		c := offers.DefaultCriteria(nil)
		if s.criteria != nil {
			c = *s.criteria
		}
		if lo != nil {
			c.PriceRange.Min = *lo
			s.minSet = true
		}
		if hi != nil {
			c.PriceRange.Max = *hi
			s.maxSet = true
		}
		c = s.normalize(c)
		s.criteria = &c
	}
}

// New creates an idle Session backed by searcher.
func New(searcher Searcher, opts ...Option) *Session {
	s := &Session{
		searcher: searcher,
		logger:   slog.New(slog.DiscardHandler),
		lang:     domain.LanguageArabic,
		status:   StatusIdle,
		offers:   []domain.Offer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLanguage changes the language used by subsequent searches.
func (s *Session) SetLanguage(lang domain.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
}

// Search runs query against the backend and applies the outcome unless a
// newer search has started meanwhile, in which case ErrSuperseded is
// returned. A failed search returns its *gateway.SearchError and leaves the
// session in the error state with no results.
func (s *Session) Search(ctx context.Context, query string) error {
	q := strings.TrimSpace(query)

	s.mu.Lock()
	s.seq++
	mine := s.seq
	s.query = q
	s.remote = nil

	if q == "" {
		s.fail(&gateway.SearchError{Kind: gateway.KindInvalidQuery, Detail: "please enter a search query"})
		err := s.err
		s.mu.Unlock()
		return err
	}

	s.status = StatusSearching
	s.err = nil
	lang := s.lang
	var hints *domain.SearchHints
	if s.criteria != nil {
		hints = domain.HintsFrom(*s.criteria, s.minSet || s.derived, s.maxSet || s.derived)
	}
	s.mu.Unlock()

	resp, err := s.searcher.Search(ctx, q, hints, lang)

	var remote []string
	if err == nil && len(resp.Products) == 0 {
		remote = s.searcher.Suggestions(ctx, q, lang)
	}

	s.mu.Lock()
	if mine != s.seq {
		s.mu.Unlock()
		metrics.StaleResponsesDiscardedTotal.Inc()
		s.logger.Debug("discarding stale search response", "query", q)
		return ErrSuperseded
	}

	if err != nil {
		var se *gateway.SearchError
		if !errors.As(err, &se) {
			se = &gateway.SearchError{Kind: gateway.KindUnknownError, Err: err}
		}
		s.fail(se)
		s.mu.Unlock()
		s.logger.Warn("search failed", "query", q, "kind", se.Kind, "error", err)
		return se
	}

	s.status = StatusSuccess
	s.offers = resp.Products
	s.remote = remote
	if !s.derived {
		c := s.seed(resp.Products)
		s.criteria = &c
		s.derived = true
	}
	s.mu.Unlock()

	metrics.SearchResultsCount.Observe(float64(len(resp.Products)))
	if s.history != nil {
		s.history.Add(ctx, q)
	}
	return nil
}

// fail moves to the error state. Callers hold s.mu.
func (s *Session) fail(se *gateway.SearchError) {
	s.status = StatusError
	s.err = se
	s.offers = []domain.Offer{}
}

// Err returns the current error, or nil.
func (s *Session) Err() *gateway.SearchError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError dismisses the current error without retrying.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err == nil {
		return
	}
	s.err = nil
	s.status = StatusIdle
}

// UpdateCriteria applies fn to the current criteria. A price bound fn
// changes counts as chosen and is kept when the first results arrive; the
// others are replaced by the bounds of those results.
func (s *Session) UpdateCriteria(fn func(c *domain.Criteria)) domain.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.currentCriteria()
	c := before
	fn(&c)
	if c.PriceRange.Min != before.PriceRange.Min {
		s.minSet = true
	}
	if c.PriceRange.Max != before.PriceRange.Max {
		s.maxSet = true
	}
	c = s.normalize(c)
	s.criteria = &c
	return c
}

// Sort selects the sort column, flipping the order when it is already active
// and ascending.
func (s *Session) Sort(by domain.SortBy) domain.Criteria {
	return s.UpdateCriteria(func(c *domain.Criteria) {
		*c = offers.Toggle(*c, by)
	})
}

// ResetCriteria restores the defaults derived from the current result set
// and forgets any chosen price bounds.
func (s *Session) ResetCriteria() domain.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := offers.DefaultCriteria(s.offers)
	s.criteria = &c
	s.minSet, s.maxSet = false, false
	s.derived = s.status == StatusSuccess
	return c
}

// seed returns the criteria after the first successful search: the current
// ones with every unchosen price bound taken from products. Callers hold s.mu.
func (s *Session) seed(products []domain.Offer) domain.Criteria {
	c := offers.DefaultCriteria(products)
	if s.criteria == nil {
		return c
	}
	bounds := c.PriceRange
	c = *s.criteria
	if !s.minSet {
		c.PriceRange.Min = bounds.Min
	}
	if !s.maxSet {
		c.PriceRange.Max = bounds.Max
	}
	return c.Normalize()
}

// normalize orders the price bounds only once both are real values, so a
// single chosen bound is never swapped with a placeholder.
func (s *Session) normalize(c domain.Criteria) domain.Criteria {
	n := c.Normalize()
	if !s.derived && !(s.minSet && s.maxSet) {
		n.PriceRange = c.PriceRange
	}
	return n
}

func (s *Session) currentCriteria() domain.Criteria {
	if s.criteria == nil {
		return offers.DefaultCriteria(s.offers)
	}
	return *s.criteria
}

// View is the derived, display-ready state of a Session.
type View struct {
	Status        Status               `json:"status"`
	Query         string               `json:"query"`
	Language      domain.Language      `json:"language"`
	Criteria      domain.Criteria      `json:"criteria"`
	PriceBounds   domain.PriceRange    `json:"price_bounds"`
	Rows          []offers.Row         `json:"rows"`
	Total         int                  `json:"total"`
	CheapestPrice *float64             `json:"cheapest_price,omitempty"`
	Retailers     []string             `json:"retailers"`
	Suggestions   []string             `json:"suggestions,omitempty"`
	Err           *gateway.SearchError `json:"-"`
}

// View derives the current display state: filtered and sorted rows with the
// cheapest badge, the retailers available for filtering, and suggestions
// when a search succeeded with no results.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.currentCriteria()
	shown := offers.Apply(s.offers, c, offers.WithLanguage(s.lang))

	v := View{
		Status:      s.status,
		Query:       s.query,
		Language:    s.lang,
		Criteria:    c,
		PriceBounds: offers.PriceBounds(s.offers),
		Rows:        offers.Annotate(shown),
		Total:       len(s.offers),
		Retailers:   offers.Retailers(s.offers),
		Err:         s.err,
	}
	if price, ok := offers.CheapestPrice(shown); ok {
		v.CheapestPrice = &price
	}
	if s.status == StatusSuccess && len(s.offers) == 0 {
		v.Suggestions = suggest.Merge(suggest.Suggest(s.query), s.remote)
	}
	return v
}
