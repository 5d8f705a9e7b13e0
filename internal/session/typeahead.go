package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// Typeahead defaults.
const (
	DefaultDebounce = 300 * time.Millisecond
	// MinTypeaheadRunes is the shortest input that triggers a lookup.
	MinTypeaheadRunes = 3
)

// SuggestFunc fetches suggestions for a partial query.
type SuggestFunc func(ctx context.Context, query string, lang domain.Language) []string

// DeliverFunc receives suggestions for the newest input. It is called with
// the Typeahead's lock held and must not call Input.
type DeliverFunc func(query string, suggestions []string)

// Typeahead debounces keystrokes into remote suggestion lookups. Each Input
// cancels whatever is pending for the previous input, so only the newest
// input's suggestions are ever delivered.
type Typeahead struct {
	fetch   SuggestFunc
	deliver DeliverFunc
	delay   time.Duration
	lang    domain.Language

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTypeahead creates a Typeahead. A non-positive delay uses
// DefaultDebounce.
func NewTypeahead(fetch SuggestFunc, deliver DeliverFunc, delay time.Duration, lang domain.Language) *Typeahead {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Typeahead{
		fetch:   fetch,
		deliver: deliver,
		delay:   delay,
		lang:    lang,
	}
}

// Input registers the latest text typed by the user. Inputs shorter than
// MinTypeaheadRunes cancel the pending lookup without starting a new one.
func (t *Typeahead) Input(ctx context.Context, text string) {
	q := strings.TrimSpace(text)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.seq++
	if utf8.RuneCountInString(q) < MinTypeaheadRunes {
		return
	}

	mine := t.seq
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Go(func() {
		defer cancel()

		timer := time.NewTimer(t.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		suggestions := t.fetch(ctx, q, t.lang)

		t.mu.Lock()
		defer t.mu.Unlock()
		if mine != t.seq || ctx.Err() != nil {
			return
		}
		t.deliver(q, suggestions)
	})
}

// Close cancels any pending lookup and waits for in-flight ones to finish.
func (t *Typeahead) Close() {
	t.mu.Lock()
	t.seq++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()

	t.wg.Wait()
}
