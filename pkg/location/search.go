// Package location resolves free text and device coordinates to the
// canonical neighborhoods the server knows.
package location

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// DefaultDebounce is the quiet period before a search runs
const DefaultDebounce = 500 * time.Millisecond

// MinQueryLength is the longest query that never searches
const MinQueryLength = 2

// SearchFunc resolves a query to suggestions
type SearchFunc func(ctx context.Context, query string) ([]api.LocationSuggestion, error)

// Search debounces keystrokes into neighborhood searches. Only the latest
// query's results are kept.
type Search struct {
	ctx       context.Context
	fetch     SearchFunc
	delay     time.Duration
	onResults func([]api.LocationSuggestion, error)

	mu          sync.Mutex
	timer       *time.Timer
	seq         uint64
	suggestions []api.LocationSuggestion
	confirmed   bool
}

// NewSearch creates a debouncer. delay <= 0 selects DefaultDebounce.
// onResults, if set, receives every completed search.
func NewSearch(ctx context.Context, fetch SearchFunc, delay time.Duration, onResults func([]api.LocationSuggestion, error)) *Search {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Search{ctx: ctx, fetch: fetch, delay: delay, onResults: onResults}
}

// Query records a keystroke. Short queries clear the suggestions at once.
// Longer ones search after the quiet period unless another keystroke
// arrives first.
func (s *Search) Query(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if len([]rune(query)) <= MinQueryLength {
		s.suggestions = nil
		return
	}
	if s.confirmed {
		return
	}

	seq := s.seq
	s.timer = time.AfterFunc(s.delay, func() { s.run(seq, query) })
}

func (s *Search) run(seq uint64, query string) {
	results, err := s.fetch(s.ctx, query)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	if err != nil {
		logger.Warn("Location search failed", "query", query, "error", err)
		s.suggestions = nil
	} else {
		s.suggestions = results
	}
	onResults := s.onResults
	s.mu.Unlock()

	if onResults != nil {
		onResults(results, err)
	}
}

// Suggestions returns the latest results
func (s *Search) Suggestions() []api.LocationSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.LocationSuggestion(nil), s.suggestions...)
}

// Clear cancels any pending search and drops the suggestions
func (s *Search) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.suggestions = nil
}

// SetConfirmed turns searching off while a selection is confirmed
func (s *Search) SetConfirmed(confirmed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = confirmed
	if confirmed {
		s.stopLocked()
	}
}

// Close cancels any pending search
func (s *Search) Close() {
	s.Clear()
}

// stopLocked cancels the pending timer and invalidates in-flight searches
func (s *Search) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}

// Selection is the text field and confirmed pick of a location picker
type Selection struct {
	search *Search

	mu       sync.Mutex
	text     string
	selected *api.LocationSuggestion
}

// NewSelection creates an empty picker over search
func NewSelection(search *Search) *Selection {
	return &Selection{search: search}
}

// Select confirms a suggestion and shows its dropdown value
func (p *Selection) Select(s api.LocationSuggestion) {
	p.mu.Lock()
	p.selected = &s
	p.text = s.DropdownValue
	p.mu.Unlock()

	p.search.SetConfirmed(true)
	p.search.Clear()
}

// SetText records typed text. Text that no longer matches the confirmed
// pick clears it and searches again.
func (p *Selection) SetText(text string) {
	p.mu.Lock()
	p.text = text
	if p.selected != nil && !sameLocation(text, p.selected.DropdownValue) {
		p.selected = nil
		p.mu.Unlock()

		p.search.SetConfirmed(false)
		p.search.Clear()
		p.search.Query(text)
		return
	}
	confirmed := p.selected != nil
	p.mu.Unlock()

	if !confirmed {
		p.search.Query(text)
	}
}

// Text returns the current field text
func (p *Selection) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// Selected returns the confirmed pick
func (p *Selection) Selected() (api.LocationSuggestion, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return api.LocationSuggestion{}, false
	}
	return *p.selected, true
}

// Confirmed reports whether a pick is confirmed
func (p *Selection) Confirmed() bool {
	_, ok := p.Selected()
	return ok
}

func sameLocation(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
