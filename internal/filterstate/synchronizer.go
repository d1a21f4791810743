// Package filterstate keeps the catalog filters and the browser URL in step. The URL is
// the single source of truth: every committed change produces a new URL that is handed
// to a Navigator, and navigation events re-seed the state from the URL.
package filterstate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/logger"
)

// DefaultDebounce is the delay between the last keystroke and the commit of a text field.
const DefaultDebounce = 500 * time.Millisecond

// RootPath is where the catalog list lives.
const RootPath = "/"

// SidebarFields are edited in the filters sidebar and committed together by Apply.
var SidebarFields = []string{
	book.FieldAuthor, book.FieldPublisher, book.FieldSubjects, book.FieldSynopsis,
	book.FieldPagesMin, book.FieldPagesMax, book.FieldFormat,
	book.FieldOrderBy, book.FieldOrderDirection,
}

var (
	ErrNotTextField    = errors.New("field is not a free-text filter")
	ErrNotSidebarField = errors.New("field cannot be staged")
)

// Navigator receives the URL produced by every commit.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, url string) error

func (f NavigatorFunc) Navigate(ctx context.Context, url string) error { return f(ctx, url) }

// afterFunc schedules f after d and returns a function that cancels it.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type pendingText struct {
	value string
	stop  func() bool
	gen   uint64
}

type Synchronizer struct {
	nav      Navigator
	delay    time.Duration
	after    afterFunc
	baseCtx  context.Context
	navMu    sync.Mutex
	mu       sync.Mutex
	current  book.Filters
	staged   url.Values
	pending  map[string]*pendingText
	gen      uint64
	onCommit func(book.Filters)
}

type Option func(*Synchronizer)

func WithDebounce(d time.Duration) Option {
	return func(s *Synchronizer) { s.delay = d }
}

// WithContext sets the context used for commits fired by debounce timers.
func WithContext(ctx context.Context) Option {
	return func(s *Synchronizer) { s.baseCtx = ctx }
}

// OnCommit registers a callback run after each commit with the new filters.
func OnCommit(fn func(book.Filters)) Option {
	return func(s *Synchronizer) { s.onCommit = fn }
}

func withAfterFunc(fn afterFunc) Option {
	return func(s *Synchronizer) { s.after = fn }
}

// New creates a synchronizer seeded from rawURL.
func New(nav Navigator, rawURL string, opts ...Option) (*Synchronizer, error) {
	s := &Synchronizer{
		nav:     nav,
		delay:   DefaultDebounce,
		after:   timeAfterFunc,
		baseCtx: context.Background(),
		pending: map[string]*pendingText{},
	}
	for _, opt := range opts {
		opt(s)
	}
	f, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	s.current = f
	s.staged = sidebarValues(f)
	return s, nil
}

func parseURL(rawURL string) (book.Filters, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return book.Filters{}, fmt.Errorf("parse url: %w", err)
	}
	return book.ParseFilters(u.Query()), nil
}

// sidebarValues copies the sidebar fields of f. The direction defaults to ASC.
func sidebarValues(f book.Filters) url.Values {
	all := f.Values()
	v := url.Values{}
	for _, field := range SidebarFields {
		if val := all.Get(field); val != "" {
			v.Set(field, val)
		}
	}
	if v.Get(book.FieldOrderDirection) == "" {
		v.Set(book.FieldOrderDirection, book.DirectionAsc)
	}
	return v
}

// Current returns the committed filters.
func (s *Synchronizer) Current() book.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// URL returns the URL of the committed filters.
func (s *Synchronizer) URL() string {
	return s.Current().URL(RootPath)
}

// Staged returns the sidebar state that Apply would commit.
func (s *Synchronizer) Staged() book.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return book.ParseFilters(s.staged)
}

// PendingText returns the typed but not yet committed value of a text field.
func (s *Synchronizer) PendingText(field string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[field]
	if !ok {
		return "", false
	}
	return p.value, true
}

// Navigate re-seeds the state from rawURL, as after a back/forward navigation or a reload.
// Pending debounced text is dropped and the sidebar is rebuilt from the URL.
func (s *Synchronizer) Navigate(rawURL string) error {
	f, err := parseURL(rawURL)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingLocked()
	s.current = f
	s.staged = sidebarValues(f)
	return nil
}

func isTextField(field string) bool {
	for _, f := range book.TextFields {
		if f == field {
			return true
		}
	}
	return false
}

// SetText records a keystroke in a free-text field. The value is committed once no
// further keystroke for the same field arrives within the debounce delay.
func (s *Synchronizer) SetText(field, value string) error {
	if !isTextField(field) {
		return fmt.Errorf("%w: %s", ErrNotTextField, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[field]; ok {
		p.stop()
	}
	s.gen++
	gen := s.gen
	p := &pendingText{value: value, gen: gen}
	s.pending[field] = p
	p.stop = s.after(s.delay, func() { s.fireText(field, gen) })
	return nil
}

func (s *Synchronizer) fireText(field string, gen uint64) {
	_ = s.commit(s.baseCtx, func(cur book.Filters) (book.Filters, bool) {
		p, ok := s.pending[field]
		if !ok || p.gen != gen {
			return cur, false
		}
		delete(s.pending, field)
		next, changed := s.withField(cur, field, p.value)
		if changed {
			s.stageCommittedLocked(next, field)
		}
		return next, changed
	})
}

// Flush commits every pending text field immediately.
func (s *Synchronizer) Flush(ctx context.Context) error {
	return s.commit(ctx, func(cur book.Filters) (book.Filters, bool) {
		next := cur
		changed := false
		for field, p := range s.pending {
			p.stop()
			var c bool
			next, c = applyField(next, field, p.value)
			if c {
				changed = true
				s.stageCommittedLocked(next, field)
			}
		}
		s.pending = map[string]*pendingText{}
		if !changed {
			return cur, false
		}
		return next.WithoutPaging(), true
	})
}

func applyField(f book.Filters, field, value string) (book.Filters, bool) {
	next, err := f.With(field, value)
	if err != nil {
		return f, false
	}
	return next, next.Get(field) != f.Get(field)
}

// stageCommittedLocked mirrors a committed text field into the sidebar, leaving other
// staged edits alone.
func (s *Synchronizer) stageCommittedLocked(f book.Filters, field string) {
	if !isSidebarField(field) {
		return
	}
	if v := f.Get(field); v != "" {
		s.staged.Set(field, v)
	} else {
		s.staged.Del(field)
	}
}

// withField sets field on cur and resets paging when the value actually changed.
func (s *Synchronizer) withField(cur book.Filters, field, value string) (book.Filters, bool) {
	next, changed := applyField(cur, field, value)
	if !changed {
		return cur, false
	}
	return next.WithoutPaging(), true
}

// Stage edits a sidebar field without committing it. An empty value clears it.
func (s *Synchronizer) Stage(field, value string) error {
	if !isSidebarField(field) {
		return fmt.Errorf("%w: %s", ErrNotSidebarField, field)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		s.staged.Del(field)
	} else {
		s.staged.Set(field, value)
	}
	return nil
}

func isSidebarField(field string) bool {
	for _, f := range SidebarFields {
		if f == field {
			return true
		}
	}
	return false
}

// ResetStaged clears every staged sidebar field without committing.
func (s *Synchronizer) ResetStaged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = sidebarValues(book.Filters{})
}

// Apply commits every staged sidebar field at once and returns to the first page.
func (s *Synchronizer) Apply(ctx context.Context) error {
	return s.commit(ctx, func(cur book.Filters) (book.Filters, bool) {
		v := cur.Values()
		v.Del(book.FieldPage)
		for _, field := range SidebarFields {
			if val := s.staged.Get(field); val != "" {
				v.Set(field, val)
			} else {
				v.Del(field)
			}
		}
		next := book.ParseFilters(v)
		s.staged = sidebarValues(next)
		return next, true
	})
}

// SetPage moves to page n, keeping every other filter.
func (s *Synchronizer) SetPage(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	return s.commit(ctx, func(cur book.Filters) (book.Filters, bool) {
		cur.Page = n
		return cur, true
	})
}

// Clear removes every filter; the URL becomes the bare list path.
func (s *Synchronizer) Clear(ctx context.Context) error {
	return s.commit(ctx, func(book.Filters) (book.Filters, bool) {
		s.cancelPendingLocked()
		s.staged = sidebarValues(book.Filters{})
		return book.Filters{}, true
	})
}

// Close cancels pending debounced commits.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingLocked()
}

func (s *Synchronizer) cancelPendingLocked() {
	for field, p := range s.pending {
		p.stop()
		delete(s.pending, field)
	}
}

// commit derives the next filters from the current ones with update, installs them
// and hands their URL to the navigator. update runs under mu, so concurrent commits
// always build on each other; it also owns any change to the staged sidebar. Commits reach the navigator in the order they were
// installed; a Navigator must not commit on the same synchronizer. A failed navigation
// is logged and returned, never retried.
func (s *Synchronizer) commit(ctx context.Context, update func(book.Filters) (book.Filters, bool)) error {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	s.mu.Lock()
	next, ok := update(s.current)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	s.current = next
	onCommit := s.onCommit
	s.mu.Unlock()

	target := next.URL(RootPath)
	if onCommit != nil {
		onCommit(next)
	}
	if err := s.nav.Navigate(ctx, target); err != nil {
		logger.For(ctx).WithError(err).WithField("url", target).Warn("navigation failed")
		return fmt.Errorf("navigate %s: %w", target, err)
	}
	return nil
}
