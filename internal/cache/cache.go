// Package cache holds the in-memory snapshot of every known parameter.
//
// The snapshot is replaced wholesale by Refresh and patched one entry at a
// time by Update. Both run under a single writer lock; readers load the
// current snapshot without locking and never observe a half-built one.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	eerrors "github.com/systmms/envexplorer/internal/errors"
	"github.com/systmms/envexplorer/internal/logging"
	"github.com/systmms/envexplorer/pkg/paramstore"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrentFetches bounds the per-prefix fan-out of Refresh
const DefaultMaxConcurrentFetches = 4

// Cache owns the parameter snapshot
type Cache struct {
	client        paramstore.Client
	prefixes      []string
	hidden        []string
	maxConcurrent int
	logger        *logging.Logger
	now           func() time.Time

	mu       sync.Mutex // serializes Refresh and Update
	snapshot atomic.Pointer[snapshot]
}

type snapshot struct {
	params   []paramstore.Parameter // sorted by name, unique
	hidden   int
	loadedAt time.Time
	failed   []string
}

// Stats describes the current snapshot
type Stats struct {
	Loaded         bool
	LoadedAt       time.Time
	Total          int
	Hidden         int
	FailedPrefixes []string
}

// Option configures a Cache
type Option func(*Cache)

// WithPrefixes sets the root prefixes fetched on refresh. Defaults to "/".
func WithPrefixes(prefixes ...string) Option {
	return func(c *Cache) {
		c.prefixes = nil
		for _, p := range prefixes {
			if p = strings.TrimSpace(p); p != "" {
				c.prefixes = append(c.prefixes, p)
			}
		}
	}
}

// WithHiddenPatterns sets the substrings that mark a parameter hidden
func WithHiddenPatterns(patterns ...string) Option {
	return func(c *Cache) {
		c.hidden = nil
		for _, p := range patterns {
			if p = strings.TrimSpace(p); p != "" {
				c.hidden = append(c.hidden, p)
			}
		}
	}
}

// WithLogger sets the logger used for soft failures and debug output
func WithLogger(logger *logging.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxConcurrentFetches bounds how many prefixes are listed at once
func WithMaxConcurrentFetches(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an empty cache over client. Nothing is fetched until the
// first Get or Refresh.
func New(client paramstore.Client, opts ...Option) *Cache {
	c := &Cache{
		client:        client,
		prefixes:      []string{"/"},
		maxConcurrent: DefaultMaxConcurrentFetches,
		logger:        logging.Discard(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.prefixes) == 0 {
		c.prefixes = []string{"/"}
	}
	return c
}

// IsHidden reports whether name matches one of the hidden patterns
func (c *Cache) IsHidden(name string) bool {
	for _, pattern := range c.hidden {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// Refresh reloads every configured prefix and replaces the snapshot.
//
// A prefix whose listing fails is logged and contributes nothing. If every
// prefix fails, or ctx is cancelled, the previous snapshot is kept and an
// error is returned: a store outage leaves readers with stale data rather
// than an empty cache. Callers that need to tell the two apart check the
// error, or Stats().LoadedAt.
func (c *Cache) Refresh(ctx context.Context, includeHidden bool) ([]paramstore.Parameter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.refreshLocked(ctx)
	if err != nil {
		return nil, err
	}
	return snap.view(includeHidden), nil
}

func (c *Cache) refreshLocked(ctx context.Context) (*snapshot, error) {
	started := c.now()
	results := make([][]paramstore.Parameter, len(c.prefixes))
	failures := make([]error, len(c.prefixes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for i, prefix := range c.prefixes {
		g.Go(func() error {
			params, err := c.client.ListByPrefix(gctx, prefix)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = err
				return nil
			}
			results[i] = params
			c.logger.Debug("Fetched %d parameters under %s", len(params), prefix)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		recordRefresh("cancelled", started)
		return nil, fmt.Errorf("refresh cancelled: %w", err)
	}

	var failed []string
	for i, err := range failures {
		if err == nil {
			continue
		}
		failed = append(failed, c.prefixes[i])
		recordPrefixFailure(c.prefixes[i])
		c.logger.Warn("Skipping prefix %s: %v", c.prefixes[i], err)
	}
	if len(failed) == len(c.prefixes) {
		recordRefresh("failed", started)
		return nil, eerrors.StoreError("refresh", errors.Join(failures...))
	}

	snap := c.merge(results)
	snap.failed = failed
	snap.loadedAt = c.now()
	c.snapshot.Store(snap)

	status := "success"
	if len(failed) > 0 {
		status = "partial"
	}
	recordRefresh(status, started)
	recordSnapshot(len(snap.params), snap.hidden)
	c.logger.Debug("Cached %d parameters (%d hidden) from %d prefixes", len(snap.params), snap.hidden, len(c.prefixes))

	return snap, nil
}

// merge concatenates per-prefix results in prefix order, keeps the first
// parameter seen for each name and sorts by name.
func (c *Cache) merge(results [][]paramstore.Parameter) *snapshot {
	seen := make(map[string]bool)
	snap := &snapshot{}
	for _, batch := range results {
		for _, p := range batch {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			p.IsHidden = c.IsHidden(p.Name)
			if p.IsHidden {
				snap.hidden++
			}
			snap.params = append(snap.params, p)
		}
	}
	sort.Slice(snap.params, func(i, j int) bool {
		return snap.params[i].Name < snap.params[j].Name
	})
	return snap
}

// Get returns the cached parameters, refreshing first if the cache has never
// been populated.
func (c *Cache) Get(ctx context.Context, includeHidden bool) ([]paramstore.Parameter, error) {
	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.view(includeHidden), nil
}

func (c *Cache) load(ctx context.Context) (*snapshot, error) {
	if snap := c.snapshot.Load(); snap != nil {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have populated it while we waited
	if snap := c.snapshot.Load(); snap != nil {
		return snap, nil
	}
	return c.refreshLocked(ctx)
}

// Lookup finds one cached parameter by name, hidden ones included
func (c *Cache) Lookup(ctx context.Context, name string) (paramstore.Parameter, bool, error) {
	snap, err := c.load(ctx)
	if err != nil {
		return paramstore.Parameter{}, false, err
	}
	p, ok := snap.find(name)
	return p, ok, nil
}

// Stats describes the current snapshot without triggering a refresh
func (c *Cache) Stats() Stats {
	snap := c.snapshot.Load()
	if snap == nil {
		return Stats{}
	}
	return Stats{
		Loaded:         true,
		LoadedAt:       snap.loadedAt,
		Total:          len(snap.params),
		Hidden:         snap.hidden,
		FailedPrefixes: append([]string(nil), snap.failed...),
	}
}

// UpdateResult is the outcome of a single write
type UpdateResult struct {
	Name    string
	Success bool
	// Parameter is the cached entry after a successful write
	Parameter *paramstore.Parameter
	// Previous is the cached entry before the write, nil if there was none.
	// On failure it is what the store still holds as far as the cache knows.
	Previous *paramstore.Parameter
}

// Update writes through to the store and, only once the store accepted the
// value, patches the cached entry or inserts a new one. An empty typ keeps
// the existing type, or String for new parameters.
func (c *Cache) Update(ctx context.Context, name, value string, typ paramstore.Type) (UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.snapshot.Load()
	if snap == nil {
		var err error
		if snap, err = c.refreshLocked(ctx); err != nil {
			return UpdateResult{Name: name}, err
		}
	}

	result := UpdateResult{Name: name}
	prev, found := snap.find(name)
	if found {
		result.Previous = &prev
	}
	if typ == "" {
		typ = paramstore.TypeString
		if found {
			typ = prev.Type
		}
	}

	if err := c.client.PutParameter(ctx, name, value, typ, true); err != nil {
		recordUpdate("failed")
		c.logger.Error("Failed to update %s: %v", name, err)
		return result, eerrors.StoreError("update", err)
	}

	next := &snapshot{
		params:   make([]paramstore.Parameter, len(snap.params), len(snap.params)+1),
		hidden:   snap.hidden,
		loadedAt: snap.loadedAt,
		failed:   snap.failed,
	}
	copy(next.params, snap.params)

	idx := sort.Search(len(next.params), func(i int) bool { return next.params[i].Name >= name })
	if found {
		next.params[idx].Value = value
		next.params[idx].Type = typ
	} else {
		p := paramstore.Parameter{
			Name:         name,
			Value:        value,
			Type:         typ,
			LastModified: c.now(),
			IsHidden:     c.IsHidden(name),
		}
		if p.IsHidden {
			next.hidden++
		}
		next.params = append(next.params, paramstore.Parameter{})
		copy(next.params[idx+1:], next.params[idx:])
		next.params[idx] = p
	}
	c.snapshot.Store(next)

	updated := next.params[idx]
	result.Success = true
	result.Parameter = &updated
	recordUpdate("success")
	recordSnapshot(len(next.params), next.hidden)
	c.logger.Debug("Updated %s = %s", name, logging.Value(value, typ.IsSecure()))

	return result, nil
}

// History returns the stored versions of one parameter
func (c *Cache) History(ctx context.Context, name string) ([]paramstore.HistoryEntry, error) {
	entries, err := c.client.ListHistory(ctx, name)
	if err != nil {
		return nil, eerrors.StoreError("history", err)
	}
	return entries, nil
}

func (s *snapshot) find(name string) (paramstore.Parameter, bool) {
	idx := sort.Search(len(s.params), func(i int) bool { return s.params[i].Name >= name })
	if idx < len(s.params) && s.params[idx].Name == name {
		return s.params[idx], true
	}
	return paramstore.Parameter{}, false
}

// view copies the snapshot so callers cannot mutate shared state
func (s *snapshot) view(includeHidden bool) []paramstore.Parameter {
	out := make([]paramstore.Parameter, 0, len(s.params))
	for _, p := range s.params {
		if includeHidden || !p.IsHidden {
			out = append(out, p)
		}
	}
	return out
}
