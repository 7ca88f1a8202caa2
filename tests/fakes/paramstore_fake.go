package fakes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/systmms/envexplorer/pkg/paramstore"
)

// FakeStore is a manual fake implementation of paramstore.Client.
//
// It keeps parameters in memory, answers prefix listings the way the real
// store does (recursive, every name strictly below the prefix) and can be
// told to fail per prefix or per name.
//
// Example usage:
//
//	fake := fakes.NewFakeStore().
//	    WithParameters(testutil.ExampleParams()...).
//	    WithListError("/prod", errors.New("AccessDeniedException"))
//
//	c := cache.New(fake, cache.WithPrefixes("/dev", "/prod"))
type FakeStore struct {
	params  map[string]paramstore.Parameter
	history map[string][]paramstore.HistoryEntry

	listErrors map[string]error
	putErrors  map[string]error
	listDelay  time.Duration

	// ListByPrefixFunc, when set, replaces the in-memory listing
	ListByPrefixFunc func(ctx context.Context, prefix string) ([]paramstore.Parameter, error)

	callCount map[string]int
	puts      []PutCall

	mu sync.Mutex
}

// PutCall records one PutParameter invocation
type PutCall struct {
	Name      string
	Value     string
	Type      paramstore.Type
	Overwrite bool
}

// NewFakeStore creates an empty FakeStore
func NewFakeStore() *FakeStore {
	return &FakeStore{
		params:     make(map[string]paramstore.Parameter),
		history:    make(map[string][]paramstore.HistoryEntry),
		listErrors: make(map[string]error),
		putErrors:  make(map[string]error),
		callCount:  make(map[string]int),
	}
}

// WithParameters stores params, replacing any with the same name
func (f *FakeStore) WithParameters(params ...paramstore.Parameter) *FakeStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range params {
		f.params[p.Name] = p
	}
	return f
}

// WithListError makes ListByPrefix fail for exactly this prefix
func (f *FakeStore) WithListError(prefix string, err error) *FakeStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErrors[prefix] = err
	return f
}

// WithPutError makes PutParameter fail for this name
func (f *FakeStore) WithPutError(name string, err error) *FakeStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putErrors[name] = err
	return f
}

// WithListDelay simulates latency on every listing. The delay honours ctx.
func (f *FakeStore) WithListDelay(d time.Duration) *FakeStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listDelay = d
	return f
}

// WithHistory sets the history returned for name
func (f *FakeStore) WithHistory(name string, entries ...paramstore.HistoryEntry) *FakeStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[name] = entries
	return f
}

// Remove deletes a parameter from the fake store
func (f *FakeStore) Remove(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.params, name)
}

// ListByPrefix implements paramstore.Client
func (f *FakeStore) ListByPrefix(ctx context.Context, prefix string) ([]paramstore.Parameter, error) {
	f.mu.Lock()
	f.callCount["ListByPrefix"]++
	delay := f.listDelay
	fn := f.ListByPrefixFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, prefix)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.listErrors[prefix]; ok {
		return nil, err
	}

	base := strings.TrimSuffix(prefix, "/") + "/"
	var out []paramstore.Parameter
	for name, p := range f.params {
		if strings.HasPrefix(name, base) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PutParameter implements paramstore.Client
func (f *FakeStore) PutParameter(ctx context.Context, name, value string, typ paramstore.Type, overwrite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount["PutParameter"]++
	f.puts = append(f.puts, PutCall{Name: name, Value: value, Type: typ, Overwrite: overwrite})

	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := f.putErrors[name]; ok {
		return err
	}

	existing, exists := f.params[name]
	if exists && !overwrite {
		return fmt.Errorf("ParameterAlreadyExists: %s", name)
	}

	existing.Name = name
	existing.Value = value
	existing.Type = typ
	existing.Version++
	existing.LastModified = time.Now()
	f.params[name] = existing
	f.history[name] = append(f.history[name], paramstore.HistoryEntry{
		Value:        value,
		Type:         typ,
		LastModified: existing.LastModified,
		Version:      existing.Version,
	})
	return nil
}

// ListHistory implements paramstore.Client
func (f *FakeStore) ListHistory(ctx context.Context, name string) ([]paramstore.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount["ListHistory"]++
	entries, ok := f.history[name]
	if !ok {
		if _, exists := f.params[name]; !exists {
			return nil, fmt.Errorf("ParameterNotFound: %s", name)
		}
	}
	return append([]paramstore.HistoryEntry(nil), entries...), nil
}

// CallCount returns how many times method was called
func (f *FakeStore) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount[method]
}

// Puts returns every recorded PutParameter call
func (f *FakeStore) Puts() []PutCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PutCall(nil), f.puts...)
}

// Get returns the stored parameter
func (f *FakeStore) Get(name string) (paramstore.Parameter, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.params[name]
	return p, ok
}
