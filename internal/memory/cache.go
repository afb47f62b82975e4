package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/metamuse/musecore/internal/muse"
)

// QueryCache provides a responsive, filterable view over a subject's
// remote memory corpus. Results are cached by normalized filter
// signature so repeating a filter costs no network call; a single
// "current query" slot aborts superseded fetches so a stale response
// never overwrites a newer result set.
type QueryCache struct {
	api       muse.RemoteAPI
	subjectID string
	logger    *slog.Logger

	mu          sync.RWMutex
	entries     map[string][]muse.MemoryEntry
	results     []muse.MemoryEntry
	tags        []string
	stats       *muse.MemoryStats
	filter      muse.MemoryFilter
	loading     bool
	searching   bool
	lastErr     error
	queryCancel context.CancelFunc
	queryGen    uint64
}

// CacheOption is a functional option for configuring a QueryCache.
type CacheOption func(*QueryCache) error

// WithLogger sets the cache's logger.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *QueryCache) error {
		if logger == nil {
			return fmt.Errorf("invalid option: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// NewQueryCache creates a memory cache scoped to one subject.
func NewQueryCache(api muse.RemoteAPI, subjectID string, opts ...CacheOption) (*QueryCache, error) {
	if api == nil {
		return nil, fmt.Errorf("cache creation failed: remote api is required")
	}
	if subjectID == "" {
		return nil, fmt.Errorf("cache creation failed: %w", ErrNoSubject)
	}

	c := &QueryCache{
		api:       api,
		subjectID: subjectID,
		logger:    slog.Default(),
		entries:   make(map[string][]muse.MemoryEntry),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return c, nil
}

// Query loads the entries matching a filter, serving from cache when the
// same normalized filter was seen before. At most one network request is
// issued per call; any previous in-flight fetch is aborted first.
func (c *QueryCache) Query(ctx context.Context, filter muse.MemoryFilter) error {
	return c.run(ctx, filter, false, false)
}

// Search runs a text search. Keyword mode merges the text with the
// active filter's category, tags, and importance floor; semantic mode is
// delegated wholesale to the remote store. Empty or whitespace-only text
// clears the search and falls back to the unfiltered query.
func (c *QueryCache) Search(ctx context.Context, text string, mode muse.SearchMode) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return c.run(ctx, muse.MemoryFilter{}, false, false)
	}

	var filter muse.MemoryFilter
	if mode == muse.SearchKeyword {
		filter = c.activeFilter()
	}
	filter.Search = trimmed
	filter.SearchType = mode

	return c.run(ctx, filter, false, true)
}

// ApplyFilter loads entries for the given filter fields, dropping any
// active search text.
func (c *QueryCache) ApplyFilter(ctx context.Context, filter muse.MemoryFilter) error {
	filter.Search = ""
	filter.SearchType = ""
	return c.run(ctx, filter, false, false)
}

// ClearFilter resets to the unfiltered view.
func (c *QueryCache) ClearFilter(ctx context.Context) error {
	return c.run(ctx, muse.MemoryFilter{}, false, false)
}

// Refresh discards the entire cache, re-issues the active filter's query
// against the server, and reloads the tag list and stats aggregates.
// Used after any action that could have changed the underlying corpus.
func (c *QueryCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string][]muse.MemoryEntry)
	filter := c.filter
	c.mu.Unlock()

	if err := c.run(ctx, filter, true, false); err != nil {
		return err
	}

	c.loadAggregates(ctx)
	return nil
}

// run owns the current-query slot: it aborts any in-flight fetch, issues
// at most one request, and installs the response only if no newer call
// has taken the slot since.
func (c *QueryCache) run(ctx context.Context, filter muse.MemoryFilter, bypass, searching bool) error {
	sig := signature(c.subjectID, filter)

	c.mu.Lock()
	c.filter = filter
	if !bypass {
		if cached, ok := c.entries[sig]; ok {
			// A cache hit still takes the current-query slot: any
			// in-flight fetch is now stale and must not land on top of
			// the result set this call makes visible.
			if c.queryCancel != nil {
				c.queryCancel()
				c.queryCancel = nil
			}
			c.queryGen++
			c.loading = false
			c.searching = false
			c.results = cached
			c.mu.Unlock()
			return nil
		}
	}

	// Supersede any in-flight fetch for the slot.
	if c.queryCancel != nil {
		c.queryCancel()
	}
	queryCtx, cancel := context.WithCancel(ctx)
	c.queryCancel = cancel
	c.queryGen++
	gen := c.queryGen
	if searching {
		c.searching = true
	} else {
		c.loading = true
	}
	c.mu.Unlock()

	var (
		entries []muse.MemoryEntry
		err     error
	)
	if filter.SearchType == muse.SearchSemantic && filter.Search != "" {
		entries, err = c.api.SearchMemoriesSemantic(queryCtx, c.subjectID, filter.Search)
	} else {
		entries, err = c.api.QueryMemories(queryCtx, c.subjectID, filter)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.queryGen {
		// A newer call owns the slot; this response is stale.
		return nil
	}
	cancel()
	c.queryCancel = nil
	c.loading = false
	c.searching = false

	if err != nil {
		if queryCtx.Err() != nil {
			// Aborted, never surfaced.
			return nil
		}
		queryErr := &QueryError{Err: err, SubjectID: c.subjectID}
		c.lastErr = queryErr
		c.logger.ErrorContext(ctx, "memory query failed",
			slog.String("subject_id", c.subjectID),
			slog.Any("error", err))
		// Previous results stay visible.
		return queryErr
	}

	c.entries[sig] = entries
	c.results = entries
	c.lastErr = nil
	return nil
}

// loadAggregates refreshes the tag list and corpus stats. Failures keep
// the previous aggregates and are logged only; they do not disturb the
// result-set error state.
func (c *QueryCache) loadAggregates(ctx context.Context) {
	tags, err := c.api.Tags(ctx, c.subjectID)
	if err != nil {
		c.logger.DebugContext(ctx, "tag reload failed",
			slog.String("subject_id", c.subjectID),
			slog.Any("error", err))
	} else {
		c.mu.Lock()
		c.tags = tags
		c.mu.Unlock()
	}

	stats, err := c.api.Stats(ctx, c.subjectID)
	if err != nil {
		c.logger.DebugContext(ctx, "stats reload failed",
			slog.String("subject_id", c.subjectID),
			slog.Any("error", err))
		return
	}
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
}

// Results returns a snapshot of the currently loaded result set.
func (c *QueryCache) Results() []muse.MemoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]muse.MemoryEntry, len(c.results))
	copy(out, c.results)
	return out
}

// Tags returns the last loaded tag list.
func (c *QueryCache) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.tags))
	copy(out, c.tags)
	return out
}

// Stats returns the last loaded corpus stats, or nil.
func (c *QueryCache) Stats() *muse.MemoryStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stats == nil {
		return nil
	}
	snapshot := *c.stats
	return &snapshot
}

// Filter returns the active filter.
func (c *QueryCache) Filter() muse.MemoryFilter {
	return c.activeFilter()
}

// IsLoading reports whether a filter query is in flight.
func (c *QueryCache) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// IsSearching reports whether a text search is in flight.
func (c *QueryCache) IsSearching() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searching
}

// Err returns the last surfaced error, or nil. Cleared by ClearError or
// by the next successful query.
func (c *QueryCache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// ClearError resets the error state independently of the loaded data.
func (c *QueryCache) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

func (c *QueryCache) activeFilter() muse.MemoryFilter {
	c.mu.RLock()
	defer c.mu.RUnlock()

	filter := c.filter
	filter.Tags = append([]string(nil), c.filter.Tags...)
	return filter
}
