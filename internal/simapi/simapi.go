// Package simapi provides an in-process RemoteAPI with scripted replies,
// for the demo binary and integration-style tests. It keeps sessions and
// memories in memory and fabricates commitment hashes locally.
package simapi

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/metamuse/musecore/internal/muse"
)

// Compile-time check.
var _ muse.RemoteAPI = (*API)(nil)

// ReplyFunc produces the Muse's reply to one user message.
type ReplyFunc func(text string) string

// API is a scripted, in-memory RemoteAPI implementation.
type API struct {
	mu       sync.Mutex
	sessions map[string]*muse.Session
	memories []muse.MemoryEntry
	reply    ReplyFunc
	latency  time.Duration

	// FailNextSends makes the next N SendMessage calls fail with a 503.
	FailNextSends int
}

// Option configures the API.
type Option func(*API)

// WithReply sets the reply function. The default echoes the prompt.
func WithReply(fn ReplyFunc) Option {
	return func(a *API) { a.reply = fn }
}

// WithLatency adds an artificial delay to every call.
func WithLatency(d time.Duration) Option {
	return func(a *API) { a.latency = d }
}

// WithMemories seeds the memory corpus.
func WithMemories(entries []muse.MemoryEntry) Option {
	return func(a *API) {
		a.memories = append([]muse.MemoryEntry(nil), entries...)
	}
}

// New creates a scripted API.
func New(opts ...Option) *API {
	a := &API{
		sessions: make(map[string]*muse.Session),
		reply: func(text string) string {
			return "I remember you said: " + text
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GetOrCreateSession implements the RemoteAPI interface.
func (a *API) GetOrCreateSession(ctx context.Context, subjectID, userAddress string) (*muse.Session, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := subjectID + "/" + userAddress
	sess, ok := a.sessions[key]
	if !ok {
		sess = &muse.Session{
			SessionID: uuid.NewString(),
			SubjectID: subjectID,
			IsActive:  true,
		}
		a.sessions[key] = sess
	}

	snapshot := *sess
	snapshot.Messages = append([]muse.Message(nil), sess.Messages...)
	return &snapshot, nil
}

// SendMessage implements the RemoteAPI interface.
func (a *API) SendMessage(ctx context.Context, sessionID, text, userAddress string) (*muse.SendResult, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.FailNextSends > 0 {
		a.FailNextSends--
		return nil, &muse.RequestError{StatusCode: 503, Message: "scripted failure"}
	}

	var sess *muse.Session
	for _, s := range a.sessions {
		if s.SessionID == sessionID {
			sess = s
			break
		}
	}
	if sess == nil {
		return nil, &muse.RequestError{StatusCode: 404, Message: "unknown session " + sessionID}
	}

	now := time.Now()
	msgID := uuid.NewString()
	response := a.reply(text)

	userMsg := muse.Message{
		ID:                 msgID,
		Content:            text,
		Role:               muse.RoleUser,
		Timestamp:          now,
		VerificationStatus: muse.StatusCommitted,
		CommitmentHash:     commitment(userAddress, text),
	}
	agentMsg := muse.Message{
		ID:                 msgID + "-reply",
		Content:            response,
		Role:               muse.RoleAgent,
		Timestamp:          now,
		VerificationStatus: muse.StatusCommitted,
		CommitmentHash:     commitment(sess.SubjectID, response),
	}
	sess.Messages = append(sess.Messages, userMsg, agentMsg)

	return &muse.SendResult{
		ID:                 msgID,
		Response:           response,
		VerificationStatus: muse.StatusCommitted,
		CommitmentHash:     agentMsg.CommitmentHash,
		UserCommitment:     userMsg.CommitmentHash,
	}, nil
}

// QueryMemories implements the RemoteAPI interface. Filters are applied
// the way the real backend does: category equality, all requested tags
// present, importance floor, and case-insensitive keyword matching over
// content, response, and tags.
func (a *API) QueryMemories(ctx context.Context, subjectID string, filter muse.MemoryFilter) ([]muse.MemoryEntry, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var matched []muse.MemoryEntry
	for _, entry := range a.memories {
		if matchesFilter(entry, filter) {
			matched = append(matched, entry)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return matched, nil
}

// SearchMemoriesSemantic implements the RemoteAPI interface with a naive
// token-overlap ranking standing in for embedding search.
func (a *API) SearchMemoriesSemantic(ctx context.Context, subjectID, text string) ([]muse.MemoryEntry, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	queryTokens := tokenize(text)

	type scored struct {
		entry muse.MemoryEntry
		score int
	}
	var results []scored
	for _, entry := range a.memories {
		score := overlap(queryTokens, tokenize(entry.Content+" "+entry.AIResponse))
		if score > 0 {
			results = append(results, scored{entry: entry, score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].entry.Timestamp.After(results[j].entry.Timestamp)
	})

	entries := make([]muse.MemoryEntry, len(results))
	for i, r := range results {
		entries[i] = r.entry
	}
	return entries, nil
}

// Tags implements the RemoteAPI interface.
func (a *API) Tags(ctx context.Context, subjectID string) ([]string, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[string]struct{})
	for _, entry := range a.memories {
		for _, tag := range entry.Tags {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// Stats implements the RemoteAPI interface.
func (a *API) Stats(ctx context.Context, subjectID string) (*muse.MemoryStats, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	stats := &muse.MemoryStats{
		TotalMemories: len(a.memories),
		ByCategory:    make(map[muse.MemoryCategory]int),
	}
	var sum float64
	for _, entry := range a.memories {
		stats.ByCategory[entry.Category]++
		sum += entry.Importance
	}
	if len(a.memories) > 0 {
		stats.AverageImportance = sum / float64(len(a.memories))
	}
	return stats, nil
}

// AddMemory appends an entry to the corpus.
func (a *API) AddMemory(entry muse.MemoryEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memories = append(a.memories, entry)
}

func (a *API) wait(ctx context.Context) error {
	if a.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("request aborted: %w", err)
		}
		return nil
	}

	timer := time.NewTimer(a.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request aborted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func matchesFilter(entry muse.MemoryEntry, filter muse.MemoryFilter) bool {
	if filter.Category != "" && entry.Category != filter.Category {
		return false
	}
	if filter.MinImportance > 0 && entry.Importance < filter.MinImportance {
		return false
	}
	for _, want := range filter.Tags {
		found := false
		for _, have := range entry.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		haystack := strings.ToLower(entry.Content + " " + entry.AIResponse + " " + strings.Join(entry.Tags, " "))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(text)) {
		tokens[strings.Trim(field, ".,!?;:\"'")] = struct{}{}
	}
	delete(tokens, "")
	return tokens
}

func overlap(a, b map[string]struct{}) int {
	count := 0
	for token := range a {
		if _, ok := b[token]; ok {
			count++
		}
	}
	return count
}

func commitment(salt, text string) string {
	sum := sha256.Sum256([]byte(salt + "|" + text))
	return fmt.Sprintf("0x%x", sum[:8])
}
