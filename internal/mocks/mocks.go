// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/metamuse/musecore/internal/muse"
)

// Compile-time checks to ensure mocks implement their interfaces.
var (
	_ muse.RemoteAPI      = (*MockRemoteAPI)(nil)
	_ muse.WalletIdentity = (*MockWallet)(nil)
)

// SessionCall records a call to GetOrCreateSession.
type SessionCall struct {
	Timestamp   time.Time
	SubjectID   string
	UserAddress string
}

// SendCall records a call to SendMessage.
type SendCall struct {
	Timestamp   time.Time
	SessionID   string
	Text        string
	UserAddress string
}

// QueryCall records a call to QueryMemories.
type QueryCall struct {
	Timestamp time.Time
	SubjectID string
	Filter    muse.MemoryFilter
}

// SearchCall records a call to SearchMemoriesSemantic.
type SearchCall struct {
	Timestamp time.Time
	SubjectID string
	Text      string
}

// MockRemoteAPI is a test implementation of the RemoteAPI interface.
// Behavior is scripted through the *Func fields; calls are recorded for
// assertion.
type MockRemoteAPI struct {
	mu           sync.Mutex
	sessionCalls []SessionCall
	sendCalls    []SendCall
	queryCalls   []QueryCall
	searchCalls  []SearchCall

	// GetOrCreateSessionFunc allows tests to provide custom session behavior.
	GetOrCreateSessionFunc func(ctx context.Context, subjectID, userAddress string) (*muse.Session, error)
	// SendMessageFunc allows tests to provide custom send behavior.
	SendMessageFunc func(ctx context.Context, sessionID, text, userAddress string) (*muse.SendResult, error)
	// QueryMemoriesFunc allows tests to provide custom query behavior.
	QueryMemoriesFunc func(ctx context.Context, subjectID string, filter muse.MemoryFilter) ([]muse.MemoryEntry, error)
	// SearchMemoriesSemanticFunc allows tests to provide custom semantic search behavior.
	SearchMemoriesSemanticFunc func(ctx context.Context, subjectID, text string) ([]muse.MemoryEntry, error)
	// TagsFunc allows tests to provide custom tag lists.
	TagsFunc func(ctx context.Context, subjectID string) ([]string, error)
	// StatsFunc allows tests to provide custom stats.
	StatsFunc func(ctx context.Context, subjectID string) (*muse.MemoryStats, error)
}

// NewMockRemoteAPI creates a new mock remote API.
func NewMockRemoteAPI() *MockRemoteAPI {
	return &MockRemoteAPI{}
}

// GetOrCreateSession implements the RemoteAPI interface.
func (m *MockRemoteAPI) GetOrCreateSession(ctx context.Context, subjectID, userAddress string) (*muse.Session, error) {
	m.mu.Lock()
	m.sessionCalls = append(m.sessionCalls, SessionCall{
		Timestamp:   time.Now(),
		SubjectID:   subjectID,
		UserAddress: userAddress,
	})
	fn := m.GetOrCreateSessionFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, subjectID, userAddress)
	}
	return &muse.Session{
		SessionID: "session-" + subjectID,
		SubjectID: subjectID,
		IsActive:  true,
	}, nil
}

// SendMessage implements the RemoteAPI interface.
func (m *MockRemoteAPI) SendMessage(ctx context.Context, sessionID, text, userAddress string) (*muse.SendResult, error) {
	m.mu.Lock()
	m.sendCalls = append(m.sendCalls, SendCall{
		Timestamp:   time.Now(),
		SessionID:   sessionID,
		Text:        text,
		UserAddress: userAddress,
	})
	fn := m.SendMessageFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, sessionID, text, userAddress)
	}
	return &muse.SendResult{
		ID:                 "msg-1",
		Response:           "mock response",
		VerificationStatus: muse.StatusCommitted,
	}, nil
}

// QueryMemories implements the RemoteAPI interface.
func (m *MockRemoteAPI) QueryMemories(ctx context.Context, subjectID string, filter muse.MemoryFilter) ([]muse.MemoryEntry, error) {
	m.mu.Lock()
	m.queryCalls = append(m.queryCalls, QueryCall{
		Timestamp: time.Now(),
		SubjectID: subjectID,
		Filter:    filter,
	})
	fn := m.QueryMemoriesFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, subjectID, filter)
	}
	return []muse.MemoryEntry{}, nil
}

// SearchMemoriesSemantic implements the RemoteAPI interface.
func (m *MockRemoteAPI) SearchMemoriesSemantic(ctx context.Context, subjectID, text string) ([]muse.MemoryEntry, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, SearchCall{
		Timestamp: time.Now(),
		SubjectID: subjectID,
		Text:      text,
	})
	fn := m.SearchMemoriesSemanticFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, subjectID, text)
	}
	return []muse.MemoryEntry{}, nil
}

// Tags implements the RemoteAPI interface.
func (m *MockRemoteAPI) Tags(ctx context.Context, subjectID string) ([]string, error) {
	m.mu.Lock()
	fn := m.TagsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, subjectID)
	}
	return []string{}, nil
}

// Stats implements the RemoteAPI interface.
func (m *MockRemoteAPI) Stats(ctx context.Context, subjectID string) (*muse.MemoryStats, error) {
	m.mu.Lock()
	fn := m.StatsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, subjectID)
	}
	return &muse.MemoryStats{}, nil
}

// SessionCalls returns a copy of recorded GetOrCreateSession calls.
func (m *MockRemoteAPI) SessionCalls() []SessionCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]SessionCall, len(m.sessionCalls))
	copy(calls, m.sessionCalls)
	return calls
}

// SendCalls returns a copy of recorded SendMessage calls.
func (m *MockRemoteAPI) SendCalls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]SendCall, len(m.sendCalls))
	copy(calls, m.sendCalls)
	return calls
}

// QueryCalls returns a copy of recorded QueryMemories calls.
func (m *MockRemoteAPI) QueryCalls() []QueryCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]QueryCall, len(m.queryCalls))
	copy(calls, m.queryCalls)
	return calls
}

// SearchCalls returns a copy of recorded SearchMemoriesSemantic calls.
func (m *MockRemoteAPI) SearchCalls() []SearchCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]SearchCall, len(m.searchCalls))
	copy(calls, m.searchCalls)
	return calls
}

// MockWallet is a test implementation of the WalletIdentity interface.
type MockWallet struct {
	mu        sync.RWMutex
	addr      string
	connected bool
}

// NewMockWallet creates a connected mock wallet with the given address.
func NewMockWallet(addr string) *MockWallet {
	return &MockWallet{addr: addr, connected: addr != ""}
}

// Address implements the WalletIdentity interface.
func (m *MockWallet) Address() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.addr
}

// Connected implements the WalletIdentity interface.
func (m *MockWallet) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Disconnect clears the wallet state.
func (m *MockWallet) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addr = ""
	m.connected = false
}

// SetAddress connects the wallet with a new address.
func (m *MockWallet) SetAddress(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addr = addr
	m.connected = addr != ""
}
