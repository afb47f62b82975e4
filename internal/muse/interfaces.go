package muse

import "context"

// RemoteAPI is the backend the interaction core talks to. Transport, auth,
// and wire format live behind this interface; the core never implements it.
type RemoteAPI interface {
	// GetOrCreateSession fetches the active session for a subject and
	// wallet address, creating one server-side if none exists.
	GetOrCreateSession(ctx context.Context, subjectID, userAddress string) (*Session, error)

	// SendMessage delivers one user message and returns the server's
	// acknowledgment together with the Muse's reply.
	SendMessage(ctx context.Context, sessionID, text, userAddress string) (*SendResult, error)

	// QueryMemories returns the entries matching a filter, most recent first.
	QueryMemories(ctx context.Context, subjectID string, filter MemoryFilter) ([]MemoryEntry, error)

	// SearchMemoriesSemantic runs an embedding search over the corpus.
	SearchMemoriesSemantic(ctx context.Context, subjectID, text string) ([]MemoryEntry, error)

	// Tags returns every tag present in the subject's corpus.
	Tags(ctx context.Context, subjectID string) ([]string, error)

	// Stats returns server-computed aggregates for the subject's corpus.
	Stats(ctx context.Context, subjectID string) (*MemoryStats, error)
}

// WalletIdentity supplies the current user's wallet state. A controller
// treats an empty address as "cannot send or initialize".
type WalletIdentity interface {
	// Address returns the connected wallet address, or "" when none is connected.
	Address() string

	// Connected reports whether a wallet is currently connected.
	Connected() bool
}
