// Package muse defines the domain model for the MetaMuse interaction core:
// chat messages and sessions, memory entries, and the ports the controllers
// consume (the remote backend and the wallet identity).
package muse

import (
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks a message written by the wallet holder.
	RoleUser Role = "user"

	// RoleAgent marks a message written by the Muse.
	RoleAgent Role = "agent"
)

// VerificationStatus tracks how far a message has progressed through
// commitment and on-chain verification.
type VerificationStatus string

const (
	// StatusPending indicates an optimistic local message the server has
	// not acknowledged yet.
	StatusPending VerificationStatus = "pending"

	// StatusCommitted indicates the server acknowledged the message and
	// produced a commitment hash.
	StatusCommitted VerificationStatus = "committed"

	// StatusVerified indicates the commitment was verified on-chain.
	StatusVerified VerificationStatus = "verified"

	// StatusFailed indicates verification failed permanently.
	StatusFailed VerificationStatus = "failed"
)

// Message is a single chat message within a session.
//
// Optimistic local messages carry a temporary id ("temp-<nanos>") until the
// server assigns a real one. Content is immutable once created; only the
// verification status and the commitment fields change afterwards.
type Message struct {
	Timestamp          time.Time
	ID                 string
	Content            string
	Role               Role
	VerificationStatus VerificationStatus
	CommitmentHash     string
	TxHash             string
}

// Session is one conversation with a Muse. Messages are kept in
// chronological insertion order and are owned exclusively by the
// session's controller.
type Session struct {
	SessionID string
	SubjectID string
	Messages  []Message
	IsActive  bool
}

// SendResult is the server's acknowledgment of a sent message: the
// confirmed id for the user message, the Muse's reply, and the commitment
// material for both sides of the exchange.
type SendResult struct {
	ID                 string
	Response           string
	VerificationStatus VerificationStatus
	CommitmentHash     string
	UserCommitment     string
}

// MemoryCategory classifies a memory entry.
type MemoryCategory string

const (
	// CategoryLearning covers memories formed while the Muse learned
	// something about the user.
	CategoryLearning MemoryCategory = "learning"
	// CategoryEmotional covers emotionally significant exchanges.
	CategoryEmotional MemoryCategory = "emotional"
	// CategoryFactual covers recalled facts.
	CategoryFactual MemoryCategory = "factual"
	// CategoryCreative covers creative collaboration.
	CategoryCreative MemoryCategory = "creative"
	// CategoryPersonal covers personal context about the user.
	CategoryPersonal MemoryCategory = "personal"
)

// MemoryEntry is one record in the Muse's remote memory corpus. Entries
// are owned by the remote store; the client only mirrors subsets and
// never mutates them.
type MemoryEntry struct {
	Timestamp  time.Time
	ID         string
	Content    string
	AIResponse string
	Category   MemoryCategory
	Tags       []string
	Importance float64
}

// SearchMode selects how a text search is executed.
type SearchMode string

const (
	// SearchKeyword combines the text with the active filter fields and
	// runs a keyword match on the server.
	SearchKeyword SearchMode = "keyword"
	// SearchSemantic delegates the whole query to the server's embedding
	// search; no local re-filtering applies.
	SearchSemantic SearchMode = "semantic"
)

// MemoryFilter narrows a memory query. Zero values mean "no constraint":
// an empty Category matches all categories, an empty tag list matches all
// tags, and a MinImportance of 0 applies no floor.
type MemoryFilter struct {
	Category      MemoryCategory
	Tags          []string
	MinImportance float64
	Search        string
	SearchType    SearchMode
}

// MemoryStats are server-computed aggregates over a Muse's full corpus.
type MemoryStats struct {
	TotalMemories     int
	AverageImportance float64
	ByCategory        map[MemoryCategory]int
}
