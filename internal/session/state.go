// Package session implements the interaction session controller: one chat
// session's message list, optimistic sends with rollback, and polling-based
// reconciliation with the server's view of the conversation.
package session

import (
	"sync"

	"github.com/metamuse/musecore/internal/muse"
)

// sendPhase is the lifecycle of one outgoing message.
type sendPhase int

const (
	// phaseComposed means the text was accepted but nothing is visible yet.
	phaseComposed sendPhase = iota
	// phaseOptimisticPending means a temporary message is showing while the
	// network call is outstanding.
	phaseOptimisticPending
	// phaseConfirmed means the temporary message was replaced by the
	// server-confirmed pair.
	phaseConfirmed
	// phaseRolledBack means the temporary message was removed after a
	// terminal failure.
	phaseRolledBack
)

// String returns the phase name.
func (p sendPhase) String() string {
	switch p {
	case phaseComposed:
		return "composed"
	case phaseOptimisticPending:
		return "optimistic-pending"
	case phaseConfirmed:
		return "confirmed"
	case phaseRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// inflightSend tracks the single send a controller allows at a time.
type inflightSend struct {
	tempID string
	text   string
	phase  sendPhase
}

// StatusMachine validates verification-status transitions for messages.
// Statuses only move forward (pending → committed → verified) or to
// failed; they never regress.
type StatusMachine struct {
	transitions map[muse.VerificationStatus][]muse.VerificationStatus
	mu          sync.RWMutex
}

// NewStatusMachine creates a status machine with the message verification
// lifecycle preloaded.
func NewStatusMachine() *StatusMachine {
	return &StatusMachine{
		transitions: map[muse.VerificationStatus][]muse.VerificationStatus{
			muse.StatusPending:   {muse.StatusCommitted, muse.StatusFailed},
			muse.StatusCommitted: {muse.StatusVerified, muse.StatusFailed},
			muse.StatusVerified:  {}, // Terminal state
			muse.StatusFailed:    {}, // Terminal state
		},
	}
}

// CanTransition checks whether moving from one status to another is valid.
func (sm *StatusMachine) CanTransition(from, to muse.VerificationStatus) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	valid, exists := sm.transitions[from]
	if !exists {
		return false
	}

	for _, status := range valid {
		if status == to {
			return true
		}
	}

	return false
}

// IsTerminal checks if a status has no outgoing transitions.
func (sm *StatusMachine) IsTerminal(status muse.VerificationStatus) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	transitions, exists := sm.transitions[status]
	return exists && len(transitions) == 0
}

// mergeStatus picks the status to keep when a server snapshot overlaps a
// local message. A snapshot may legitimately advance a status; it must
// never pull one backward.
func (sm *StatusMachine) mergeStatus(local, server muse.VerificationStatus) muse.VerificationStatus {
	if local == server {
		return local
	}
	if sm.CanTransition(local, server) {
		return server
	}
	return local
}
