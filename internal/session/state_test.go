package session

import (
	"testing"

	"github.com/metamuse/musecore/internal/muse"
)

func TestStatusMachine_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from muse.VerificationStatus
		to   muse.VerificationStatus
		want bool
	}{
		// Valid transitions
		{
			name: "pending to committed",
			from: muse.StatusPending,
			to:   muse.StatusCommitted,
			want: true,
		},
		{
			name: "pending to failed",
			from: muse.StatusPending,
			to:   muse.StatusFailed,
			want: true,
		},
		{
			name: "committed to verified",
			from: muse.StatusCommitted,
			to:   muse.StatusVerified,
			want: true,
		},
		{
			name: "committed to failed",
			from: muse.StatusCommitted,
			to:   muse.StatusFailed,
			want: true,
		},

		// Invalid transitions
		{
			name: "pending to verified skips committed",
			from: muse.StatusPending,
			to:   muse.StatusVerified,
			want: false,
		},
		{
			name: "committed back to pending",
			from: muse.StatusCommitted,
			to:   muse.StatusPending,
			want: false,
		},
		{
			name: "verified back to committed",
			from: muse.StatusVerified,
			to:   muse.StatusCommitted,
			want: false,
		},
		{
			name: "verified to failed",
			from: muse.StatusVerified,
			to:   muse.StatusFailed,
			want: false,
		},
		{
			name: "failed to anything",
			from: muse.StatusFailed,
			to:   muse.StatusCommitted,
			want: false,
		},
		{
			name: "unknown status",
			from: muse.VerificationStatus("bogus"),
			to:   muse.StatusCommitted,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStatusMachine()
			if got := sm.CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStatusMachine_IsTerminal(t *testing.T) {
	sm := NewStatusMachine()

	tests := []struct {
		status muse.VerificationStatus
		want   bool
	}{
		{muse.StatusPending, false},
		{muse.StatusCommitted, false},
		{muse.StatusVerified, true},
		{muse.StatusFailed, true},
		{muse.VerificationStatus("bogus"), false},
	}

	for _, tt := range tests {
		if got := sm.IsTerminal(tt.status); got != tt.want {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestStatusMachine_MergeStatus(t *testing.T) {
	sm := NewStatusMachine()

	tests := []struct {
		name   string
		local  muse.VerificationStatus
		server muse.VerificationStatus
		want   muse.VerificationStatus
	}{
		{
			name:   "snapshot advances committed to verified",
			local:  muse.StatusCommitted,
			server: muse.StatusVerified,
			want:   muse.StatusVerified,
		},
		{
			name:   "snapshot cannot regress verified",
			local:  muse.StatusVerified,
			server: muse.StatusCommitted,
			want:   muse.StatusVerified,
		},
		{
			name:   "snapshot cannot regress committed to pending",
			local:  muse.StatusCommitted,
			server: muse.StatusPending,
			want:   muse.StatusCommitted,
		},
		{
			name:   "identical statuses pass through",
			local:  muse.StatusCommitted,
			server: muse.StatusCommitted,
			want:   muse.StatusCommitted,
		},
		{
			name:   "snapshot can fail a committed message",
			local:  muse.StatusCommitted,
			server: muse.StatusFailed,
			want:   muse.StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sm.mergeStatus(tt.local, tt.server); got != tt.want {
				t.Errorf("mergeStatus(%s, %s) = %s, want %s", tt.local, tt.server, got, tt.want)
			}
		})
	}
}

func TestSendPhaseString(t *testing.T) {
	tests := []struct {
		phase sendPhase
		want  string
	}{
		{phaseComposed, "composed"},
		{phaseOptimisticPending, "optimistic-pending"},
		{phaseConfirmed, "confirmed"},
		{phaseRolledBack, "rolled-back"},
		{sendPhase(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("sendPhase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
