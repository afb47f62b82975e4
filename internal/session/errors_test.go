package session

import (
	"context"
	"errors"
	"testing"

	"github.com/metamuse/musecore/internal/muse"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "local validation is never retried",
			err:  ErrEmptyMessage,
			want: false,
		},
		{
			name: "in-flight rejection is never retried",
			err:  ErrSendInFlight,
			want: false,
		},
		{
			name: "canceled means superseded, not retried",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "deadline exceeded is transient",
			err:  context.DeadlineExceeded,
			want: true,
		},
		{
			name: "server fault is transient",
			err:  &muse.RequestError{StatusCode: 503, Message: "unavailable"},
			want: true,
		},
		{
			name: "rate limiting is transient",
			err:  &muse.RequestError{StatusCode: 429, Message: "slow down"},
			want: true,
		},
		{
			name: "server rejection is not retried",
			err:  &muse.RequestError{StatusCode: 400, Message: "bad request"},
			want: false,
		},
		{
			name: "not found is not retried",
			err:  &muse.RequestError{StatusCode: 404, Message: "no such session"},
			want: false,
		},
		{
			name: "transport error without status is transient",
			err:  &muse.RequestError{Message: "no response"},
			want: true,
		},
		{
			name: "connection refused sniffed from message",
			err:  errors.New("dial tcp 10.0.0.1:443: connection refused"),
			want: true,
		},
		{
			name: "plain timeout sniffed from message",
			err:  errors.New("request timed out"),
			want: true,
		},
		{
			name: "unclassified error is not retried",
			err:  errors.New("boom"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSendMessageError_Unwrap(t *testing.T) {
	inner := &muse.RequestError{StatusCode: 503, Message: "unavailable"}
	err := &SendMessageError{Err: inner, SessionID: "s-1", Attempts: 3}

	var reqErr *muse.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatal("expected SendMessageError to unwrap to RequestError")
	}
	if reqErr.StatusCode != 503 {
		t.Errorf("unwrapped status = %d, want 503", reqErr.StatusCode)
	}
	if err.Error() == "" {
		t.Error("expected a non-empty message")
	}
}

func TestSessionInitError_Unwrap(t *testing.T) {
	inner := errors.New("request timed out")
	err := &SessionInitError{Err: inner, SubjectID: "muse-1", Attempts: 3}

	if !errors.Is(err, inner) {
		t.Fatal("expected SessionInitError to wrap the underlying error")
	}
}
