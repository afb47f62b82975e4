package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/metamuse/musecore/internal/config"
	"github.com/metamuse/musecore/internal/muse"
)

// Controller manages one chat session against a remote Muse: the message
// list, optimistic sends with rollback, and polling reconciliation with
// the server. All mutation happens inside the controller in response to
// its own events; callers only read snapshots.
type Controller struct {
	api    muse.RemoteAPI
	wallet muse.WalletIdentity
	logger *slog.Logger
	cfg    config.Config
	status *StatusMachine
	poller *poller
	now    func() time.Time

	mu         sync.RWMutex
	session    *muse.Session
	messages   []muse.Message
	inflight   *inflightSend
	loading    bool
	typing     bool
	lastErr    error
	alive      bool
	initCancel context.CancelFunc
	initGen    uint64
}

// Option is a functional option for configuring a Controller.
type Option func(*Controller) error

// WithLogger sets the controller's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) error {
		if logger == nil {
			return fmt.Errorf("invalid option: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(c *Controller) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid option: %w", err)
		}
		c.cfg = cfg
		return nil
	}
}

// NewController creates a session controller for the given backend and
// wallet. Returns an error if required dependencies are missing.
func NewController(api muse.RemoteAPI, wallet muse.WalletIdentity, opts ...Option) (*Controller, error) {
	if api == nil {
		return nil, fmt.Errorf("controller creation failed: remote api is required")
	}
	if wallet == nil {
		return nil, fmt.Errorf("controller creation failed: wallet identity is required")
	}

	c := &Controller{
		api:    api,
		wallet: wallet,
		logger: slog.Default(),
		cfg:    config.Default(),
		status: NewStatusMachine(),
		now:    time.Now,
		alive:  true,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	c.poller = newPoller(c.cfg.PollInterval)

	return c, nil
}

// InitializeSession fetches or creates the session for a subject and the
// current wallet address, retrying transient failures. A new call aborts
// any previous in-flight initialization; the superseded call's result is
// discarded silently. On terminal failure the error state is set and no
// session is fabricated.
func (c *Controller) InitializeSession(ctx context.Context, subjectID string) error {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	addr := c.wallet.Address()
	if addr == "" {
		c.lastErr = ErrWalletRequired
		c.mu.Unlock()
		return ErrWalletRequired
	}

	// Supersede any previous in-flight initialization.
	if c.initCancel != nil {
		c.initCancel()
	}
	initCtx, cancel := context.WithCancel(ctx)
	c.initCancel = cancel
	c.initGen++
	gen := c.initGen
	c.loading = true
	c.mu.Unlock()

	sess, attempts, err := c.initWithRetry(initCtx, subjectID, addr)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.initGen || !c.alive {
		// Superseded by a newer call or torn down; discard.
		if !c.alive {
			c.loading = false
		}
		return nil
	}
	c.loading = false
	c.initCancel = nil
	cancel()

	if err != nil {
		if initCtx.Err() != nil {
			// Aborted, not failed.
			return nil
		}
		initErr := &SessionInitError{Err: err, SubjectID: subjectID, Attempts: attempts}
		c.lastErr = initErr
		c.logger.ErrorContext(ctx, "session initialization failed",
			slog.String("subject_id", subjectID),
			slog.Int("attempts", attempts),
			slog.Any("error", err))
		return initErr
	}

	sess.IsActive = true
	c.session = sess
	c.messages = append([]muse.Message(nil), sess.Messages...)
	c.lastErr = nil

	c.logger.InfoContext(ctx, "session initialized",
		slog.String("session_id", sess.SessionID),
		slog.String("subject_id", subjectID),
		slog.Int("messages", len(c.messages)))

	c.poller.Start(context.WithoutCancel(ctx), c.reconcile)

	return nil
}

// SendMessage delivers one user message. The message appears in the list
// immediately with a temporary id and pending status; on success it is
// atomically replaced by the server-confirmed pair (user + agent reply),
// on terminal failure it is removed entirely and the error surfaced.
// Rejected with ErrSendInFlight while a previous send is unresolved.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		c.setError(ErrEmptyMessage)
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.inflight != nil {
		// The caller must wait for the previous send to resolve; this is
		// not recorded in the error state.
		c.mu.Unlock()
		return ErrSendInFlight
	}
	if c.session == nil || !c.session.IsActive {
		c.lastErr = ErrNoActiveSession
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	addr := c.wallet.Address()
	if addr == "" {
		c.lastErr = ErrWalletRequired
		c.mu.Unlock()
		return ErrWalletRequired
	}

	now := c.now()
	send := &inflightSend{
		tempID: fmt.Sprintf("temp-%d", now.UnixNano()),
		text:   trimmed,
		phase:  phaseComposed,
	}
	optimistic := muse.Message{
		ID:                 send.tempID,
		Content:            trimmed,
		Role:               muse.RoleUser,
		Timestamp:          now,
		VerificationStatus: muse.StatusPending,
	}
	c.messages = append(c.messages, optimistic)
	send.phase = phaseOptimisticPending
	c.inflight = send
	c.typing = true
	sessionID := c.session.SessionID
	c.mu.Unlock()

	// Sending and typing flags are cleared on every exit path.
	defer func() {
		c.mu.Lock()
		c.inflight = nil
		c.typing = false
		c.mu.Unlock()
	}()

	result, attempts, err := c.sendWithRetry(ctx, sessionID, trimmed, addr)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.alive {
		// Resolved after teardown; the result is ignored.
		send.phase = phaseRolledBack
		return nil
	}

	if err != nil {
		// Rollback: the optimistic message disappears rather than being
		// left in place marked failed.
		c.removeMessageLocked(send.tempID)
		send.phase = phaseRolledBack
		sendErr := &SendMessageError{Err: err, SessionID: sessionID, Attempts: attempts}
		c.lastErr = sendErr
		c.logger.ErrorContext(ctx, "message send failed",
			slog.String("session_id", sessionID),
			slog.Int("attempts", attempts),
			slog.Any("error", err))
		return sendErr
	}

	confirmed := muse.Message{
		ID:                 result.ID,
		Content:            trimmed,
		Role:               muse.RoleUser,
		Timestamp:          optimistic.Timestamp,
		VerificationStatus: muse.StatusCommitted,
		CommitmentHash:     result.UserCommitment,
	}
	replyStatus := result.VerificationStatus
	if replyStatus == "" {
		replyStatus = muse.StatusCommitted
	}
	reply := muse.Message{
		ID:                 result.ID + "-reply",
		Content:            result.Response,
		Role:               muse.RoleAgent,
		Timestamp:          c.now(),
		VerificationStatus: replyStatus,
		CommitmentHash:     result.CommitmentHash,
	}

	// Replace-and-append in a single critical section: no observer ever
	// sees both the temporary and the confirmed message, nor a gap.
	if idx := c.indexOfLocked(send.tempID); idx >= 0 {
		updated := make([]muse.Message, 0, len(c.messages)+1)
		updated = append(updated, c.messages[:idx]...)
		updated = append(updated, confirmed, reply)
		updated = append(updated, c.messages[idx+1:]...)
		c.messages = updated
	} else if c.indexOfLocked(result.ID) < 0 {
		// A polling replacement consumed the optimistic entry while the
		// send was in flight and the snapshot predates this exchange.
		c.messages = append(c.messages, confirmed, reply)
	}
	send.phase = phaseConfirmed
	c.lastErr = nil

	return nil
}

// Close tears the controller down: stops polling, marks the session
// inactive, and causes any in-flight send's eventual result to be ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}
	c.alive = false
	if c.session != nil {
		c.session.IsActive = false
	}
	if c.initCancel != nil {
		c.initCancel()
		c.initCancel = nil
	}
	c.mu.Unlock()

	c.poller.Stop()
}

// Messages returns a snapshot of the current message list.
func (c *Controller) Messages() []muse.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]muse.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Session returns a snapshot of the current session, or nil before
// initialization.
func (c *Controller) Session() *muse.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil
	}
	snapshot := *c.session
	snapshot.Messages = make([]muse.Message, len(c.messages))
	copy(snapshot.Messages, c.messages)
	return &snapshot
}

// IsSending reports whether a send is unresolved.
func (c *Controller) IsSending() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight != nil
}

// IsTyping reports whether an agent reply is outstanding.
func (c *Controller) IsTyping() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.typing
}

// IsLoading reports whether session initialization is in flight.
func (c *Controller) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Polling reports whether the reconciliation loop is running.
func (c *Controller) Polling() bool {
	return c.poller.Running()
}

// Err returns the last surfaced error, or nil. Cleared by ClearError or by
// the next successful operation.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// ClearError resets the error state.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

func (c *Controller) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
}

// initWithRetry attempts session initialization up to the configured
// limit, backing off between transient failures.
func (c *Controller) initWithRetry(ctx context.Context, subjectID, addr string) (*muse.Session, int, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt < c.cfg.MaxInitAttempts; attempt++ {
		attempts++
		sess, err := c.api.GetOrCreateSession(ctx, subjectID, addr)
		if err == nil {
			return sess, attempts, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == c.cfg.MaxInitAttempts-1 {
			break
		}
		c.logger.DebugContext(ctx, "session init attempt failed, retrying",
			slog.Int("attempt", attempts),
			slog.Any("error", err))
		if sleepErr := sleepContext(ctx, RetryDelay(attempt, c.cfg.RetryBaseDelay, c.cfg.RetryMaxDelay)); sleepErr != nil {
			return nil, attempts, lastErr
		}
	}

	return nil, attempts, lastErr
}

// sendWithRetry attempts a message send up to the configured limit,
// backing off between transient failures. Server rejections are not
// retried.
func (c *Controller) sendWithRetry(ctx context.Context, sessionID, text, addr string) (*muse.SendResult, int, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt < c.cfg.MaxSendAttempts; attempt++ {
		attempts++
		result, err := c.api.SendMessage(ctx, sessionID, text, addr)
		if err == nil {
			return result, attempts, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == c.cfg.MaxSendAttempts-1 {
			break
		}
		c.logger.DebugContext(ctx, "send attempt failed, retrying",
			slog.Int("attempt", attempts),
			slog.Any("error", err))
		if sleepErr := sleepContext(ctx, RetryDelay(attempt, c.cfg.RetryBaseDelay, c.cfg.RetryMaxDelay)); sleepErr != nil {
			return nil, attempts, lastErr
		}
	}

	return nil, attempts, lastErr
}

// reconcile is one polling tick: re-fetch the session and replace the
// local list wholesale only when the server knows strictly more messages.
// The monotonic-count gate keeps a stale snapshot from clobbering an
// in-flight optimistic message. Poll failures are logged and swallowed;
// they self-heal on the next tick.
func (c *Controller) reconcile(ctx context.Context) {
	c.mu.RLock()
	if !c.alive || c.session == nil {
		c.mu.RUnlock()
		return
	}
	subjectID := c.session.SubjectID
	c.mu.RUnlock()

	addr := c.wallet.Address()
	if addr == "" {
		return
	}

	sess, err := c.api.GetOrCreateSession(ctx, subjectID, addr)
	if err != nil {
		c.logger.DebugContext(ctx, "session poll failed",
			slog.String("subject_id", subjectID),
			slog.Any("error", err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.alive || c.session == nil {
		return
	}
	if len(sess.Messages) <= len(c.messages) {
		return
	}

	// Carry forward any local verification status the snapshot would
	// regress; a snapshot may advance a status, never pull it back.
	localStatus := make(map[string]muse.VerificationStatus, len(c.messages))
	for _, m := range c.messages {
		localStatus[m.ID] = m.VerificationStatus
	}
	merged := make([]muse.Message, len(sess.Messages))
	for i, m := range sess.Messages {
		if local, ok := localStatus[m.ID]; ok {
			m.VerificationStatus = c.status.mergeStatus(local, m.VerificationStatus)
		}
		merged[i] = m
	}
	c.messages = merged
}

func (c *Controller) indexOfLocked(id string) int {
	for i, m := range c.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) removeMessageLocked(id string) {
	if idx := c.indexOfLocked(id); idx >= 0 {
		c.messages = append(c.messages[:idx], c.messages[idx+1:]...)
	}
}
