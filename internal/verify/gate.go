// Package verify implements the email-verification gate that blocks the
// admissions form until the user's address is confirmed. Three redundant
// signal sources feed one state machine: the auth-state event stream, a
// fixed-interval identity poll, and a cross-session broadcast. The first
// source to observe confirmation wins; the terminal transition is idempotent
// no matter how many sources fire.
package verify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/littlegems/admissions/internal/auth"
	"github.com/littlegems/admissions/internal/models"
)

// State of the gate.
type State int

const (
	StatePolling State = iota
	StateVerified
	StateTimedOut
	StateManualVerifying
	StateError
)

const (
	// PollInterval is how often the identity record is re-fetched.
	PollInterval = 3 * time.Second
	// MaxPollingDuration is the accumulated polling ceiling; reaching it
	// parks the gate in StateTimedOut until the user requests a new email.
	MaxPollingDuration = 300 * time.Second
	// ResendCooldown disables the resend action client-side after a
	// successful send. It guards against rapid re-clicking only; the server
	// enforces its own rate limit independently.
	ResendCooldown = 60 * time.Second
)

var (
	ErrCooldown      = errors.New("verify: resend is cooling down")
	ErrTokenRequired = errors.New("verify: enter a verification token")
)

// Identity is the slice of the auth service the gate needs.
type Identity interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	VerifyToken(ctx context.Context, email, token string) (*models.User, error)
}

// Resender requests a fresh verification email; implementations carry the
// server-side rate limit.
type Resender interface {
	Resend(ctx context.Context, email string) error
}

// Gate is the verification screen's state machine. One Gate serves one
// signed-in, unverified user session.
type Gate struct {
	identity Identity
	resender Resender
	log      *zap.Logger

	userID string
	email  string

	events   <-chan auth.Event
	evOff    func()
	bc       *Channel
	bcCh     <-chan struct{}
	bcOff    func()
	navigate func()

	mu            sync.Mutex
	state         State
	errMsg        string
	polled        time.Duration
	cooldownUntil time.Time
	navigated     bool

	cancel context.CancelFunc
	done   chan struct{}
	now    func() time.Time
}

// New builds a gate for user. If the email is already confirmed the gate
// starts Verified and navigates immediately; Start is then a no-op.
func New(identity Identity, resender Resender, bus *auth.Bus, bc *Channel, user *models.User, navigate func(), log *zap.Logger) *Gate {
	g := &Gate{
		identity: identity,
		resender: resender,
		log:      log,
		userID:   user.ID,
		email:    user.Email,
		bc:       bc,
		navigate: navigate,
		now:      time.Now,
	}
	g.events, g.evOff = bus.Subscribe()
	g.bcCh, g.bcOff = bc.Subscribe()

	if user.Verified() {
		g.markVerified("precheck", false)
	}
	return g
}

// SetClock overrides the clock; tests only.
func (g *Gate) SetClock(now func() time.Time) { g.now = now }

// State returns the current gate state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ErrorMessage returns the user-facing error, if any.
func (g *Gate) ErrorMessage() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errMsg
}

// CooldownRemaining is how long the resend button stays disabled.
func (g *Gate) CooldownRemaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if d := g.cooldownUntil.Sub(g.now()); d > 0 {
		return d
	}
	return 0
}

// Start runs the gate loop until verification, cancellation, or Stop.
// Safe to call once.
func (g *Gate) Start(ctx context.Context) {
	if g.State() == StateVerified {
		return
	}
	ctx, g.cancel = context.WithCancel(ctx)
	g.done = make(chan struct{})

	go func() {
		defer close(g.done)
		ticker := time.NewTicker(PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if g.pollOnce(ctx) {
					return
				}
			case ev, ok := <-g.events:
				if !ok {
					return
				}
				if g.onAuthEvent(ev) {
					return
				}
			case _, ok := <-g.bcCh:
				if !ok {
					return
				}
				if g.onBroadcast() {
					return
				}
			}
		}
	}()
}

// Stop cancels polling and unsubscribes both listeners. Unmounting the gate
// without Stop would leak a ticker firing against a dead view.
func (g *Gate) Stop() {
	if g.cancel != nil {
		g.cancel()
		<-g.done
	}
	g.evOff()
	g.bcOff()
}

// pollOnce re-fetches the identity record and advances the polling clock.
// Returns true when the loop should exit.
func (g *Gate) pollOnce(ctx context.Context) bool {
	g.mu.Lock()
	if g.state == StateTimedOut || g.state == StateVerified {
		// Timed out: no further poll requests are issued until resend.
		done := g.state == StateVerified
		g.mu.Unlock()
		return done
	}
	g.polled += PollInterval
	timedOut := g.polled >= MaxPollingDuration
	g.mu.Unlock()

	user, err := g.identity.GetUser(ctx, g.userID)
	if err == nil && user.Verified() {
		return g.markVerified("poll", true)
	}
	if err != nil {
		// Transient errors don't stop polling.
		g.log.Debug("verification poll failed", zap.Error(err))
	}

	if timedOut {
		g.mu.Lock()
		if g.state != StateVerified {
			g.state = StateTimedOut
			g.errMsg = `Verification timeout. Please click "Resend" to get a new email.`
		}
		g.mu.Unlock()
	}
	return false
}

// onAuthEvent handles a push-style auth-state change.
func (g *Gate) onAuthEvent(ev auth.Event) bool {
	if ev.UserID != g.userID || !ev.Confirmed {
		return false
	}
	return g.markVerified("auth-event", true)
}

// onBroadcast handles a confirmation observed by another session.
func (g *Gate) onBroadcast() bool {
	// The announcing side already told everyone else; don't re-announce.
	return g.markVerified("broadcast", false)
}

// markVerified fires the terminal transition exactly once: state change,
// single navigation, and (for locally observed confirmations) one broadcast
// to the other sessions. Redundant signals are no-ops.
func (g *Gate) markVerified(source string, announce bool) bool {
	g.mu.Lock()
	if g.navigated {
		g.mu.Unlock()
		return true
	}
	g.navigated = true
	g.state = StateVerified
	g.errMsg = ""
	g.mu.Unlock()

	g.log.Info("email verification confirmed", zap.String("source", source))
	if announce {
		g.bc.Announce()
	}
	if g.navigate != nil {
		g.navigate()
	}
	return true
}

// VerifyManual performs the one-shot token verification for a pasted token.
// Background polling keeps running while the call is in flight; a failure
// surfaces inline and returns the gate to Polling.
func (g *Gate) VerifyManual(ctx context.Context, token string) error {
	if token == "" {
		g.mu.Lock()
		g.errMsg = "Please enter a verification token"
		g.mu.Unlock()
		return ErrTokenRequired
	}

	g.mu.Lock()
	prev := g.state
	if prev != StateVerified {
		g.state = StateManualVerifying
		g.errMsg = ""
	}
	g.mu.Unlock()

	_, err := g.identity.VerifyToken(ctx, g.email, token)
	if err != nil {
		g.mu.Lock()
		if g.state == StateManualVerifying {
			g.state = prev
		}
		g.errMsg = "Invalid or expired token"
		g.mu.Unlock()
		return err
	}

	g.markVerified("manual", true)
	return nil
}

// Resend requests a new verification email. A client-side cooldown guards
// the button; the server applies its own rate limit on top. A successful
// resend from TimedOut puts the gate back into Polling with the clock reset.
func (g *Gate) Resend(ctx context.Context) error {
	g.mu.Lock()
	if g.now().Before(g.cooldownUntil) {
		g.mu.Unlock()
		return ErrCooldown
	}
	g.mu.Unlock()

	if err := g.resender.Resend(ctx, g.email); err != nil {
		g.mu.Lock()
		g.errMsg = err.Error()
		g.mu.Unlock()
		return err
	}

	g.mu.Lock()
	g.cooldownUntil = g.now().Add(ResendCooldown)
	if g.state == StateTimedOut {
		g.state = StatePolling
		g.polled = 0
	}
	g.errMsg = ""
	g.mu.Unlock()
	return nil
}
