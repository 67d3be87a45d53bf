// Package service implements the business logic for the storefront and the
// admin console, on top of the ports defined in internal/port.
package service

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/observability"
	"github.com/kamau/sugarbloom-api/internal/port"
)

var sessionTracer = otel.Tracer("session")

// refreshLead is how long before expiry the access token is renewed.
const refreshLead = 2 * time.Minute

// SessionManager owns the process-wide authentication state machine. It
// starts in the loading state and settles into authenticated or anonymous;
// there is no terminal state. All state transitions funnel through apply,
// whether they originate from the auth event stream or from an explicit
// operation, so the two initialization paths cannot race.
type SessionManager struct {
	auth       port.AuthAPI
	profiles   port.ProfileStore
	notifier   port.Notifier
	logger     *zap.Logger
	metrics    *observability.Metrics
	siteOrigin string

	mu      sync.Mutex
	state   string
	session *domain.Session
	profile *domain.Profile

	// tasks decouples profile fetches from the event stream: apply never
	// performs I/O, it only enqueues. The drain goroutine does the fetch.
	tasks       chan func(ctx context.Context)
	done        chan struct{}
	unsubscribe func()
	closeOnce   sync.Once
}

// NewSessionManager creates the session manager. Exactly one instance exists
// per process; everything that needs auth state receives it by injection.
func NewSessionManager(auth port.AuthAPI, profiles port.ProfileStore, notifier port.Notifier, metrics *observability.Metrics, siteOrigin string, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		auth:       auth,
		profiles:   profiles,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics,
		siteOrigin: siteOrigin,
		state:      domain.SessionStateLoading,
		tasks:      make(chan func(ctx context.Context), 16),
		done:       make(chan struct{}),
	}
}

// Start subscribes to the auth event stream, starts the background workers,
// and resolves the initial session. Both the subscription and the explicit
// initial check feed the same apply path; whichever lands last wins, and
// applying the same session twice is a no-op.
func (m *SessionManager) Start(ctx context.Context) {
	m.unsubscribe = m.auth.Subscribe(func(ev domain.AuthEvent) {
		m.apply(ev.Event, ev.Session)
	})

	go m.drain(ctx)
	go m.refreshLoop(ctx)

	// No session survives a restart, so the initial check resolves to the
	// session currently held (none at boot).
	m.mu.Lock()
	current := m.session
	m.mu.Unlock()
	m.apply(domain.AuthEventInitialSession, current)

	m.logger.Info("session manager started")
}

// Close unsubscribes from the event stream and stops the workers.
func (m *SessionManager) Close() {
	m.closeOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		close(m.done)
	})
}

// apply is the single mutation point for session state. It must not perform
// I/O or call back into the auth client; deferred work goes on the task
// queue instead.
func (m *SessionManager) apply(event string, session *domain.Session) {
	m.mu.Lock()

	m.metrics.IncrAuthEvent(event)

	prevUser := ""
	if m.session != nil {
		prevUser = m.session.User.ID
	}

	m.session = session
	if session != nil {
		m.state = domain.SessionStateAuthenticated
		if session.User.ID != prevUser {
			m.profile = nil
		}
	} else {
		m.state = domain.SessionStateAnonymous
		m.profile = nil
	}

	needProfile := session != nil && m.profile == nil
	userID := ""
	if session != nil {
		userID = session.User.ID
	}
	m.mu.Unlock()

	m.logger.Debug("auth state change",
		zap.String("event", event),
		zap.String("state", m.State()),
	)

	if needProfile {
		m.enqueue(func(ctx context.Context) {
			m.fetchProfile(ctx, userID)
		})
	}
}

func (m *SessionManager) enqueue(task func(ctx context.Context)) {
	select {
	case m.tasks <- task:
	default:
		// Queue full: run the task on its own goroutine rather than drop it.
		go task(context.Background())
	}
}

// drain runs deferred tasks until Close or context cancellation.
func (m *SessionManager) drain(ctx context.Context) {
	for {
		select {
		case task := <-m.tasks:
			task(ctx)
		case <-m.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// fetchProfile loads the profile row for a user and attaches it if that
// user still owns the session. A missing or failed profile leaves the
// session authenticated but without admin rights.
func (m *SessionManager) fetchProfile(ctx context.Context, userID string) {
	ctx, span := sessionTracer.Start(ctx, "SessionManager.fetchProfile")
	defer span.End()

	profile, err := m.profiles.GetProfile(ctx, userID)
	if err != nil {
		m.logger.Warn("failed to load profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.User.ID == userID {
		m.profile = profile
	}
}

// refreshLoop renews the access token shortly before expiry. A failed
// renewal signs the session out; admin access never runs on a stale token.
func (m *SessionManager) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.maybeRefresh(ctx)
		case <-m.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *SessionManager) maybeRefresh(ctx context.Context) {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	if session == nil || session.ExpiresAt.IsZero() {
		return
	}
	if time.Until(session.ExpiresAt) > refreshLead {
		return
	}

	if _, err := m.auth.RefreshSession(ctx, session.RefreshToken); err != nil {
		m.logger.Warn("token refresh failed, signing out", zap.Error(err))
		m.apply(domain.AuthEventSignedOut, nil)
	}
	// Success is applied through the TOKEN_REFRESHED event.
}

// ============================================================
// Operations
// ============================================================

// SignIn authenticates with email/password. Failures are reported in the
// result and as a notification, never as an error value: a wrong password
// is an outcome, not a fault.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) domain.AuthResult {
	ctx, span := sessionTracer.Start(ctx, "SessionManager.SignIn")
	defer span.End()

	if _, err := m.auth.SignIn(ctx, email, password); err != nil {
		m.notifier.Error("Sign In Failed", err.Error())
		return domain.AuthResult{Err: err.Error()}
	}

	m.notifier.Success("Welcome back!", "You have successfully signed in.")
	return domain.AuthResult{}
}

// SignUp registers a new account. The confirmation email links back to the
// storefront origin.
func (m *SessionManager) SignUp(ctx context.Context, email, password, fullName string) domain.AuthResult {
	ctx, span := sessionTracer.Start(ctx, "SessionManager.SignUp")
	defer span.End()

	if _, err := m.auth.SignUp(ctx, email, password, fullName, m.siteOrigin+"/"); err != nil {
		m.notifier.Error("Sign Up Failed", err.Error())
		return domain.AuthResult{Err: err.Error()}
	}

	m.notifier.Success("Account Created!", "Please check your email to verify your account.")
	return domain.AuthResult{}
}

// SignOut ends the current session. Signing out while anonymous succeeds.
func (m *SessionManager) SignOut(ctx context.Context) domain.AuthResult {
	ctx, span := sessionTracer.Start(ctx, "SessionManager.SignOut")
	defer span.End()

	m.mu.Lock()
	token := ""
	if m.session != nil {
		token = m.session.AccessToken
	}
	m.mu.Unlock()

	if err := m.auth.SignOut(ctx, token); err != nil {
		m.notifier.Error("Sign Out Failed", err.Error())
		return domain.AuthResult{Err: err.Error()}
	}

	m.notifier.Success("Signed Out", "You have been signed out successfully.")
	return domain.AuthResult{}
}

// ResetPassword requests a recovery email. The outcome does not reveal
// whether the address exists.
func (m *SessionManager) ResetPassword(ctx context.Context, email string) domain.AuthResult {
	ctx, span := sessionTracer.Start(ctx, "SessionManager.ResetPassword")
	defer span.End()

	// The recovery link lands back on the storefront's auth page.
	if err := m.auth.RequestPasswordReset(ctx, email, m.siteOrigin+"/auth"); err != nil {
		m.notifier.Error("Reset Failed", err.Error())
		return domain.AuthResult{Err: err.Error()}
	}

	m.notifier.Success("Password Reset Sent!", "Check your email for password reset instructions.")
	return domain.AuthResult{}
}

// ============================================================
// Read side
// ============================================================

// State returns the current machine state.
func (m *SessionManager) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a copy of the current session view.
func (m *SessionManager) Snapshot() domain.SessionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := domain.SessionSnapshot{State: m.state}
	if m.session != nil {
		u := m.session.User
		snap.User = &u
	}
	if m.profile != nil {
		p := *m.profile
		snap.Profile = &p
	}
	snap.IsAdmin = m.state == domain.SessionStateAuthenticated && m.profile.IsAdmin()
	return snap
}

// IsAdmin reports whether the current session holds the admin role. It is
// false while loading, anonymous, or whenever the profile is missing.
func (m *SessionManager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == domain.SessionStateAuthenticated && m.profile.IsAdmin()
}

// UserID returns the signed-in user id, or empty when anonymous.
func (m *SessionManager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.User.ID
}
