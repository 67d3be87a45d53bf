package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/infra/observability"
)

// ============================================================
// Mocks
// ============================================================

type mockAuthAPI struct {
	mu            sync.Mutex
	subs          []func(domain.AuthEvent)
	signInFn      func(email, password string) (*domain.Session, error)
	signUpFn      func(email, password string) (*domain.Session, error)
	resetErr      error
	resetRedirect string
}

func (m *mockAuthAPI) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := m.signInFn(email, password)
	if err != nil {
		return nil, err
	}
	m.emit(domain.AuthEvent{Event: domain.AuthEventSignedIn, Session: session})
	return session, nil
}

func (m *mockAuthAPI) SignUp(ctx context.Context, email, password, fullName, redirectTo string) (*domain.Session, error) {
	if m.signUpFn == nil {
		return nil, nil
	}
	return m.signUpFn(email, password)
}

func (m *mockAuthAPI) SignOut(ctx context.Context, accessToken string) error {
	m.emit(domain.AuthEvent{Event: domain.AuthEventSignedOut, Session: nil})
	return nil
}

func (m *mockAuthAPI) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	m.resetRedirect = redirectTo
	return m.resetErr
}

func (m *mockAuthAPI) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return nil, &domain.ErrUnauthorized{Message: "refresh disabled in test"}
}

func (m *mockAuthAPI) Subscribe(fn func(event domain.AuthEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	return func() {}
}

func (m *mockAuthAPI) emit(ev domain.AuthEvent) {
	m.mu.Lock()
	subs := append([]func(domain.AuthEvent){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

type mockProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	calls    int
}

func (m *mockProfileStore) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	p, ok := m.profiles[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	return p, nil
}

type mockNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (m *mockNotifier) Publish(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
}

func (m *mockNotifier) Success(title, message string) {
	m.Publish(domain.Notification{Level: domain.NotifySuccess, Title: title, Message: message})
}

func (m *mockNotifier) Error(title, message string) {
	m.Publish(domain.Notification{Level: domain.NotifyError, Title: title, Message: message})
}

func (m *mockNotifier) last() (domain.Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.notifications) == 0 {
		return domain.Notification{}, false
	}
	return m.notifications[len(m.notifications)-1], true
}

func adminSession() *domain.Session {
	return &domain.Session{
		AccessToken:  "token-abc",
		RefreshToken: "refresh-abc",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         domain.User{ID: "user-1", Email: "admin@example.com"},
	}
}

func newTestSessionManager(auth *mockAuthAPI, profiles *mockProfileStore, notifier *mockNotifier) *SessionManager {
	return NewSessionManager(auth, profiles, notifier, observability.NewMetrics(), "http://localhost:8080", zap.NewNop())
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

// ============================================================
// Tests
// ============================================================

func TestSessionManager_StartsAnonymous(t *testing.T) {
	auth := &mockAuthAPI{}
	mgr := newTestSessionManager(auth, &mockProfileStore{}, &mockNotifier{})

	if got := mgr.State(); got != domain.SessionStateLoading {
		t.Fatalf("expected loading before Start, got %s", got)
	}

	mgr.Start(context.Background())
	defer mgr.Close()

	if got := mgr.State(); got != domain.SessionStateAnonymous {
		t.Errorf("expected anonymous after initial check, got %s", got)
	}
	if mgr.IsAdmin() {
		t.Error("anonymous session must not be admin")
	}
}

func TestSessionManager_SignInLoadsProfileDeferred(t *testing.T) {
	auth := &mockAuthAPI{
		signInFn: func(email, password string) (*domain.Session, error) {
			return adminSession(), nil
		},
	}
	profiles := &mockProfileStore{profiles: map[string]*domain.Profile{
		"user-1": {UserID: "user-1", Email: "admin@example.com", Role: domain.RoleAdmin},
	}}
	notifier := &mockNotifier{}
	mgr := newTestSessionManager(auth, profiles, notifier)
	mgr.Start(context.Background())
	defer mgr.Close()

	result := mgr.SignIn(context.Background(), "admin@example.com", "secret")
	if !result.OK() {
		t.Fatalf("expected sign-in success, got %q", result.Err)
	}

	if got := mgr.State(); got != domain.SessionStateAuthenticated {
		t.Fatalf("expected authenticated, got %s", got)
	}

	// The profile fetch runs on the task queue, not inside the event
	// callback; admin rights appear once it completes.
	waitFor(t, mgr.IsAdmin)

	n, ok := notifier.last()
	if !ok || n.Title != "Welcome back!" {
		t.Errorf("expected welcome notification, got %+v", n)
	}
}

func TestSessionManager_SignInFailureIsAResult(t *testing.T) {
	auth := &mockAuthAPI{
		signInFn: func(email, password string) (*domain.Session, error) {
			return nil, &domain.ErrUnauthorized{Message: "Invalid login credentials"}
		},
	}
	notifier := &mockNotifier{}
	mgr := newTestSessionManager(auth, &mockProfileStore{}, notifier)
	mgr.Start(context.Background())
	defer mgr.Close()

	result := mgr.SignIn(context.Background(), "admin@example.com", "wrong")
	if result.OK() {
		t.Fatal("expected sign-in failure result")
	}
	if got := mgr.State(); got != domain.SessionStateAnonymous {
		t.Errorf("failed sign-in must leave state anonymous, got %s", got)
	}

	n, _ := notifier.last()
	if n.Title != "Sign In Failed" {
		t.Errorf("expected failure notification, got %q", n.Title)
	}
}

func TestSessionManager_MissingProfileFailsClosed(t *testing.T) {
	auth := &mockAuthAPI{
		signInFn: func(email, password string) (*domain.Session, error) {
			return adminSession(), nil
		},
	}
	profiles := &mockProfileStore{profiles: map[string]*domain.Profile{}}
	mgr := newTestSessionManager(auth, profiles, &mockNotifier{})
	mgr.Start(context.Background())
	defer mgr.Close()

	mgr.SignIn(context.Background(), "admin@example.com", "secret")

	waitFor(t, func() bool {
		profiles.mu.Lock()
		defer profiles.mu.Unlock()
		return profiles.calls > 0
	})

	if mgr.IsAdmin() {
		t.Error("a session without a profile must never be admin")
	}
	if got := mgr.State(); got != domain.SessionStateAuthenticated {
		t.Errorf("missing profile does not end the session, got state %s", got)
	}
}

func TestSessionManager_SignOutClearsState(t *testing.T) {
	auth := &mockAuthAPI{
		signInFn: func(email, password string) (*domain.Session, error) {
			return adminSession(), nil
		},
	}
	profiles := &mockProfileStore{profiles: map[string]*domain.Profile{
		"user-1": {UserID: "user-1", Role: domain.RoleAdmin},
	}}
	mgr := newTestSessionManager(auth, profiles, &mockNotifier{})
	mgr.Start(context.Background())
	defer mgr.Close()

	mgr.SignIn(context.Background(), "admin@example.com", "secret")
	waitFor(t, mgr.IsAdmin)

	result := mgr.SignOut(context.Background())
	if !result.OK() {
		t.Fatalf("expected sign-out success, got %q", result.Err)
	}
	if got := mgr.State(); got != domain.SessionStateAnonymous {
		t.Errorf("expected anonymous after sign-out, got %s", got)
	}
	if mgr.IsAdmin() {
		t.Error("admin rights must drop on sign-out")
	}
	if mgr.UserID() != "" {
		t.Error("user id must clear on sign-out")
	}
}

func TestSessionManager_ResetPasswordRedirectsToAuthPage(t *testing.T) {
	auth := &mockAuthAPI{}
	notifier := &mockNotifier{}
	mgr := newTestSessionManager(auth, &mockProfileStore{}, notifier)
	mgr.Start(context.Background())
	defer mgr.Close()

	result := mgr.ResetPassword(context.Background(), "baker@example.com")
	if !result.OK() {
		t.Fatalf("expected reset success, got %q", result.Err)
	}
	// The recovery email must link back to the storefront's auth page.
	if got := auth.resetRedirect; got != "http://localhost:8080/auth" {
		t.Errorf("reset redirect = %q, want http://localhost:8080/auth", got)
	}

	n, _ := notifier.last()
	if n.Title != "Password Reset Sent!" {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestSessionManager_DualInitPathsConverge(t *testing.T) {
	auth := &mockAuthAPI{}
	mgr := newTestSessionManager(auth, &mockProfileStore{}, &mockNotifier{})
	mgr.Start(context.Background())
	defer mgr.Close()

	// An event arriving after the explicit initial check must win.
	session := adminSession()
	auth.emit(domain.AuthEvent{Event: domain.AuthEventSignedIn, Session: session})

	if got := mgr.State(); got != domain.SessionStateAuthenticated {
		t.Fatalf("expected authenticated after late event, got %s", got)
	}

	// Replaying the same event is idempotent.
	auth.emit(domain.AuthEvent{Event: domain.AuthEventSignedIn, Session: session})
	if got := mgr.State(); got != domain.SessionStateAuthenticated {
		t.Errorf("replayed event changed state to %s", got)
	}
}

func TestSessionManager_Snapshot(t *testing.T) {
	auth := &mockAuthAPI{
		signInFn: func(email, password string) (*domain.Session, error) {
			return adminSession(), nil
		},
	}
	profiles := &mockProfileStore{profiles: map[string]*domain.Profile{
		"user-1": {UserID: "user-1", Email: "admin@example.com", Role: domain.RoleAdmin},
	}}
	mgr := newTestSessionManager(auth, profiles, &mockNotifier{})
	mgr.Start(context.Background())
	defer mgr.Close()

	snap := mgr.Snapshot()
	if snap.State != domain.SessionStateAnonymous || snap.User != nil || snap.IsAdmin {
		t.Fatalf("unexpected anonymous snapshot: %+v", snap)
	}

	mgr.SignIn(context.Background(), "admin@example.com", "secret")
	waitFor(t, mgr.IsAdmin)

	snap = mgr.Snapshot()
	if snap.User == nil || snap.User.ID != "user-1" {
		t.Errorf("expected user in snapshot, got %+v", snap.User)
	}
	if snap.Profile == nil || !snap.IsAdmin {
		t.Errorf("expected admin profile in snapshot, got %+v", snap)
	}
}
