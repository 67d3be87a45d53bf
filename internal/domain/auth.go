package domain

import "time"

// ============================================================
// Auth — session types and API contract
// ============================================================

// User is the opaque identity issued by the hosted auth service. Its
// lifecycle (creation at sign-up, destruction at account deletion) is owned
// entirely by that service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a time-bounded proof of authentication for one User. Exactly
// one session is active per process.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is past its expiry.
func (s *Session) Expired() bool {
	return s != nil && !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Auth state change events, delivered as (event, session|nil) pairs.
const (
	AuthEventInitialSession = "INITIAL_SESSION"
	AuthEventSignedIn       = "SIGNED_IN"
	AuthEventSignedOut      = "SIGNED_OUT"
	AuthEventTokenRefreshed = "TOKEN_REFRESHED"
)

// AuthEvent is one entry on the auth change stream.
type AuthEvent struct {
	Event   string
	Session *Session
}

// Session manager states. The machine starts in Loading and runs for the
// lifetime of the process; there is no terminal state.
const (
	SessionStateLoading       = "loading"
	SessionStateAuthenticated = "authenticated"
	SessionStateAnonymous     = "anonymous"
)

// SessionSnapshot is the read-only view of the session manager handed to
// consumers. State is mutated only inside the manager's apply path.
type SessionSnapshot struct {
	State   string   `json:"state"`
	User    *User    `json:"user,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
	IsAdmin bool     `json:"is_admin"`
}

// AuthResult is the non-throwing outcome of a session operation. A zero
// value means success; Err carries a human-readable failure message.
type AuthResult struct {
	Err string `json:"error,omitempty"`
}

// OK reports whether the operation succeeded.
func (r AuthResult) OK() bool { return r.Err == "" }

// ============================================================
// Auth — HTTP request bodies
// ============================================================

// SignInRequest is the body for POST /v1/auth/signin.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest is the body for POST /v1/auth/signup.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// ResetPasswordRequest is the body for POST /v1/auth/password/reset.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}
