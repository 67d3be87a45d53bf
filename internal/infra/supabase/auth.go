package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
)

// Auth wraps the hosted GoTrue authentication API and fans auth state
// changes out to local subscribers, mirroring the backend's own client
// behavior: every successful auth operation emits an event on the stream.
type Auth struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger

	mu      sync.Mutex
	subs    map[int]func(domain.AuthEvent)
	nextSub int
}

// NewAuth creates a GoTrue client.
func NewAuth(httpClient *http.Client, baseURL, apiKey string, logger *zap.Logger) *Auth {
	return &Auth{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
		subs:       make(map[int]func(domain.AuthEvent)),
	}
}

// Subscribe registers a listener for auth state changes. The returned
// function removes the listener. Listeners are invoked synchronously in
// subscription order; they must not call back into Auth.
func (a *Auth) Subscribe(fn func(event domain.AuthEvent)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

func (a *Auth) emit(event string, session *domain.Session) {
	a.mu.Lock()
	fns := make([]func(domain.AuthEvent), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(domain.AuthEvent{Event: event, Session: session})
	}
}

// tokenResponse is the GoTrue token/signup payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// authError is the GoTrue error payload. Older and newer deployments use
// different field names, so all are captured.
type authError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Code             any    `json:"error_code"`
}

func (e authError) message() string {
	if e.ErrorDescription != "" {
		return e.ErrorDescription
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Error
}

// SignIn exchanges email/password credentials for a session and emits
// SIGNED_IN on success.
func (a *Auth) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := a.doAuth(ctx, http.MethodPost, "token?grant_type=password", body)
	if err != nil {
		return nil, err
	}

	session := a.toSession(resp)
	a.emit(domain.AuthEventSignedIn, session)
	return session, nil
}

// SignUp registers a new user. The redirect URL and display name travel in
// the GoTrue options, matching the storefront's sign-up flow. When email
// confirmation is disabled the response already carries a session, in which
// case SIGNED_IN is emitted.
func (a *Auth) SignUp(ctx context.Context, email, password, fullName, redirectTo string) (*domain.Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": fullName},
	}
	path := "signup"
	if redirectTo != "" {
		path = "signup?redirect_to=" + url.QueryEscape(redirectTo)
	}

	resp, err := a.doAuth(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	if resp.AccessToken == "" {
		// Confirmation email pending; no session yet.
		return nil, nil
	}

	session := a.toSession(resp)
	a.emit(domain.AuthEventSignedIn, session)
	return session, nil
}

// SignOut revokes the session server-side and emits SIGNED_OUT. Revocation
// failures are logged but still clear local state: a stale remote token is
// preferable to a session the user cannot leave.
func (a *Auth) SignOut(ctx context.Context, accessToken string) error {
	endpoint := fmt.Sprintf("%s/auth/v1/logout", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", a.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("auth: logout request failed", zap.Error(err))
	} else {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	a.emit(domain.AuthEventSignedOut, nil)
	return nil
}

// RequestPasswordReset asks GoTrue to send a recovery email. The response
// never reveals whether the address exists.
func (a *Auth) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email}
	path := "recover"
	if redirectTo != "" {
		path = "recover?redirect_to=" + url.QueryEscape(redirectTo)
	}

	_, err := a.doAuth(ctx, http.MethodPost, path, body)
	return err
}

// RefreshSession exchanges a refresh token for a new session and emits
// TOKEN_REFRESHED.
func (a *Auth) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	body := map[string]string{"refresh_token": refreshToken}

	resp, err := a.doAuth(ctx, http.MethodPost, "token?grant_type=refresh_token", body)
	if err != nil {
		return nil, err
	}

	session := a.toSession(resp)
	a.emit(domain.AuthEventTokenRefreshed, session)
	return session, nil
}

// doAuth executes a GoTrue request and maps error payloads to domain errors.
func (a *Auth) doAuth(ctx context.Context, method, path string, body any) (*tokenResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/auth/v1/%s", a.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("auth: request failed", zap.String("path", path), zap.Error(err))
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae authError
		_ = json.Unmarshal(respBody, &ae)
		msg := ae.message()

		a.logger.Warn("auth: non-2xx response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)

		switch {
		case resp.StatusCode == http.StatusUnauthorized,
			resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "invalid login"):
			return nil, &domain.ErrUnauthorized{Message: msg}
		case resp.StatusCode == http.StatusUnprocessableEntity,
			strings.Contains(strings.ToLower(msg), "already registered"):
			return nil, &domain.ErrConflict{Message: msg}
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &domain.ErrValidation{Field: "email", Message: msg}
		default:
			return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: fmt.Errorf("status %d: %s", resp.StatusCode, msg)}
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &tr, nil
}

// toSession converts a token response into a domain session. Expiry comes
// from the access token's exp claim when present, falling back to the
// relative expires_in field.
func (a *Auth) toSession(tr *tokenResponse) *domain.Session {
	expiresAt := tokenExpiry(tr.AccessToken)
	if expiresAt.IsZero() && tr.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return &domain.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    expiresAt,
		User: domain.User{
			ID:    tr.User.ID,
			Email: tr.User.Email,
		},
	}
}

// tokenExpiry decodes the exp claim from an access token without verifying
// the signature. The token is trusted because it came straight from GoTrue
// over TLS; only the expiry is needed locally.
func tokenExpiry(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
