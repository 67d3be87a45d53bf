package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Authentication — /v1/auth/*
//
// Auth operations never return HTTP errors for bad credentials: the outcome
// travels in the AuthResult body, mirroring how the storefront consumes it.
// ============================================================

func signInHandler(session *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/signin")
		defer span.End()

		var req domain.SignInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		result := session.SignIn(ctx, req.Email, req.Password)
		writeJSON(w, http.StatusOK, result)
	}
}

func signUpHandler(session *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/signup")
		defer span.End()

		var req domain.SignUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		result := session.SignUp(ctx, req.Email, req.Password, req.FullName)
		writeJSON(w, http.StatusOK, result)
	}
}

func signOutHandler(session *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/signout")
		defer span.End()

		result := session.SignOut(ctx)
		writeJSON(w, http.StatusOK, result)
	}
}

func resetPasswordHandler(session *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/password/reset")
		defer span.End()

		var req domain.ResetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}

		result := session.ResetPassword(ctx, req.Email)
		writeJSON(w, http.StatusOK, result)
	}
}

func sessionHandler(session *service.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, session.Snapshot())
	}
}
