package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ramitaha13/KamelStore/internal/platform/httpx"
	"github.com/ramitaha13/KamelStore/internal/platform/requestctx"
	"github.com/ramitaha13/KamelStore/internal/platform/session"
	"github.com/ramitaha13/KamelStore/internal/services"
)

const (
	maxLoginBodySize = 2 * 1024
	adminLoginURL    = "/login"
)

// RequireAdmin rejects requests whose session has no signed-in admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, ok := session.FromContext(ctx)
		if !ok || sess.Admin() == nil {
			httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeUnauthenticated, "admin sign-in required", http.StatusUnauthorized).
				WithDetails(map[string]any{"login_url": adminLoginURL}))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.auth == nil {
		writeServiceUnavailable(ctx, w, "admin auth")
		return
	}
	sess, ok := session.FromContext(ctx)
	if !ok {
		writeSessionRequired(ctx, w)
		return
	}
	var req loginRequest
	if !decodeJSONBody(w, r, maxLoginBodySize, &req) {
		return
	}

	identity, err := h.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAdminInvalidCredentials):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "username or password is incorrect", http.StatusUnauthorized))
		case errors.Is(err, services.ErrAdminUnavailable):
			writeServiceUnavailable(ctx, w, "admin auth")
		default:
			httpx.WriteError(ctx, w, httpx.NewError("login_error", "failed to sign in", http.StatusInternalServerError))
		}
		return
	}

	sess.SignIn(identity.Username, h.clock())
	requestctx.WithActor(ctx, requestctx.Actor{Admin: identity.Username})
	writeJSONResponse(w, http.StatusOK, map[string]any{"username": identity.Username})
}

// logout ends the whole session, so the admin's browser starts over with a fresh storefront session.
func (h *AdminHandlers) logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		sess.SignOut()
		sess.Destroy()
	}
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) me(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	admin := sess.Admin()
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"username":   strings.TrimSpace(admin.Username),
		"signedInAt": formatTime(admin.SignedInAt),
	})
}
