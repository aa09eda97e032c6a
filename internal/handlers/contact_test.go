package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/services"
)

func newContactRouter(t *testing.T, svc services.ContactService) chi.Router {
	t.Helper()
	localizer := newTestLocalizer(t)
	r := chi.NewRouter()
	r.Use(LocaleMiddleware(localizer))
	r.Route("/contact", NewContactHandlers(svc, localizer).Routes)
	return r
}

func TestContactSubmit(t *testing.T) {
	var got services.SubmitContactCommand
	svc := &stubContactService{submitFn: func(_ context.Context, cmd services.SubmitContactCommand) (services.ContactMessage, error) {
		got = cmd
		return services.ContactMessage{ID: "msg-1", Status: domain.ContactStatusNew}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"name":"Dana","email":"dana@example.com","comment":"Do you ship to Eilat?"}`))
	rr := serve(newContactRouter(t, svc), req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "Dana", got.Name)
	require.Equal(t, "Do you ship to Eilat?", got.Comment)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "msg-1", body["id"])
	require.Equal(t, "new", body["status"])
}

func TestContactSubmitValidationFallsBackToDefaultLanguage(t *testing.T) {
	svc := &stubContactService{submitFn: func(context.Context, services.SubmitContactCommand) (services.ContactMessage, error) {
		verr := &services.ValidationError{Fields: map[string]string{"comment": i18n.MsgCommentRequired}}
		return services.ContactMessage{}, fmt.Errorf("%w: %w", services.ErrContactInvalidInput, verr)
	}}

	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"name":"Dana"}`))
	req.Header.Set("Accept-Language", "fr-FR")
	rr := serve(newContactRouter(t, svc), req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "he", rr.Header().Get("Content-Language"))

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "נא לכתוב הודעה", body.Fields["comment"])
}

func TestContactSubmitRejectsEmptyBody(t *testing.T) {
	svc := &stubContactService{submitFn: func(context.Context, services.SubmitContactCommand) (services.ContactMessage, error) {
		t.Fatal("service must not be called")
		return services.ContactMessage{}, nil
	}}
	rr := serve(newContactRouter(t, svc), httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("  ")))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
