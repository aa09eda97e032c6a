package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
)

func (h *AdminHandlers) listContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contacts == nil {
		writeServiceUnavailable(ctx, w, "contact")
		return
	}
	l := h.labels(r)
	messages, err := h.contacts.ListMessages(ctx, r.URL.Query().Get("status"))
	if err != nil {
		writeContactError(ctx, w, l, err)
		return
	}
	items := make([]contactPayload, 0, len(messages))
	for _, m := range messages {
		items = append(items, buildContactPayload(l, m))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items})
}

func (h *AdminHandlers) updateContactStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contacts == nil {
		writeServiceUnavailable(ctx, w, "contact")
		return
	}
	var req statusRequest
	if !decodeJSONBody(w, r, maxStatusBodySize, &req) {
		return
	}
	l := h.labels(r)
	status, err := h.contacts.UpdateStatus(ctx, chi.URLParam(r, "messageId"), domain.ContactStatus(req.Status))
	if err != nil {
		writeContactError(ctx, w, l, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"id":          chi.URLParam(r, "messageId"),
		"status":      string(status),
		"statusLabel": l.text(contactStatusLabels[status]),
	})
}

func (h *AdminHandlers) deleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contacts == nil {
		writeServiceUnavailable(ctx, w, "contact")
		return
	}
	if err := h.contacts.DeleteMessage(ctx, chi.URLParam(r, "messageId"), confirmed(r)); err != nil {
		writeContactError(ctx, w, h.labels(r), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
