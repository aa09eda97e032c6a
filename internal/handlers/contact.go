package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramitaha13/KamelStore/internal/platform/httpx"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/services"
)

// ContactHandlers accepts public contact form submissions.
type ContactHandlers struct {
	contacts  services.ContactService
	localizer *i18n.Localizer
}

const maxContactBodySize = 16 * 1024

// NewContactHandlers constructs contact handlers.
func NewContactHandlers(contacts services.ContactService, localizer *i18n.Localizer) *ContactHandlers {
	return &ContactHandlers{contacts: contacts, localizer: localizer}
}

// Routes wires POST /contact onto the provided router.
func (h *ContactHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.submit)
}

type submitContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Comment string `json:"comment"`
}

func (h *ContactHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contacts == nil {
		writeServiceUnavailable(ctx, w, "contact")
		return
	}
	var req submitContactRequest
	if !decodeJSONBody(w, r, maxContactBodySize, &req) {
		return
	}
	l := labeler{localizer: h.localizer, tag: requestLanguage(r, h.localizer)}
	msg, err := h.contacts.Submit(ctx, services.SubmitContactCommand{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Comment: req.Comment,
	})
	if err != nil {
		writeContactError(ctx, w, l, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"id": msg.ID, "status": string(msg.Status)})
}

func writeContactError(ctx context.Context, w http.ResponseWriter, l labeler, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(ctx, w, httpx.NewError("validation_failed", "contact form is invalid", http.StatusBadRequest).
			WithDetails(map[string]any{"fields": localizeFields(l, verr.Fields)}))
	case errors.Is(err, services.ErrContactInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrContactNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("message_not_found", "contact message not found", http.StatusNotFound))
	case errors.Is(err, services.ErrContactConfirmationRequired):
		writeConfirmationRequired(ctx, w, "contact message")
	case errors.Is(err, services.ErrContactUnavailable):
		writeServiceUnavailable(ctx, w, "contact")
	default:
		httpx.WriteError(ctx, w, httpx.NewError("contact_error", "failed to process contact message", http.StatusInternalServerError))
	}
}

func writeConfirmationRequired(ctx context.Context, w http.ResponseWriter, subject string) {
	httpx.WriteError(ctx, w, httpx.NewError("confirmation_required", "deleting a "+subject+" requires confirm=true", http.StatusPreconditionRequired))
}
