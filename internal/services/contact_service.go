package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/platform/textutil"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

var (
	// ErrContactInvalidInput indicates the contact form or a filter failed validation. Form failures
	// wrap a *ValidationError.
	ErrContactInvalidInput = errors.New("contact service: invalid input")
	// ErrContactNotFound indicates the message does not exist.
	ErrContactNotFound = errors.New("contact service: not found")
	// ErrContactConfirmationRequired indicates a delete was requested without confirmation.
	ErrContactConfirmationRequired = errors.New("contact service: confirmation required")
	// ErrContactUnavailable indicates the message store cannot be reached.
	ErrContactUnavailable = errors.New("contact service: unavailable")
)

var contactErrors = repoErrorMapping{
	notFound:    ErrContactNotFound,
	invalid:     ErrContactInvalidInput,
	unavailable: ErrContactUnavailable,
}

const maxContactCommentLength = 4000

// ContactServiceDeps wires the message store.
type ContactServiceDeps struct {
	Messages repositories.ContactRepository
	Logger   func(context.Context, string, map[string]any)
}

type contactService struct {
	messages repositories.ContactRepository
	logger   func(context.Context, string, map[string]any)
}

var _ ContactService = (*contactService)(nil)

// NewContactService constructs the contact service.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Messages == nil {
		return nil, errors.New("contact service: contact repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &contactService{messages: deps.Messages, logger: logger}, nil
}

func (s *contactService) Submit(ctx context.Context, cmd SubmitContactCommand) (ContactMessage, error) {
	msg := ContactMessage{
		Name:    textutil.SingleLine(cmd.Name, maxCustomerFieldLength),
		Email:   strings.TrimSpace(cmd.Email),
		Phone:   strings.TrimSpace(cmd.Phone),
		Comment: textutil.PlainText(cmd.Comment, maxContactCommentLength),
		Status:  domain.ContactStatusNew,
	}
	verr := &ValidationError{}
	if msg.Name == "" {
		verr.add("name", i18n.MsgNameRequired)
	}
	if msg.Email != "" && !emailPattern.MatchString(msg.Email) {
		verr.add("email", i18n.MsgEmailInvalid)
	}
	if msg.Phone != "" && !phonePattern.MatchString(msg.Phone) {
		verr.add("phone", i18n.MsgPhoneInvalid)
	}
	if msg.Comment == "" {
		verr.add("comment", i18n.MsgCommentRequired)
	}
	if !verr.empty() {
		return ContactMessage{}, fmt.Errorf("%w: %w", ErrContactInvalidInput, verr)
	}

	stored, err := s.messages.Insert(ctx, msg)
	if err != nil {
		return ContactMessage{}, contactErrors.translate(err)
	}
	s.logger(ctx, "contact.submitted", map[string]any{"messageId": stored.ID})
	return stored, nil
}

// ListMessages accepts "all", an empty string or a contact status.
func (s *contactService) ListMessages(ctx context.Context, status string) ([]ContactMessage, error) {
	filter := repositories.ContactListFilter{}
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != "all" {
		filter.Status = domain.ContactStatus(status)
		if !filter.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrContactInvalidInput, status)
		}
	}
	messages, err := s.messages.List(ctx, filter)
	if err != nil {
		return nil, contactErrors.translate(err)
	}
	if messages == nil {
		messages = []ContactMessage{}
	}
	return messages, nil
}

func (s *contactService) UpdateStatus(ctx context.Context, messageID string, status ContactStatus) (ContactStatus, error) {
	messageID = strings.TrimSpace(messageID)
	status = domain.ContactStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if messageID == "" {
		return "", fmt.Errorf("%w: message id is required", ErrContactInvalidInput)
	}
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrContactInvalidInput, status)
	}
	if err := s.messages.UpdateStatus(ctx, messageID, status); err != nil {
		return "", contactErrors.translate(err)
	}
	return status, nil
}

func (s *contactService) DeleteMessage(ctx context.Context, messageID string, confirm bool) error {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return fmt.Errorf("%w: message id is required", ErrContactInvalidInput)
	}
	if !confirm {
		return ErrContactConfirmationRequired
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return contactErrors.translate(err)
	}
	s.logger(ctx, "contact.deleted", map[string]any{"messageId": messageID})
	return nil
}
