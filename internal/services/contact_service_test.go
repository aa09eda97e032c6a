package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

type stubContactRepo struct {
	insertFn func(context.Context, domain.ContactMessage) (domain.ContactMessage, error)
	listFn   func(context.Context, repositories.ContactListFilter) ([]domain.ContactMessage, error)
	statusFn func(context.Context, string, domain.ContactStatus) error
	deleteFn func(context.Context, string) error
}

func (s *stubContactRepo) Insert(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
	if s.insertFn != nil {
		return s.insertFn(ctx, msg)
	}
	msg.ID = "m1"
	return msg, nil
}

func (s *stubContactRepo) List(ctx context.Context, filter repositories.ContactListFilter) ([]domain.ContactMessage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubContactRepo) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error {
	if s.statusFn != nil {
		return s.statusFn(ctx, id, status)
	}
	return nil
}

func (s *stubContactRepo) Delete(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func TestContactSubmitStoresSanitizedMessage(t *testing.T) {
	var stored domain.ContactMessage
	repo := &stubContactRepo{
		insertFn: func(_ context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
			stored = msg
			msg.ID = "m1"
			return msg, nil
		},
	}
	svc, err := NewContactService(ContactServiceDeps{Messages: repo})
	require.NoError(t, err)

	msg, err := svc.Submit(context.Background(), SubmitContactCommand{
		Name:    " Noa ",
		Email:   "noa@example.com",
		Comment: "<b>Do you have size 44?</b>",
	})
	require.NoError(t, err)
	require.Equal(t, "m1", msg.ID)
	require.Equal(t, "Noa", stored.Name)
	require.Equal(t, "Do you have size 44?", stored.Comment)
	require.Equal(t, domain.ContactStatusNew, stored.Status)
}

func TestContactSubmitValidation(t *testing.T) {
	calls := 0
	repo := &stubContactRepo{
		insertFn: func(_ context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
			calls++
			return msg, nil
		},
	}
	svc, err := NewContactService(ContactServiceDeps{Messages: repo})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitContactCommand{Email: "bad", Phone: "12"})
	require.ErrorIs(t, err, ErrContactInvalidInput)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, i18n.MsgNameRequired, verr.Fields["name"])
	require.Equal(t, i18n.MsgCommentRequired, verr.Fields["comment"])
	require.Equal(t, i18n.MsgEmailInvalid, verr.Fields["email"])
	require.Equal(t, i18n.MsgPhoneInvalid, verr.Fields["phone"])
	require.Zero(t, calls)
}

func TestContactListMessagesFilters(t *testing.T) {
	var got repositories.ContactListFilter
	repo := &stubContactRepo{
		listFn: func(_ context.Context, filter repositories.ContactListFilter) ([]domain.ContactMessage, error) {
			got = filter
			return nil, nil
		},
	}
	svc, err := NewContactService(ContactServiceDeps{Messages: repo})
	require.NoError(t, err)
	ctx := context.Background()

	messages, err := svc.ListMessages(ctx, "all")
	require.NoError(t, err)
	require.NotNil(t, messages)
	require.Empty(t, got.Status)

	_, err = svc.ListMessages(ctx, "In-Progress")
	require.NoError(t, err)
	require.Equal(t, domain.ContactStatusInProgress, got.Status)

	_, err = svc.ListMessages(ctx, "archived")
	require.ErrorIs(t, err, ErrContactInvalidInput)
}

func TestContactStatusAndDelete(t *testing.T) {
	repo := &stubContactRepo{}
	svc, err := NewContactService(ContactServiceDeps{Messages: repo})
	require.NoError(t, err)
	ctx := context.Background()

	status, err := svc.UpdateStatus(ctx, "m1", "resolved")
	require.NoError(t, err)
	require.Equal(t, domain.ContactStatusResolved, status)
	_, err = svc.UpdateStatus(ctx, "m1", "done")
	require.ErrorIs(t, err, ErrContactInvalidInput)

	require.ErrorIs(t, svc.DeleteMessage(ctx, "m1", false), ErrContactConfirmationRequired)

	repo.deleteFn = func(context.Context, string) error { return stubRepoError{notFound: true} }
	require.ErrorIs(t, svc.DeleteMessage(ctx, "m1", true), ErrContactNotFound)
}
