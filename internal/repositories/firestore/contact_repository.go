package firestore

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	pfirestore "github.com/ramitaha13/KamelStore/internal/platform/firestore"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

const contactCollection = "contactUs"

type contactDocument struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Phone     string    `firestore:"phone"`
	Comment   string    `firestore:"comment"`
	Timestamp time.Time `firestore:"timestamp,serverTimestamp"`
	Status    string    `firestore:"status"`
}

// ContactRepository persists contact form submissions.
type ContactRepository struct {
	base  *pfirestore.BaseRepository[domain.ContactMessage]
	newID func() string
}

var _ repositories.ContactRepository = (*ContactRepository)(nil)

// NewContactRepository constructs a Firestore-backed contact repository.
func NewContactRepository(provider *pfirestore.Provider) (*ContactRepository, error) {
	if provider == nil {
		return nil, errors.New("contact repository: firestore provider is required")
	}
	encoder := func(_ context.Context, msg domain.ContactMessage) (any, error) {
		return contactDocument{
			Name:    msg.Name,
			Email:   msg.Email,
			Phone:   msg.Phone,
			Comment: msg.Comment,
			Status:  string(msg.Status),
		}, nil
	}
	decoder := func(_ context.Context, snap *firestore.DocumentSnapshot) (domain.ContactMessage, error) {
		f := fields(snap.Data())
		msg := domain.ContactMessage{
			ID:        snap.Ref.ID,
			Name:      f.str("name"),
			Email:     f.str("email"),
			Phone:     f.str("phone"),
			Comment:   f.str("comment"),
			Timestamp: f.time("timestamp"),
			Status:    domain.ContactStatus(f.str("status")),
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = snap.CreateTime.UTC()
		}
		if !msg.Status.Valid() {
			msg.Status = domain.ContactStatusNew
		}
		return msg, nil
	}
	return &ContactRepository{
		base:  pfirestore.NewBaseRepository[domain.ContactMessage](provider, contactCollection, encoder, decoder),
		newID: func() string { return ulid.MustNew(ulid.Now(), rand.Reader).String() },
	}, nil
}

// Insert stores a new message with a server timestamp.
func (r *ContactRepository) Insert(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
	msg.ID = r.newID()
	result, err := r.base.Create(ctx, msg.ID, msg)
	if err != nil {
		return domain.ContactMessage{}, err
	}
	msg.Timestamp = result.UpdateTime.UTC()
	return msg, nil
}

// List returns messages newest first. The status filter runs in memory so no composite index is needed.
func (r *ContactRepository) List(ctx context.Context, filter repositories.ContactListFilter) ([]domain.ContactMessage, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("timestamp", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.ContactMessage, 0, len(docs))
	for _, doc := range docs {
		if filter.Status != "" && doc.Data.Status != filter.Status {
			continue
		}
		out = append(out, doc.Data)
	}
	return out, nil
}

// UpdateStatus changes the message status.
func (r *ContactRepository) UpdateStatus(ctx context.Context, messageID string, status domain.ContactStatus) error {
	_, err := r.base.Update(ctx, strings.TrimSpace(messageID), []firestore.Update{{Path: "status", Value: string(status)}})
	return err
}

// Delete removes the message.
func (r *ContactRepository) Delete(ctx context.Context, messageID string) error {
	return r.base.Delete(ctx, strings.TrimSpace(messageID), firestore.Exists)
}
