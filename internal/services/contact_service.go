package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/BradenHooton/shopflow/pkg/logger"
	"github.com/oklog/ulid/v2"
)

// ContactStore persists contact form messages
type ContactStore interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
}

type ContactService struct {
	store  ContactStore // nil without a datastore
	logger *slog.Logger
	now    func() time.Time
}

func NewContactService(store ContactStore, logger *slog.Logger) *ContactService {
	return &ContactService{store: store, logger: logger, now: time.Now}
}

// Submit records a contact message. Without a datastore the message is only logged.
func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*models.Contact, error) {
	contact := &models.Contact{
		Name:    strings.TrimSpace(name),
		Email:   models.NormalizeEmail(email),
		Message: strings.TrimSpace(message),
	}
	if contact.Name == "" || contact.Message == "" || !validEmail(contact.Email) {
		return nil, fmt.Errorf("%w: name, email and message are required", models.ErrBadRequest)
	}

	if s.store == nil {
		contact.ID = ulid.Make().String()
		contact.CreatedAt = s.now().UTC()
		s.logger.Info("contact message received",
			slog.String("id", contact.ID),
			slog.String("email", logger.SanitizedEmail(contact.Email)),
			slog.Int("message_length", len(contact.Message)))
		return contact, nil
	}

	created, err := s.store.Create(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}
	return created, nil
}
