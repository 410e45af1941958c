package support

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/mailer"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

const ticketNumberAttempts = 5

// CreateTicketInput opens a new support conversation.
type CreateTicketInput struct {
	Subject  string
	Message  string
	Language enums.ChatLanguage
	Actor    types.Actor
	// Email feeds the escalation notification so the admin can reply
	// outside the dashboard.
	Email string
}

// PostMessageInput appends a chat message to an existing ticket.
type PostMessageInput struct {
	TicketID uuid.UUID
	Body     string
	Actor    types.Actor
}

// Service manages support tickets and their chat threads.
type Service interface {
	CreateTicket(ctx context.Context, in CreateTicketInput) (*models.SupportTicket, error)
	ListTickets(ctx context.Context, actor types.Actor) ([]models.SupportTicket, error)
	ListMessages(ctx context.Context, ticketID uuid.UUID, actor types.Actor) ([]models.ChatMessage, error)
	PostMessage(ctx context.Context, in PostMessageInput) (*models.ChatMessage, error)
	UpdateStatus(ctx context.Context, ticketID uuid.UUID, status enums.TicketStatus, actor types.Actor) (*models.SupportTicket, error)
}

type service struct {
	repo       Repository
	mail       mailer.Sender
	adminEmail string
	logg       *logger.Logger
}

// NewService wires the support service. The mailer may be nil, in which
// case ticket escalation emails are skipped.
func NewService(repo Repository, mail mailer.Sender, adminEmail string, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("support repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:       repo,
		mail:       mail,
		adminEmail: strings.TrimSpace(adminEmail),
		logg:       logg,
	}, nil
}

func (s *service) CreateTicket(ctx context.Context, in CreateTicketInput) (*models.SupportTicket, error) {
	if in.Actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "requesting user is required")
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}
	body := strings.TrimSpace(in.Message)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	language := in.Language
	if language == "" {
		language = enums.ChatLanguageGerman
	}
	if !language.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid language")
	}

	number, err := s.uniqueTicketNumber(ctx)
	if err != nil {
		return nil, err
	}

	ticket := &models.SupportTicket{
		ID:           uuid.New(),
		TicketNumber: number,
		UserID:       in.Actor.ID,
		UserName:     in.Actor.Name,
		UserEmail:    strings.TrimSpace(in.Email),
		Subject:      subject,
		Status:       enums.TicketStatusOpen,
		Language:     language,
	}
	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ticket")
	}
	message := &models.ChatMessage{
		ID:       uuid.New(),
		TicketID: ticket.ID,
		Sender:   enums.ChatSenderUser,
		Body:     body,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create first message")
	}

	s.notifyAdmin(ctx, ticket, body)

	return ticket, nil
}

func (s *service) ListTickets(ctx context.Context, actor types.Actor) ([]models.SupportTicket, error) {
	if actor.IsAdmin() {
		rows, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tickets")
		}
		return rows, nil
	}
	rows, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tickets")
	}
	return rows, nil
}

func (s *service) ListMessages(ctx context.Context, ticketID uuid.UUID, actor types.Actor) ([]models.ChatMessage, error) {
	if _, err := s.loadOwned(ctx, ticketID, actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMessages(ctx, ticketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return rows, nil
}

func (s *service) PostMessage(ctx context.Context, in PostMessageInput) (*models.ChatMessage, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	ticket, err := s.loadOwned(ctx, in.TicketID, in.Actor)
	if err != nil {
		return nil, err
	}
	if ticket.Status == enums.TicketStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "ticket is closed")
	}

	sender := enums.ChatSenderUser
	if in.Actor.IsAdmin() && ticket.UserID != in.Actor.ID {
		sender = enums.ChatSenderAdmin
	}
	message := &models.ChatMessage{
		ID:       uuid.New(),
		TicketID: ticket.ID,
		Sender:   sender,
		Body:     body,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	return message, nil
}

func (s *service) UpdateStatus(ctx context.Context, ticketID uuid.UUID, status enums.TicketStatus, actor types.Actor) (*models.SupportTicket, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can change ticket status")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ticket status")
	}

	if err := s.repo.UpdateStatus(ctx, ticketID, string(status)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ticket status")
	}
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload ticket")
	}
	return ticket, nil
}

func (s *service) loadOwned(ctx context.Context, ticketID uuid.UUID, actor types.Actor) (*models.SupportTicket, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
	}
	if !actor.IsAdmin() && ticket.UserID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "ticket belongs to another user")
	}
	return ticket, nil
}

// notifyAdmin is best-effort: a down SMTP relay must not fail ticket creation.
func (s *service) notifyAdmin(ctx context.Context, ticket *models.SupportTicket, body string) {
	if s.mail == nil || s.adminEmail == "" {
		return
	}
	subject := fmt.Sprintf("[Support %s] %s", ticket.TicketNumber, ticket.Subject)
	mailBody := fmt.Sprintf(
		"Neues Support-Ticket %s von %s (%s)\n\nBetreff: %s\n\n%s\n",
		ticket.TicketNumber, ticket.UserName, ticket.UserEmail, ticket.Subject, body,
	)
	if err := s.mail.Send(ctx, []string{s.adminEmail}, subject, mailBody); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "ticket_number", ticket.TicketNumber), "support escalation email failed")
	}
}

func (s *service) uniqueTicketNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < ticketNumberAttempts; attempt++ {
		number, err := randomTicketNumber()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate ticket number")
		}
		exists, err := s.repo.TicketNumberExists(ctx, number)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check ticket number")
		}
		if !exists {
			return number, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a ticket number")
}

func randomTicketNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
