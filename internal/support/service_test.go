package support

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/mailer"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentMail
	fail bool
}

func (f *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	if f.fail {
		return io.ErrClosedPipe
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestService(t *testing.T, mail *fakeMailer, adminEmail string) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:support_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.SupportTicket{}, &models.ChatMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	var sender mailer.Sender
	if mail != nil {
		sender = mail
	}
	svc, err := NewService(NewRepository(db), sender, adminEmail, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func employeeActor() types.Actor {
	return types.Actor{ID: uuid.New(), Name: "Mira Muster", Role: enums.RoleMitarbeiter}
}

func adminActor() types.Actor {
	return types.Actor{ID: uuid.New(), Name: "Ada Admin", Role: enums.RoleAdmin}
}

func TestCreateTicketOpensThreadAndNotifies(t *testing.T) {
	t.Parallel()

	mail := &fakeMailer{}
	svc, db := newTestService(t, mail, "admin@example.com")
	ctx := context.Background()
	actor := employeeActor()

	ticket, err := svc.CreateTicket(ctx, CreateTicketInput{
		Subject: "Scanner defekt",
		Message: "Der Handscanner in Lager A startet nicht mehr.",
		Actor:   actor,
		Email:   "mira@example.com",
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(ticket.TicketNumber) {
		t.Fatalf("expected 6-digit ticket number, got %q", ticket.TicketNumber)
	}
	if ticket.Status != enums.TicketStatusOpen || ticket.Language != enums.ChatLanguageGerman {
		t.Fatalf("unexpected ticket defaults: %+v", ticket)
	}

	var messages []models.ChatMessage
	if err := db.Where("ticket_id = ?", ticket.ID).Find(&messages).Error; err != nil {
		t.Fatalf("load messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Sender != enums.ChatSenderUser {
		t.Fatalf("expected one user message, got %+v", messages)
	}

	if len(mail.sent) != 1 {
		t.Fatalf("expected one escalation mail, got %d", len(mail.sent))
	}
	if mail.sent[0].to[0] != "admin@example.com" || !strings.Contains(mail.sent[0].subject, ticket.TicketNumber) {
		t.Fatalf("unexpected mail: %+v", mail.sent[0])
	}
}

func TestCreateTicketSurvivesMailFailure(t *testing.T) {
	t.Parallel()

	mail := &fakeMailer{fail: true}
	svc, _ := newTestService(t, mail, "admin@example.com")

	ticket, err := svc.CreateTicket(context.Background(), CreateTicketInput{
		Subject: "Etiketten fehlen",
		Message: "Keine Etikettenrollen mehr im Lager B.",
		Actor:   employeeActor(),
	})
	if err != nil {
		t.Fatalf("ticket creation must not fail on mail errors: %v", err)
	}
	if ticket.TicketNumber == "" {
		t.Fatal("expected persisted ticket")
	}
}

func TestTicketVisibilityScopedByOwner(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, "")
	ctx := context.Background()
	owner := employeeActor()
	other := employeeActor()

	ticket, err := svc.CreateTicket(ctx, CreateTicketInput{
		Subject: "Frage zur Inventur",
		Message: "Wann ist die nächste Inventur geplant?",
		Actor:   owner,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	own, err := svc.ListTickets(ctx, owner)
	if err != nil || len(own) != 1 {
		t.Fatalf("owner must see the ticket: %v (%d)", err, len(own))
	}
	foreign, err := svc.ListTickets(ctx, other)
	if err != nil || len(foreign) != 0 {
		t.Fatalf("other users must not see the ticket: %v (%d)", err, len(foreign))
	}
	all, err := svc.ListTickets(ctx, adminActor())
	if err != nil || len(all) != 1 {
		t.Fatalf("admin must see every ticket: %v (%d)", err, len(all))
	}

	_, err = svc.ListMessages(ctx, ticket.ID, other)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden message access, got %v", err)
	}
}

func TestPostMessageSenderRoles(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, "")
	ctx := context.Background()
	owner := employeeActor()

	ticket, err := svc.CreateTicket(ctx, CreateTicketInput{
		Subject: "Lampe kaputt",
		Message: "Die Hallenbeleuchtung in Gang 4 flackert.",
		Actor:   owner,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	reply, err := svc.PostMessage(ctx, PostMessageInput{
		TicketID: ticket.ID,
		Body:     "Wir schicken morgen einen Elektriker.",
		Actor:    adminActor(),
	})
	if err != nil {
		t.Fatalf("admin reply: %v", err)
	}
	if reply.Sender != enums.ChatSenderAdmin {
		t.Fatalf("expected admin sender, got %s", reply.Sender)
	}

	followUp, err := svc.PostMessage(ctx, PostMessageInput{
		TicketID: ticket.ID,
		Body:     "Danke, Gang 4 bleibt bis dahin gesperrt.",
		Actor:    owner,
	})
	if err != nil {
		t.Fatalf("owner reply: %v", err)
	}
	if followUp.Sender != enums.ChatSenderUser {
		t.Fatalf("expected user sender, got %s", followUp.Sender)
	}

	messages, err := svc.ListMessages(ctx, ticket.ID, owner)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
}

func TestClosedTicketRejectsMessages(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, "")
	ctx := context.Background()
	owner := employeeActor()
	admin := adminActor()

	ticket, err := svc.CreateTicket(ctx, CreateTicketInput{
		Subject: "Erledigt",
		Message: "Bitte schließen.",
		Actor:   owner,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, ticket.ID, enums.TicketStatusClosed, owner); pkgerrors.As(err) == nil {
		t.Fatal("employees must not change ticket status")
	}
	closed, err := svc.UpdateStatus(ctx, ticket.ID, enums.TicketStatusClosed, admin)
	if err != nil {
		t.Fatalf("close ticket: %v", err)
	}
	if closed.Status != enums.TicketStatusClosed {
		t.Fatalf("expected closed, got %s", closed.Status)
	}

	_, err = svc.PostMessage(ctx, PostMessageInput{
		TicketID: ticket.ID,
		Body:     "Noch eine Frage...",
		Actor:    owner,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on closed ticket, got %v", err)
	}
}
