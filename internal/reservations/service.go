package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astrein-exzellent/lagerhub-backend/internal/inventory"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/pagination"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

// HistoryRetention is how long fulfilled/cancelled records are kept.
const HistoryRetention = 7 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ReserveInput carries a new reservation request.
type ReserveInput struct {
	ItemID  string
	Qty     int64
	ForDate time.Time
	ForWhom *string
	Actor   types.Actor
}

// HistoryListInput pages through resolved reservations.
type HistoryListInput struct {
	Limit  int
	Cursor string
}

// HistoryListResult carries one page of history plus the next cursor.
type HistoryListResult struct {
	Records    []models.ReservationHistory
	NextCursor string
}

// Service implements the reservation lifecycle: reserve holds availability,
// fulfill and cancel release it. Every transition pairs the item ledger
// write with the reservation row change in one transaction.
type Service interface {
	Reserve(ctx context.Context, in ReserveInput) (*models.Reservation, error)
	Fulfill(ctx context.Context, reservationID uuid.UUID, actor types.Actor) (*models.ReservationHistory, error)
	Cancel(ctx context.Context, reservationID uuid.UUID, actor types.Actor) (*models.ReservationHistory, error)
	ListForActor(ctx context.Context, actor types.Actor) ([]models.Reservation, error)
	ListHistory(ctx context.Context, in HistoryListInput, actor types.Actor) (*HistoryListResult, error)
}

type service struct {
	tx      txRunner
	items   inventory.ItemRepository
	repo    Repository
	history HistoryRepository
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the reservation engine with its repositories.
func NewService(tx txRunner, items inventory.ItemRepository, repo Repository, history HistoryRepository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if items == nil {
		return nil, fmt.Errorf("item repository is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("reservation repository is required")
	}
	if history == nil {
		return nil, fmt.Errorf("history repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		tx:      tx,
		items:   items,
		repo:    repo,
		history: history,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Reserve creates an active reservation and raises the item's reserved
// quantity in one transaction. Availability is computed from the row read
// under lock, never from a cached copy.
func (s *service) Reserve(ctx context.Context, in ReserveInput) (*models.Reservation, error) {
	if in.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if in.ForDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation date is required")
	}
	if in.Actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "requesting user is required")
	}

	reservation := &models.Reservation{
		ID:         uuid.New(),
		ItemID:     in.ItemID,
		Qty:        in.Qty,
		ForDate:    in.ForDate,
		ForWhom:    in.ForWhom,
		Status:     enums.ReservationStatusActive,
		ReservedBy: in.Actor.ID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemsTx := s.items.WithTx(tx)
		item, err := itemsTx.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return mapItemErr(err)
		}

		available := item.Available()
		if in.Qty > available {
			return pkgerrors.New(pkgerrors.CodeInsufficientAvailability, "requested quantity exceeds availability").
				WithDetails(map[string]any{
					"available": available,
					"requested": in.Qty,
				})
		}

		item.ReservedQty += in.Qty
		if err := itemsTx.UpdateLedger(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "raise reserved quantity")
		}
		if err := s.repo.WithTx(tx).Create(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithItemID(ctx, in.ItemID), "reservation created")
	return reservation, nil
}

// Fulfill resolves an active reservation into a fulfilled history record
// and releases its hold on the item.
func (s *service) Fulfill(ctx context.Context, reservationID uuid.UUID, actor types.Actor) (*models.ReservationHistory, error) {
	return s.resolve(ctx, reservationID, actor, enums.ReservationStatusFulfilled)
}

// Cancel releases an active reservation without marking it fulfilled. The
// hold on reserved quantity is removed with the same atomicity as Fulfill.
func (s *service) Cancel(ctx context.Context, reservationID uuid.UUID, actor types.Actor) (*models.ReservationHistory, error) {
	return s.resolve(ctx, reservationID, actor, enums.ReservationStatusCancelled)
}

func (s *service) resolve(ctx context.Context, reservationID uuid.UUID, actor types.Actor, status enums.ReservationStatus) (*models.ReservationHistory, error) {
	if reservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id is required")
	}

	// Ownership is checked before the transaction; the role comes from the
	// authenticated session, not the request.
	reservation, err := s.repo.Get(ctx, reservationID)
	if err != nil {
		return nil, mapReservationErr(err)
	}
	if !actor.IsAdmin() && reservation.ReservedBy != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "reservation belongs to another user")
	}

	var record *models.ReservationHistory
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		// Re-read inside the transaction so a concurrent resolve of the
		// same reservation fails here instead of double-decrementing.
		current, err := repoTx.Get(ctx, reservationID)
		if err != nil {
			return mapReservationErr(err)
		}

		itemsTx := s.items.WithTx(tx)
		item, err := itemsTx.GetForUpdate(ctx, current.ItemID)
		if err != nil {
			return mapItemErr(err)
		}

		if current.Qty > item.ReservedQty {
			// A hold larger than the ledger means the ledger was edited
			// out-of-band. Surface it rather than clamping it away.
			return pkgerrors.New(pkgerrors.CodeReservationStateConflict, "reservation exceeds the item's reserved quantity").
				WithDetails(map[string]any{
					"reservation_qty": current.Qty,
					"reserved_qty":    item.ReservedQty,
				})
		}

		item.ReservedQty -= current.Qty
		if err := itemsTx.UpdateLedger(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release reserved quantity")
		}

		now := s.now().UTC()
		record = &models.ReservationHistory{
			ID:            uuid.New(),
			ReservationID: current.ID,
			ItemID:        current.ItemID,
			Qty:           current.Qty,
			ForDate:       current.ForDate,
			ForWhom:       current.ForWhom,
			Status:        status,
			ReservedBy:    current.ReservedBy,
			ReservedAt:    current.CreatedAt,
			ResolvedAt:    now,
			ExpiresAt:     now.Add(HistoryRetention),
		}
		if err := s.history.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write reservation history")
		}
		if err := repoTx.Delete(ctx, current.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove active reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "reservation_id", reservationID.String()), "reservation resolved")
	return record, nil
}

func (s *service) ListForActor(ctx context.Context, actor types.Actor) ([]models.Reservation, error) {
	if actor.IsAdmin() {
		rows, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
		}
		return rows, nil
	}
	rows, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return rows, nil
}

func (s *service) ListHistory(ctx context.Context, in HistoryListInput, actor types.Actor) (*HistoryListResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can view reservation history")
	}
	cursor, err := pagination.ParseCursor(in.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(in.Limit)
	rows, err := s.history.List(ctx, pagination.LimitWithBuffer(in.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservation history")
	}

	result := &HistoryListResult{Records: rows}
	if len(rows) > limit {
		result.Records = rows[:limit]
		last := result.Records[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.ResolvedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func mapItemErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeItemNotFound, "item not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
}

func mapReservationErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
}
