package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astrein-exzellent/lagerhub-backend/internal/movements"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/logger"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/pagination"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/types"
)

// txRunner abstracts the transactional boundary provided by db.Client.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// activeReservationCounter reports how many active reservations reference an
// item. Used to protect item deletion.
type activeReservationCounter interface {
	CountActiveByItem(ctx context.Context, itemID string) (int64, error)
}

// CreateItemInput carries the fields for a new stock ledger entry. The
// caller-chosen ID is the public item number (e.g. G-LA-0001).
type CreateItemInput struct {
	ID           string
	Name         string
	ItemType     enums.ItemType
	Category     string
	Warehouse    string
	Condition    string
	InitialStock int64
}

// UpdateItemInput mutates descriptive fields only. Stock changes go through
// IncrementStock/DecrementStock so the ledger invariant cannot be bypassed.
type UpdateItemInput struct {
	Name      *string
	ItemType  *enums.ItemType
	Category  *string
	Warehouse *string
	Condition *string
}

// AdjustStockInput drives the admin receipt/issue operations.
type AdjustStockInput struct {
	ItemID string
	Qty    int64
	Actor  types.Actor
}

// ListInput combines filters with cursor pagination.
type ListInput struct {
	Filter ListFilter
	Limit  int
	Cursor string
}

// ListResult carries one page of items plus the next cursor.
type ListResult struct {
	Items      []models.Item
	NextCursor string
}

// Service owns every write to an item's stock and reserved quantity that is
// not part of the reservation lifecycle.
type Service interface {
	Create(ctx context.Context, in CreateItemInput, actor types.Actor) (*models.Item, error)
	Update(ctx context.Context, itemID string, in UpdateItemInput, actor types.Actor) (*models.Item, error)
	Delete(ctx context.Context, itemID string, actor types.Actor) error
	Get(ctx context.Context, itemID string) (*models.Item, error)
	List(ctx context.Context, in ListInput) (*ListResult, error)
	IncrementStock(ctx context.Context, in AdjustStockInput) (*models.Item, error)
	DecrementStock(ctx context.Context, in AdjustStockInput) (*models.Item, error)
}

type service struct {
	tx           txRunner
	items        ItemRepository
	movements    movements.Repository
	reservations activeReservationCounter
	logg         *logger.Logger
}

// NewService wires the stock engine with its repositories.
func NewService(tx txRunner, items ItemRepository, movementRepo movements.Repository, reservations activeReservationCounter, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if items == nil {
		return nil, fmt.Errorf("item repository is required")
	}
	if movementRepo == nil {
		return nil, fmt.Errorf("movement repository is required")
	}
	if reservations == nil {
		return nil, fmt.Errorf("reservation counter is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		tx:           tx,
		items:        items,
		movements:    movementRepo,
		reservations: reservations,
		logg:         logg,
	}, nil
}

func (s *service) Create(ctx context.Context, in CreateItemInput, actor types.Actor) (*models.Item, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can create items")
	}
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:          strings.TrimSpace(in.ID),
		Name:        strings.TrimSpace(in.Name),
		ItemType:    in.ItemType,
		Category:    strings.TrimSpace(in.Category),
		Warehouse:   strings.TrimSpace(in.Warehouse),
		Condition:   strings.TrimSpace(in.Condition),
		Status:      statusForStock(in.InitialStock),
		Stock:       in.InitialStock,
		ReservedQty: 0,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemsTx := s.items.WithTx(tx)
		if err := itemsTx.Create(ctx, item); err != nil {
			if isDuplicateKey(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("item %s already exists", item.ID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}
		if in.InitialStock > 0 {
			movement := receiptMovement(item, 0, in.InitialStock, in.InitialStock, actor)
			if err := s.movements.WithTx(tx).Create(ctx, movement); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record initial stock movement")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithItemID(ctx, item.ID), "item created")
	return item, nil
}

func (s *service) Update(ctx context.Context, itemID string, in UpdateItemInput, actor types.Actor) (*models.Item, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can edit items")
	}

	var updated *models.Item
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemsTx := s.items.WithTx(tx)
		item, err := itemsTx.GetForUpdate(ctx, itemID)
		if err != nil {
			return mapItemLookupErr(err)
		}

		if in.Name != nil {
			item.Name = strings.TrimSpace(*in.Name)
		}
		if in.ItemType != nil {
			if !in.ItemType.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid item type")
			}
			item.ItemType = *in.ItemType
		}
		if in.Category != nil {
			item.Category = strings.TrimSpace(*in.Category)
		}
		if in.Warehouse != nil {
			item.Warehouse = strings.TrimSpace(*in.Warehouse)
		}
		if in.Condition != nil {
			item.Condition = strings.TrimSpace(*in.Condition)
		}

		if err := itemsTx.UpdateDescriptive(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, itemID string, actor types.Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete items")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemsTx := s.items.WithTx(tx)
		if _, err := itemsTx.GetForUpdate(ctx, itemID); err != nil {
			return mapItemLookupErr(err)
		}

		active, err := s.reservations.CountActiveByItem(ctx, itemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active reservations")
		}
		if active > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "item has active reservations").
				WithDetails(map[string]any{"active_reservations": active})
		}

		if err := itemsTx.Delete(ctx, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, itemID string) (*models.Item, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, mapItemLookupErr(err)
	}
	return item, nil
}

func (s *service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	cursor, err := pagination.ParseKeyCursor(in.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(in.Limit)
	items, err := s.items.List(ctx, in.Filter, pagination.LimitWithBuffer(in.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	result := &ListResult{Items: items}
	if len(items) > limit {
		result.Items = items[:limit]
		last := result.Items[limit-1]
		result.NextCursor = pagination.EncodeKeyCursor(pagination.KeyCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// IncrementStock is the goods-receipt path. It raises total stock and
// restores availability status, recording a wareneingang movement in the
// same transaction.
func (s *service) IncrementStock(ctx context.Context, in AdjustStockInput) (*models.Item, error) {
	if !in.Actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can adjust stock")
	}
	if in.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var updated *models.Item
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemsTx := s.items.WithTx(tx)
		item, err := itemsTx.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return mapItemLookupErr(err)
		}

		previous := item.Stock
		item.Stock += in.Qty
		item.Status = statusForStock(item.Stock)

		if err := itemsTx.UpdateLedger(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply stock increment")
		}
		movement := receiptMovement(item, previous, item.Stock, in.Qty, in.Actor)
		if err := s.movements.WithTx(tx).Create(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithItemID(ctx, in.ItemID), "stock incremented")
	return updated, nil
}

// DecrementStock is the goods-issue path. Stock is clamped at zero but may
// never drop below the quantity already promised to reservations.
func (s *service) DecrementStock(ctx context.Context, in AdjustStockInput) (*models.Item, error) {
	if !in.Actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can adjust stock")
	}
	if in.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var updated *models.Item
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		itemsTx := s.items.WithTx(tx)
		item, err := itemsTx.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return mapItemLookupErr(err)
		}

		previous := item.Stock
		newStock := item.Stock - in.Qty
		if newStock < 0 {
			newStock = 0
		}
		if newStock < item.ReservedQty {
			return pkgerrors.New(pkgerrors.CodeBelowReservedQuantity, "stock would drop below reserved quantity").
				WithDetails(map[string]any{
					"stock":        item.Stock,
					"reserved_qty": item.ReservedQty,
					"requested":    in.Qty,
				})
		}

		item.Stock = newStock
		item.Status = statusForStock(newStock)

		if err := itemsTx.UpdateLedger(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply stock decrement")
		}
		movement := &models.StockMovement{
			ID:            uuid.New(),
			ItemID:        item.ID,
			ItemName:      item.Name,
			Qty:           in.Qty,
			PreviousStock: previous,
			NewStock:      newStock,
			MovementType:  enums.MovementTypeWarenausgang,
			ActorID:       in.Actor.ID,
			ActorName:     in.Actor.Name,
		}
		if err := s.movements.WithTx(tx).Create(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithItemID(ctx, in.ItemID), "stock decremented")
	return updated, nil
}

func validateCreateInput(in CreateItemInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if !in.ItemType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid item type")
	}
	if strings.TrimSpace(in.Warehouse) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse is required")
	}
	if in.InitialStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}
	return nil
}

func statusForStock(stock int64) enums.ItemStatus {
	if stock == 0 {
		return enums.ItemStatusNichtVerfuegbar
	}
	return enums.ItemStatusVerfuegbar
}

func receiptMovement(item *models.Item, previous, newStock, qty int64, actor types.Actor) *models.StockMovement {
	return &models.StockMovement{
		ID:            uuid.New(),
		ItemID:        item.ID,
		ItemName:      item.Name,
		Qty:           qty,
		PreviousStock: previous,
		NewStock:      newStock,
		MovementType:  enums.MovementTypeWareneingang,
		ActorID:       actor.ID,
		ActorName:     actor.Name,
	}
}

func mapItemLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeItemNotFound, "item not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
}

func isDuplicateKey(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed"))
}
