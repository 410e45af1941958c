package inventory

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/pagination"
)

// ListFilter narrows item listings.
type ListFilter struct {
	Search    string
	ItemType  *enums.ItemType
	Category  string
	Warehouse string
	Status    *enums.ItemStatus
}

// ItemRepository persists stock ledger rows.
type ItemRepository interface {
	WithTx(tx *gorm.DB) ItemRepository
	Get(ctx context.Context, id string) (*models.Item, error)
	// GetForUpdate loads the item under a row lock so availability is
	// computed against the freshest committed state.
	GetForUpdate(ctx context.Context, id string) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	UpdateDescriptive(ctx context.Context, item *models.Item) error
	UpdateLedger(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.KeyCursor) ([]models.Item, error)
	All(ctx context.Context) ([]models.Item, error)
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository builds an item repository backed by the provided DB.
func NewItemRepository(db *gorm.DB) ItemRepository {
	if db == nil {
		return nil
	}
	return &itemRepository{db: db}
}

func (r *itemRepository) WithTx(tx *gorm.DB) ItemRepository {
	if tx == nil {
		return r
	}
	return &itemRepository{db: tx}
}

func (r *itemRepository) Get(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetForUpdate(ctx context.Context, id string) (*models.Item, error) {
	query := r.db.WithContext(ctx)
	// sqlite (tests) has no FOR UPDATE; its single-writer model covers us there.
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item models.Item
	if err := query.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateDescriptive writes only the freely mutable fields. Stock and
// reserved quantity are off-limits here; those change through UpdateLedger
// inside engine transactions.
func (r *itemRepository) UpdateDescriptive(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", item.ID).
		Select("name", "item_type", "category", "warehouse", "condition", "status").
		Updates(map[string]any{
			"name":      item.Name,
			"item_type": item.ItemType,
			"category":  item.Category,
			"warehouse": item.Warehouse,
			"condition": item.Condition,
			"status":    item.Status,
		}).Error
}

func (r *itemRepository) UpdateLedger(ctx context.Context, item *models.Item) error {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"stock":        item.Stock,
			"reserved_qty": item.ReservedQty,
			"status":       item.Status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepository) List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.KeyCursor) ([]models.Item, error) {
	query := r.db.WithContext(ctx).Model(&models.Item{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(id) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	if filter.ItemType != nil {
		query = query.Where("item_type = ?", *filter.ItemType)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Warehouse != "" {
		query = query.Where("warehouse = ?", filter.Warehouse)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var items []models.Item
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) All(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
