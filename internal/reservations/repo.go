package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/pagination"
)

// Repository persists active reservations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	Create(ctx context.Context, reservation *models.Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountActiveByItem(ctx context.Context, itemID string) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reservation, error)
	ListAll(ctx context.Context) ([]models.Reservation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reservation repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Reservation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountActiveByItem(ctx context.Context, itemID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Where("reserved_by = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListAll(ctx context.Context) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// HistoryRepository persists the append-only fulfilled/cancelled trail.
type HistoryRepository interface {
	WithTx(tx *gorm.DB) HistoryRepository
	Create(ctx context.Context, record *models.ReservationHistory) error
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.ReservationHistory, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository builds a history repository backed by the provided DB.
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	if db == nil {
		return nil
	}
	return &historyRepository{db: db}
}

func (r *historyRepository) WithTx(tx *gorm.DB) HistoryRepository {
	if tx == nil {
		return r
	}
	return &historyRepository{db: tx}
}

func (r *historyRepository) Create(ctx context.Context, record *models.ReservationHistory) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *historyRepository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.ReservationHistory, error) {
	query := r.db.WithContext(ctx).Model(&models.ReservationHistory{})
	if cursor != nil {
		query = query.Where(
			"resolved_at < ? OR (resolved_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.ReservationHistory
	err := query.
		Order("resolved_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// DeleteExpired removes history rows whose retention stamp has passed.
func (r *historyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.ReservationHistory{})
	return result.RowsAffected, result.Error
}
