package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-events/internal/domain"
)

// GormEventRepository implements EventRepository using GORM.
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GORM-based event repository.
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Create creates a new event.
func (r *GormEventRepository) Create(ctx context.Context, event *domain.Event) error {
	event.ID = uuid.New().String()

	model := domain.EventToModel(event)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	event.CreatedAt = model.CreatedAt
	return nil
}

// GetByID retrieves an event by ID.
func (r *GormEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var model domain.EventModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List retrieves events ordered by date.
func (r *GormEventRepository) List(ctx context.Context, includeRestricted bool) ([]domain.Event, error) {
	var models []domain.EventModel
	query := r.db.WithContext(ctx).Model(&domain.EventModel{})
	if !includeRestricted {
		query = query.Where("is_for_logged_in_only = ?", false)
	}
	if err := query.Order("date ASC").Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	events := make([]domain.Event, len(models))
	for i := range models {
		events[i] = *models[i].ToDomain()
	}
	return events, nil
}

// Exists reports whether an event with the given ID exists.
func (r *GormEventRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.EventModel{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
