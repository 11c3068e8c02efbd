package repository

import (
	"context"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-events/internal/domain"
)

// GormAttendanceRepository implements AttendanceRepository using GORM.
type GormAttendanceRepository struct {
	db *gorm.DB
}

// NewGormAttendanceRepository creates a new GORM-based attendance repository.
func NewGormAttendanceRepository(db *gorm.DB) *GormAttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

// Exists reports whether the user has already joined the event.
func (r *GormAttendanceRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AttendeeModel{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Insert stores a new attendance record. Record IDs are monotonic ULIDs so
// they sort in join order.
func (r *GormAttendanceRepository) Insert(ctx context.Context, eventID, userID string) (*domain.AttendanceRecord, error) {
	model := &domain.AttendeeModel{
		ID:      ulid.Make().String(),
		EventID: eventID,
		UserID:  userID,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAttendance
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountFor returns the number of attendance records for an event.
func (r *GormAttendanceRepository) CountFor(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AttendeeModel{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

type eventCount struct {
	EventID string
	Count   int64
}

// CountsByEvent returns attendee counts keyed by event ID. Events without
// attendees are absent from the map.
func (r *GormAttendanceRepository) CountsByEvent(ctx context.Context) (map[string]int64, error) {
	var rows []eventCount
	err := r.db.WithContext(ctx).Model(&domain.AttendeeModel{}).
		Select("event_id, COUNT(*) AS count").
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.EventID] = row.Count
	}
	return counts, nil
}

// ListAttendees returns the attendees of an event with their display names,
// in join order.
func (r *GormAttendanceRepository) ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	attendees := []domain.Attendee{}
	err := r.db.WithContext(ctx).
		Table("attendees").
		Select("attendees.user_id AS user_id, users.name AS user_name").
		Joins("JOIN users ON users.id = attendees.user_id").
		Where("attendees.event_id = ?", eventID).
		Order("attendees.id ASC").
		Scan(&attendees).Error
	if err != nil {
		return nil, err
	}
	return attendees, nil
}

