package domain

import (
	"time"
)

// UserModel is the GORM model for users table.
type UserModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

// EventModel is the GORM model for events table.
type EventModel struct {
	ID                string    `gorm:"type:varchar(36);primaryKey"`
	Title             string    `gorm:"type:varchar(200);not null"`
	Description       string    `gorm:"type:text"`
	Date              time.Time `gorm:"index"`
	Time              string    `gorm:"type:varchar(20)"`
	Location          string    `gorm:"type:varchar(200)"`
	Category          string    `gorm:"type:varchar(50);index"`
	ImageURL          string    `gorm:"type:text"`
	IsForLoggedInOnly bool      `gorm:"index;not null;default:false"`
	UserID            string    `gorm:"type:varchar(36);index;not null"`
	CreatorName       string    `gorm:"type:varchar(100)"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for EventModel.
func (EventModel) TableName() string {
	return "events"
}

// ToDomain converts EventModel to domain Event.
func (m *EventModel) ToDomain() *Event {
	return &Event{
		ID:                m.ID,
		Title:             m.Title,
		Description:       m.Description,
		Date:              m.Date,
		Time:              m.Time,
		Location:          m.Location,
		Category:          m.Category,
		ImageURL:          m.ImageURL,
		IsForLoggedInOnly: m.IsForLoggedInOnly,
		UserID:            m.UserID,
		CreatorName:       m.CreatorName,
		CreatedAt:         m.CreatedAt,
	}
}

// EventToModel converts domain Event to EventModel.
func EventToModel(e *Event) *EventModel {
	return &EventModel{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		Date:              e.Date,
		Time:              e.Time,
		Location:          e.Location,
		Category:          e.Category,
		ImageURL:          e.ImageURL,
		IsForLoggedInOnly: e.IsForLoggedInOnly,
		UserID:            e.UserID,
		CreatorName:       e.CreatorName,
		CreatedAt:         e.CreatedAt,
	}
}

// AttendeeModel is the GORM model for attendees table. The composite unique
// index is the authoritative duplicate-join guard.
type AttendeeModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	EventID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_attendees_event_user,priority:1"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_attendees_event_user,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for AttendeeModel.
func (AttendeeModel) TableName() string {
	return "attendees"
}

// ToDomain converts AttendeeModel to domain AttendanceRecord.
func (m *AttendeeModel) ToDomain() *AttendanceRecord {
	return &AttendanceRecord{
		ID:        m.ID,
		EventID:   m.EventID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}

// Models lists every model for auto-migration.
func Models() []interface{} {
	return []interface{}{&UserModel{}, &EventModel{}, &AttendeeModel{}}
}
