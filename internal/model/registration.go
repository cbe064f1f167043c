package model

import (
	"time"
)

// Registration links a user to an event. (user_id, event_id) is unique.
type Registration struct {
	ID          int64              `gorm:"primaryKey" json:"id"`
	UserID      int64              `gorm:"not null;uniqueIndex:idx_registration_user_event;index" json:"user_id"`
	EventID     int64              `gorm:"not null;uniqueIndex:idx_registration_user_event;index" json:"event_id"`
	Status      AttendanceStatus   `gorm:"size:20;default:registered;index" json:"status"`
	Source      RegistrationSource `gorm:"size:10;default:self" json:"source"`
	ConfirmedAt *time.Time         `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (Registration) TableName() string {
	return "registrations"
}

// PastEvent is an attended event the user added by hand; it is not part of the catalog.
type PastEvent struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Organizer string    `gorm:"size:200" json:"organizer"`
	EventDate time.Time `gorm:"not null" json:"event_date"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (PastEvent) TableName() string {
	return "past_events"
}
