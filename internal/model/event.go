package model

import (
	"time"

	"github.com/qs3c/hatch_server/internal/tier"
)

type Event struct {
	ID                   int64       `gorm:"primaryKey" json:"id"`
	Title                string      `gorm:"size:200;not null" json:"title"`
	Description          string      `gorm:"type:text" json:"description"`
	RegistrationLink     string      `gorm:"size:500" json:"registration_link"`
	RequiredTier         tier.Tier   `gorm:"size:20;default:free;index" json:"required_tier"`
	Status               EventStatus `gorm:"size:20;default:draft;index" json:"status"`
	EventDate            time.Time   `gorm:"not null;index" json:"event_date"`
	RegistrationDeadline *time.Time  `json:"registration_deadline,omitempty"`
	Organizer            string      `gorm:"size:200" json:"organizer"`
	Category             string      `gorm:"size:100;index" json:"category"`
	Mode                 EventMode   `gorm:"size:20" json:"mode"`
	Location             string      `gorm:"size:300" json:"location"`
	ImageURL             string      `gorm:"size:500" json:"image_url,omitempty"`
	Tags                 StringArray `gorm:"type:json" json:"tags,omitempty"`
	CreatedBy            int64       `gorm:"index" json:"created_by"`
	// AttendanceMarkedAt is set once the auto-attendance job has claimed the event.
	AttendanceMarkedAt *time.Time `json:"attendance_marked_at,omitempty"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) IsPublished() bool {
	return e.Status == EventPublished
}

// RegistrationClosed reports whether the registration deadline has passed or
// the event has already started. Past events only take attendance answers.
func (e *Event) RegistrationClosed(now time.Time) bool {
	if now.After(e.EventDate) {
		return true
	}
	return e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline)
}
