package dto

import "time"

type ConfirmAttendanceRequest struct {
	Attended *bool `json:"attended" binding:"required"`
}

type AddPastEventRequest struct {
	Title     string    `json:"title" binding:"required,max=200"`
	Organizer string    `json:"organizer" binding:"max=200"`
	EventDate time.Time `json:"event_date" binding:"required"`
	Notes     string    `json:"notes" binding:"max=2000"`
}

// UserStats are the profile counters, computed on read.
type UserStats struct {
	Tier                 string `json:"tier"`
	TotalRegistrations   int64  `json:"total_registrations"`
	Attended             int64  `json:"attended"`
	NotAttended          int64  `json:"not_attended"`
	Pending              int64  `json:"pending"`
	ManualPastEvents     int64  `json:"manual_past_events"`
	ManualPastEventQuota int    `json:"manual_past_event_quota"`
	WeeklyRegistrations  int64  `json:"weekly_registrations"`
	WeeklyQuota          int    `json:"weekly_quota"`
}
