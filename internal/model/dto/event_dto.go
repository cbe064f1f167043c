package dto

import "time"

// EventQuery filters the user-facing event list.
type EventQuery struct {
	Search string `form:"search"`
	Tier   string `form:"tier"`
	When   string `form:"when" binding:"omitempty,oneof=upcoming past"`
}

type CreateEventRequest struct {
	Title                string     `json:"title" binding:"required,max=200"`
	Description          string     `json:"description"`
	RegistrationLink     string     `json:"registration_link" binding:"omitempty,url,max=500"`
	RequiredTier         string     `json:"required_tier" binding:"required"`
	Status               string     `json:"status" binding:"omitempty,oneof=draft published"`
	EventDate            time.Time  `json:"event_date" binding:"required"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Organizer            string     `json:"organizer" binding:"max=200"`
	Category             string     `json:"category" binding:"max=100"`
	Mode                 string     `json:"mode" binding:"omitempty,oneof=online offline hybrid"`
	Location             string     `json:"location" binding:"max=300"`
	ImageURL             string     `json:"image_url" binding:"omitempty,url,max=500"`
	Tags                 []string   `json:"tags"`
}

// UpdateEventRequest is a partial update; nil fields are left alone.
type UpdateEventRequest struct {
	Title                *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description          *string    `json:"description"`
	RegistrationLink     *string    `json:"registration_link" binding:"omitempty,max=500"`
	RequiredTier         *string    `json:"required_tier"`
	Status               *string    `json:"status" binding:"omitempty,oneof=draft published"`
	EventDate            *time.Time `json:"event_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Organizer            *string    `json:"organizer" binding:"omitempty,max=200"`
	Category             *string    `json:"category" binding:"omitempty,max=100"`
	Mode                 *string    `json:"mode" binding:"omitempty,oneof=online offline hybrid"`
	Location             *string    `json:"location" binding:"omitempty,max=300"`
	ImageURL             *string    `json:"image_url" binding:"omitempty,max=500"`
	Tags                 *[]string  `json:"tags"`
}

type AdminEventQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=draft published"`
	Search   string `form:"search"`
}
