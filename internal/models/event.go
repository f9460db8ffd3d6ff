package models

import "time"

// Event is an activity students can register for.
type Event struct {
	ID                  int64      `db:"id" json:"id"`
	Title               string     `db:"title" json:"title"`
	Category            *string    `db:"category" json:"category,omitempty"`
	Description         *string    `db:"description" json:"description,omitempty"`
	Location            *string    `db:"location" json:"location,omitempty"`
	ApplicationDeadline *time.Time `db:"application_deadline" json:"application_deadline,omitempty"`
	EventDate           time.Time  `db:"event_date" json:"event_date"`
	Point               int        `db:"point" json:"point"`
	Quota               *int       `db:"quota" json:"quota,omitempty"`
	CreatedBy           int64      `db:"created_by" json:"created_by"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// CreateEventRequest is the payload for creating an event. A zero point is rejected.
type CreateEventRequest struct {
	Title               string     `json:"title" validate:"required"`
	Category            *string    `json:"category"`
	Description         *string    `json:"description"`
	Location            *string    `json:"location"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	EventDate           *time.Time `json:"event_date" validate:"required"`
	Point               int        `json:"point" validate:"required,gte=-2147483648,lte=2147483647"`
	Quota               *int       `json:"quota" validate:"omitempty,gte=0,lte=2147483647"`
	CreatedBy           int64      `json:"created_by" validate:"required,gt=0"`
}

// UpdateEventRequest overwrites the mutable event fields.
type UpdateEventRequest struct {
	Title               string     `json:"title" validate:"required"`
	Category            *string    `json:"category"`
	Description         *string    `json:"description"`
	Location            *string    `json:"location"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	EventDate           *time.Time `json:"event_date" validate:"required"`
	Point               int        `json:"point" validate:"required,gte=-2147483648,lte=2147483647"`
	Quota               *int       `json:"quota" validate:"omitempty,gte=0,lte=2147483647"`
}
