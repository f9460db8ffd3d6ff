package models

import "time"

// Notification is a message addressed to a single user.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateNotificationRequest is the payload for sending a notification.
type CreateNotificationRequest struct {
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// BroadcastRequest fans a notification out to every user holding a role.
type BroadcastRequest struct {
	Role    UserRole `json:"role" validate:"required,oneof=student teacher admin"`
	Title   string   `json:"title" validate:"required"`
	Message string   `json:"message" validate:"required"`
}

// BroadcastAccepted acknowledges a queued broadcast.
type BroadcastAccepted struct {
	JobID string   `json:"job_id"`
	Role  UserRole `json:"role"`
}
