package models

import "time"

// Registration links a student to an event and carries the attendance outcome.
type Registration struct {
	ID             int64     `db:"id" json:"id"`
	EventID        int64     `db:"event_id" json:"event_id"`
	StudentID      int64     `db:"student_id" json:"student_id"`
	IsParticipated bool      `db:"is_participated" json:"is_participated"`
	IsVolunteer    bool      `db:"is_volunteer" json:"is_volunteer"`
	ExtraPoint     int       `db:"extra_point" json:"extra_point"`
	RecordedBy     *int64    `db:"recorded_by" json:"recorded_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RegisterRequest enrolls a student into the event named in the path.
type RegisterRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

// AttendanceRequest overwrites the attendance columns of a registration.
// Omitted optional fields reset to their zero value.
type AttendanceRequest struct {
	IsParticipated *bool  `json:"is_participated" validate:"required"`
	IsVolunteer    *bool  `json:"is_volunteer"`
	ExtraPoint     *int   `json:"extra_point" validate:"omitempty,gte=0,lte=2147483647"`
	RecordedBy     *int64 `json:"recorded_by" validate:"omitempty,gt=0"`
}

// Attendance is the normalised column set written by the attendance recorder.
type Attendance struct {
	IsParticipated bool   `db:"is_participated"`
	IsVolunteer    bool   `db:"is_volunteer"`
	ExtraPoint     int    `db:"extra_point"`
	RecordedBy     *int64 `db:"recorded_by"`
}

// RegistrationFilter narrows registration listings.
type RegistrationFilter struct {
	EventID   *int64
	StudentID *int64
}
