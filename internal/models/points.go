package models

import "time"

// PointsHistoryRecord is an immutable ledger entry of points awarded to a student.
type PointsHistoryRecord struct {
	ID         int64     `db:"id" json:"id"`
	StudentID  int64     `db:"student_id" json:"student_id"`
	EventID    int64     `db:"event_id" json:"event_id"`
	TotalPoint int       `db:"total_point" json:"total_point"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CreatePointsRequest records points for a student. Zero is allowed, negatives are not.
type CreatePointsRequest struct {
	StudentID  int64 `json:"student_id" validate:"required,gt=0"`
	EventID    int64 `json:"event_id" validate:"required,gt=0"`
	TotalPoint *int  `json:"total_point" validate:"required,gte=0,lte=2147483647"`
}

// StudentTotal is the aggregate of a student's points ledger.
type StudentTotal struct {
	StudentID   int64 `json:"student_id"`
	TotalPoints int   `json:"total_points"`
}
