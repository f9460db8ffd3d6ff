package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-activity-api/internal/models"
)

const pointsColumns = `id, student_id, event_id, total_point, created_at`

// PointsRepository reads and appends the points ledger.
type PointsRepository struct {
	db *sqlx.DB
}

// NewPointsRepository constructs a PointsRepository.
func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

// ListByStudent returns the student's ledger newest first.
func (r *PointsRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.PointsHistoryRecord, error) {
	query := `SELECT ` + pointsColumns + ` FROM points_history WHERE student_id = $1 ORDER BY created_at DESC, id DESC`
	records := make([]models.PointsHistoryRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list points history: %w", err)
	}
	return records, nil
}

// ListTotalPoints fetches only the total_point column of every record for the student.
func (r *PointsRepository) ListTotalPoints(ctx context.Context, studentID int64) ([]int, error) {
	const query = `SELECT total_point FROM points_history WHERE student_id = $1`
	values := make([]int, 0)
	if err := r.db.SelectContext(ctx, &values, query, studentID); err != nil {
		return nil, fmt.Errorf("list total points: %w", err)
	}
	return values, nil
}

// Create appends a ledger record.
func (r *PointsRepository) Create(ctx context.Context, record *models.PointsHistoryRecord) error {
	query := `INSERT INTO points_history (student_id, event_id, total_point) VALUES ($1, $2, $3) RETURNING ` + pointsColumns
	if err := r.db.GetContext(ctx, record, query, record.StudentID, record.EventID, record.TotalPoint); err != nil {
		return fmt.Errorf("create points record: %w", err)
	}
	return nil
}
