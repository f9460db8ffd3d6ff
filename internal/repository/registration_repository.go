package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-activity-api/internal/models"
)

const registrationColumns = `id, event_id, student_id, is_participated, is_volunteer, extra_point, recorded_by, created_at`

// RegistrationRepository persists event registrations and attendance.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a fresh registration with attendance columns at their defaults.
func (r *RegistrationRepository) Create(ctx context.Context, eventID, studentID int64) (*models.Registration, error) {
	query := `INSERT INTO event_registrations (event_id, student_id, is_participated, is_volunteer, extra_point)
VALUES ($1, $2, FALSE, FALSE, 0) RETURNING ` + registrationColumns
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, eventID, studentID); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}
	return &reg, nil
}

// List returns registrations matching the optional filters.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.EventID != nil {
		args = append(args, *filter.EventID)
		conditions = append(conditions, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM event_registrations WHERE %s ORDER BY id", registrationColumns, strings.Join(conditions, " AND "))
	regs := make([]models.Registration, 0)
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// UpdateAttendance overwrites the attendance columns in one statement and returns the row.
// sql.ErrNoRows is returned untouched when the registration does not exist.
func (r *RegistrationRepository) UpdateAttendance(ctx context.Context, id int64, att models.Attendance) (*models.Registration, error) {
	query := `UPDATE event_registrations SET is_participated = $2, is_volunteer = $3, extra_point = $4, recorded_by = $5
WHERE id = $1 RETURNING ` + registrationColumns
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id, att.IsParticipated, att.IsVolunteer, att.ExtraPoint, att.RecordedBy); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update attendance: %w", err)
	}
	return &reg, nil
}

// Delete removes a registration.
func (r *RegistrationRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "event_registrations", id)
}
