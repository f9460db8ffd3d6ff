package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-activity-api/internal/models"
)

const eventColumns = `id, title, category, description, location, application_deadline, event_date, point, quota, created_by, created_at`

// EventRepository persists activity events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events with the nearest event date first.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY event_date ASC, id ASC`
	events := make([]models.Event, 0)
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Create inserts an event and fills the generated columns.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `INSERT INTO events (title, category, description, location, application_deadline, event_date, point, quota, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING ` + eventColumns
	if err := r.db.GetContext(ctx, event, query,
		event.Title, event.Category, event.Description, event.Location, event.ApplicationDeadline,
		event.EventDate, event.Point, event.Quota, event.CreatedBy,
	); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `UPDATE events SET title = $2, category = $3, description = $4, location = $5, application_deadline = $6, event_date = $7, point = $8, quota = $9
WHERE id = $1 RETURNING ` + eventColumns
	if err := r.db.GetContext(ctx, event, query,
		event.ID, event.Title, event.Category, event.Description, event.Location, event.ApplicationDeadline,
		event.EventDate, event.Point, event.Quota,
	); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "events", id)
}
