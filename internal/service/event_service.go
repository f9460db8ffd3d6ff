package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-activity-api/internal/models"
	"github.com/noah-isme/sma-activity-api/pkg/database"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
}

// EventService manages activity events.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs an EventService.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{repo: repo, validator: validate, logger: logger}
}

// List returns all events.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list events")
	}
	return events, nil
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "title, event_date, point and created_by are required")
	}

	event := &models.Event{
		Title:               req.Title,
		Category:            req.Category,
		Description:         req.Description,
		Location:            req.Location,
		ApplicationDeadline: req.ApplicationDeadline,
		EventDate:           *req.EventDate,
		Point:               req.Point,
		Quota:               req.Quota,
		CreatedBy:           req.CreatedBy,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error("failed to create event", zap.String("title", req.Title), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to create event")
	}
	return event, nil
}

// Update overwrites an existing event.
func (s *EventService) Update(ctx context.Context, id int64, req models.UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "title, event_date and point are required")
	}

	event := &models.Event{
		ID:                  id,
		Title:               req.Title,
		Category:            req.Category,
		Description:         req.Description,
		Location:            req.Location,
		ApplicationDeadline: req.ApplicationDeadline,
		EventDate:           *req.EventDate,
		Point:               req.Point,
		Quota:               req.Quota,
	}
	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Internal(err, "failed to update event")
	}
	return event, nil
}

// Delete removes an event and its registrations. Events with ledger entries are kept.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		if database.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "event has points recorded and cannot be deleted")
		}
		return appErrors.Internal(err, "failed to delete event")
	}
	return nil
}
