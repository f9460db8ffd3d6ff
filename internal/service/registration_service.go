package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-activity-api/internal/models"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
)

type registrationRepository interface {
	Create(ctx context.Context, eventID, studentID int64) (*models.Registration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error)
	UpdateAttendance(ctx context.Context, id int64, att models.Attendance) (*models.Registration, error)
	Delete(ctx context.Context, id int64) error
}

// RegistrationService handles event sign-ups and attendance recording.
type RegistrationService struct {
	repo      registrationRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(repo registrationRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RegistrationService{repo: repo, metrics: metrics, validator: validate, logger: logger}
}

// Register signs a student up for an event.
func (s *RegistrationService) Register(ctx context.Context, eventID int64, req models.RegisterRequest) (*models.Registration, error) {
	if eventID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid event id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "student_id is required")
	}

	reg, err := s.repo.Create(ctx, eventID, req.StudentID)
	if err != nil {
		s.logger.Error("failed to register student", zap.Int64("event_id", eventID), zap.Int64("student_id", req.StudentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to register for event")
	}
	return reg, nil
}

// List returns registrations matching the filter.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error) {
	regs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list registrations")
	}
	return regs, nil
}

// Remove deletes a registration.
func (s *RegistrationService) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Internal(err, "failed to remove registration")
	}
	return nil
}

// RecordAttendance overwrites the attendance outcome of a registration.
// Optional fields left out of the request are reset: is_volunteer to false,
// extra_point to 0 and recorded_by to null.
func (s *RegistrationService) RecordAttendance(ctx context.Context, id int64, req models.AttendanceRequest) (*models.Registration, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid registration id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "is_participated is required and extra_point must not be negative")
	}

	att := models.Attendance{
		IsParticipated: *req.IsParticipated,
		RecordedBy:     req.RecordedBy,
	}
	if req.IsVolunteer != nil {
		att.IsVolunteer = *req.IsVolunteer
	}
	if req.ExtraPoint != nil {
		att.ExtraPoint = *req.ExtraPoint
	}

	reg, err := s.repo.UpdateAttendance(ctx, id, att)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		s.logger.Error("failed to record attendance", zap.Int64("registration_id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to record attendance")
	}

	s.metrics.RecordAttendance(reg.IsParticipated)
	return reg, nil
}
