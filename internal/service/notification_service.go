package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-activity-api/internal/models"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
	"github.com/noah-isme/sma-activity-api/pkg/jobs"
)

// BroadcastJobType labels broadcast jobs on the notification queue.
const BroadcastJobType = "notification.broadcast"

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, userIDs []int64, title, message string) (int, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int64) (*models.Notification, error)
}

type roleDirectory interface {
	ListIDsByRole(ctx context.Context, role models.UserRole) ([]int64, error)
}

type broadcastQueue interface {
	Enqueue(job jobs.Job[models.BroadcastRequest]) (string, error)
}

// NotificationService sends and lists user notifications.
type NotificationService struct {
	repo      notificationRepository
	queue     broadcastQueue
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs a NotificationService. Broadcasts are rejected when queue is nil.
func NewNotificationService(repo notificationRepository, queue broadcastQueue, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NotificationService{repo: repo, queue: queue, metrics: metrics, validator: validate, logger: logger}
}

// Create stores an unread notification.
func (s *NotificationService) Create(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "user_id, title and message are required")
	}

	n := &models.Notification{UserID: req.UserID, Title: req.Title, Message: req.Message}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, appErrors.Internal(err, "failed to create notification")
	}
	return n, nil
}

// ListByUser returns the user's notifications newest first.
func (s *NotificationService) ListByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	if userID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user_id is required")
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list notifications")
	}
	return items, nil
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id int64) (*models.Notification, error) {
	n, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return nil, appErrors.Internal(err, "failed to update notification")
	}
	return n, nil
}

// Broadcast queues a notification for every user holding the role.
func (s *NotificationService) Broadcast(ctx context.Context, req models.BroadcastRequest) (*models.BroadcastAccepted, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "role, title and message are required")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "broadcast queue unavailable")
	}

	id, err := s.queue.Enqueue(jobs.Job[models.BroadcastRequest]{Type: BroadcastJobType, Payload: req})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to queue broadcast")
	}
	s.metrics.RecordBroadcastQueued()
	s.logger.Info("broadcast queued", zap.String("job_id", id), zap.String("role", string(req.Role)))
	return &models.BroadcastAccepted{JobID: id, Role: req.Role}, nil
}

// BroadcastJobHandler delivers queued broadcasts by writing one notification per recipient.
func BroadcastJobHandler(repo notificationRepository, users roleDirectory, metrics *MetricsService, logger *zap.Logger) jobs.Handler[models.BroadcastRequest] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job[models.BroadcastRequest]) error {
		ids, err := users.ListIDsByRole(ctx, job.Payload.Role)
		if err != nil {
			return err
		}
		n, err := repo.CreateBatch(ctx, ids, job.Payload.Title, job.Payload.Message)
		if err != nil {
			return err
		}
		metrics.RecordNotificationsDelivered(n)
		logger.Info("broadcast delivered", zap.String("job_id", job.ID), zap.String("role", string(job.Payload.Role)), zap.Int("recipients", n))
		return nil
	}
}
