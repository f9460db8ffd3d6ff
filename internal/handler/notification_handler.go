package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-activity-api/internal/models"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
	"github.com/noah-isme/sma-activity-api/pkg/response"
)

type notificationService interface {
	Create(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int64) (*models.Notification, error)
	Broadcast(ctx context.Context, req models.BroadcastRequest) (*models.BroadcastAccepted, error)
}

// NotificationHandler exposes notification endpoints.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// Create godoc
// @Summary Send notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body models.CreateNotificationRequest true "Notification payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	n, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, n, "notification sent")
}

// List godoc
// @Summary List a user's notifications
// @Tags Notifications
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := queryID(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if userID == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user_id is required"))
		return
	}

	items, err := h.service.ListByUser(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// MarkRead godoc
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	n, err := h.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, n)
}

// Broadcast godoc
// @Summary Broadcast notification to a role
// @Description Accepted for asynchronous delivery to every user holding the role
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body models.BroadcastRequest true "Broadcast payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req models.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	accepted, err := h.service.Broadcast(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, accepted)
}
