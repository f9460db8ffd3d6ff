package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-activity-api/internal/models"
)

type notificationServiceMock struct {
	lastUser int64
	calls    int
}

func (m *notificationServiceMock) Create(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error) {
	m.calls++
	return &models.Notification{ID: 1, UserID: req.UserID, Title: req.Title, Message: req.Message}, nil
}

func (m *notificationServiceMock) ListByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	m.calls++
	m.lastUser = userID
	return []models.Notification{}, nil
}

func (m *notificationServiceMock) MarkRead(ctx context.Context, id int64) (*models.Notification, error) {
	m.calls++
	return &models.Notification{ID: id, IsRead: true}, nil
}

func (m *notificationServiceMock) Broadcast(ctx context.Context, req models.BroadcastRequest) (*models.BroadcastAccepted, error) {
	m.calls++
	return &models.BroadcastAccepted{JobID: "job-1", Role: req.Role}, nil
}

func TestNotificationHandlerListRequiresUser(t *testing.T) {
	mockSvc := &notificationServiceMock{}
	handler := NewNotificationHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/api/notifications", "")
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockSvc.calls)

	c, w = newTestContext(http.MethodGet, "/api/notifications?user_id=5", "")
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), mockSvc.lastUser)
}

func TestNotificationHandlerBroadcastAccepted(t *testing.T) {
	handler := NewNotificationHandler(&notificationServiceMock{})

	c, w := newTestContext(http.MethodPost, "/api/notifications/broadcast", `{"role":"student","title":"t","message":"m"}`)
	handler.Broadcast(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"job_id":"job-1"`)
}
