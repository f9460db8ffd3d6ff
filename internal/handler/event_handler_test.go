package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-activity-api/internal/models"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
)

type eventServiceMock struct {
	deleteErr error
	calls     int
}

func (m *eventServiceMock) List(ctx context.Context) ([]models.Event, error) {
	m.calls++
	return []models.Event{{ID: 1, Title: "Cleanup"}}, nil
}

func (m *eventServiceMock) Create(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	m.calls++
	return &models.Event{ID: 1, Title: req.Title, Point: req.Point}, nil
}

func (m *eventServiceMock) Update(ctx context.Context, id int64, req models.UpdateEventRequest) (*models.Event, error) {
	m.calls++
	return &models.Event{ID: id, Title: req.Title}, nil
}

func (m *eventServiceMock) Delete(ctx context.Context, id int64) error {
	m.calls++
	return m.deleteErr
}

func TestEventHandlerCreate(t *testing.T) {
	mockSvc := &eventServiceMock{}
	handler := NewEventHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/api/events", `{"title":"Cleanup","event_date":"2025-03-01T08:00:00Z","point":10,"created_by":2}`)
	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "event created", decode(t, w).Message)

	c, w = newTestContext(http.MethodPost, "/api/events", `{"title":"Cleanup","event_date":"not-a-date"}`)
	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, mockSvc.calls)
}

func TestEventHandlerDeleteNotFound(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{deleteErr: appErrors.Clone(appErrors.ErrNotFound, "event not found")})

	c, w := newTestContext(http.MethodDelete, "/api/events/9", "")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	handler.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
