package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-activity-api/internal/service"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestReadyReflectsDatabase(t *testing.T) {
	handler := NewMetricsHandler(service.NewMetricsService(), pingFunc(func(ctx context.Context) error { return nil }))
	c, w := newTestContext(http.MethodGet, "/ready", "")
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	handler = NewMetricsHandler(nil, pingFunc(func(ctx context.Context) error { return errors.New("down") }))
	c, w = newTestContext(http.MethodGet, "/ready", "")
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPrometheusEndpoint(t *testing.T) {
	handler := NewMetricsHandler(service.NewMetricsService(), nil)
	c, w := newTestContext(http.MethodGet, "/metrics", "")
	handler.Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "activity_api_goroutines")
}
