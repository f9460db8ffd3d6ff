package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-activity-api/internal/models"
	"github.com/noah-isme/sma-activity-api/internal/service"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
)

type pointsServiceMock struct {
	total       *models.StudentTotal
	hit         bool
	err         error
	lastStudent int64
	lastFormat  string
	calls       int
}

func (m *pointsServiceMock) StudentTotal(ctx context.Context, studentID int64) (*models.StudentTotal, bool, error) {
	m.calls++
	m.lastStudent = studentID
	return m.total, m.hit, m.err
}

func (m *pointsServiceMock) History(ctx context.Context, studentID int64) ([]models.PointsHistoryRecord, error) {
	m.calls++
	m.lastStudent = studentID
	return []models.PointsHistoryRecord{}, m.err
}

func (m *pointsServiceMock) Record(ctx context.Context, req models.CreatePointsRequest) (*models.PointsHistoryRecord, error) {
	m.calls++
	return &models.PointsHistoryRecord{ID: 1, StudentID: req.StudentID}, m.err
}

func (m *pointsServiceMock) Export(ctx context.Context, studentID int64, format string) (*service.ExportFile, error) {
	m.calls++
	m.lastFormat = format
	return &service.ExportFile{Filename: "points-student-1.csv", ContentType: "text/csv", Body: []byte("id\n")}, m.err
}

func newTestContext(method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, stringsReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

type envelope struct {
	Data    json.RawMessage        `json:"data"`
	Message string                 `json:"message"`
	Error   *appErrors.Error       `json:"error"`
	Meta    map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestPointsHandlerStudentTotal(t *testing.T) {
	mockSvc := &pointsServiceMock{total: &models.StudentTotal{StudentID: 1, TotalPoints: 25}}
	handler := NewPointsHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/api/points/student/1/total", "")
	c.Params = gin.Params{{Key: "student_id", Value: "1"}}
	handler.StudentTotal(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.JSONEq(t, `{"student_id":1,"total_points":25}`, string(env.Data))
	assert.Equal(t, false, env.Meta["cache_hit"])
	assert.Equal(t, int64(1), mockSvc.lastStudent)
}

func TestPointsHandlerStudentTotalInvalidID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3"} {
		mockSvc := &pointsServiceMock{}
		handler := NewPointsHandler(mockSvc)

		c, w := newTestContext(http.MethodGet, "/api/points/student/"+raw+"/total", "")
		c.Params = gin.Params{{Key: "student_id", Value: raw}}
		handler.StudentTotal(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, mockSvc.calls)
	}
}

func TestPointsHandlerStudentTotalStoreFault(t *testing.T) {
	mockSvc := &pointsServiceMock{err: appErrors.Internal(errors.New("dial tcp: refused"), "failed to calculate total points")}
	handler := NewPointsHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/api/points/student/1/total", "")
	c.Params = gin.Params{{Key: "student_id", Value: "1"}}
	handler.StudentTotal(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")
}

func TestPointsHandlerHistoryRequiresStudent(t *testing.T) {
	mockSvc := &pointsServiceMock{}
	handler := NewPointsHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/api/points/history", "")
	handler.History(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockSvc.calls)
}

func TestPointsHandlerRecord(t *testing.T) {
	mockSvc := &pointsServiceMock{}
	handler := NewPointsHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/api/points/history", `{"student_id":1,"event_id":2,"total_point":10}`)
	handler.Record(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext(http.MethodPost, "/api/points/history", `{"student_id":`)
	handler.Record(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPointsHandlerExport(t *testing.T) {
	mockSvc := &pointsServiceMock{}
	handler := NewPointsHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/api/points/history/export?student_id=1&format=csv", "")
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "points-student-1.csv")
}
