package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-activity-api/internal/middleware"
	"github.com/noah-isme/sma-activity-api/internal/models"
	"github.com/noah-isme/sma-activity-api/internal/service"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
	"github.com/noah-isme/sma-activity-api/pkg/response"
)

type pointsService interface {
	StudentTotal(ctx context.Context, studentID int64) (*models.StudentTotal, bool, error)
	History(ctx context.Context, studentID int64) ([]models.PointsHistoryRecord, error)
	Record(ctx context.Context, req models.CreatePointsRequest) (*models.PointsHistoryRecord, error)
	Export(ctx context.Context, studentID int64, format string) (*service.ExportFile, error)
}

// PointsHandler exposes the points ledger and aggregate endpoints.
type PointsHandler struct {
	service pointsService
}

// NewPointsHandler constructs a PointsHandler.
func NewPointsHandler(svc pointsService) *PointsHandler {
	return &PointsHandler{service: svc}
}

// StudentTotal godoc
// @Summary Total points for a student
// @Description Sum of total_point over every history record of the student. Unknown students total 0.
// @Tags Points
// @Produce json
// @Param student_id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /points/student/{student_id}/total [get]
func (h *PointsHandler) StudentTotal(c *gin.Context) {
	studentID, err := parseID(c, "student_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	total, hit, err := h.service.StudentTotal(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, total, middleware.ExtractMeta(c))
}

// History godoc
// @Summary Points history
// @Tags Points
// @Produce json
// @Param student_id query int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /points/history [get]
func (h *PointsHandler) History(c *gin.Context) {
	studentID, ok := requiredStudent(c)
	if !ok {
		return
	}
	records, err := h.service.History(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Record godoc
// @Summary Record points
// @Tags Points
// @Accept json
// @Produce json
// @Param payload body models.CreatePointsRequest true "Points payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /points/history [post]
func (h *PointsHandler) Record(c *gin.Context) {
	var req models.CreatePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	record, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record, "points recorded")
}

// Export godoc
// @Summary Export points history
// @Tags Points
// @Produce octet-stream
// @Param student_id query int true "Student ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /points/history/export [get]
func (h *PointsHandler) Export(c *gin.Context) {
	studentID, ok := requiredStudent(c)
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), studentID, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}

func requiredStudent(c *gin.Context) (int64, bool) {
	id, err := queryID(c, "student_id")
	if err != nil {
		response.Error(c, err)
		return 0, false
	}
	if id == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id is required"))
		return 0, false
	}
	return *id, true
}
