package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-activity-api/internal/models"
	"github.com/noah-isme/sma-activity-api/pkg/response"
)

type registrationService interface {
	Register(ctx context.Context, eventID int64, req models.RegisterRequest) (*models.Registration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error)
	Remove(ctx context.Context, id int64) error
	RecordAttendance(ctx context.Context, id int64, req models.AttendanceRequest) (*models.Registration, error)
}

// RegistrationHandler exposes event registration and attendance endpoints.
type RegistrationHandler struct {
	service registrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc registrationService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param event_id query int false "Event ID"
// @Param student_id query int false "Student ID"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	var filter models.RegistrationFilter
	var err error
	if filter.EventID, err = queryID(c, "event_id"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.StudentID, err = queryID(c, "student_id"); err != nil {
		response.Error(c, err)
		return
	}

	regs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs)
}

// Register godoc
// @Summary Register a student for an event
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /registrations/{id}/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	eventID, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	reg, err := h.service.Register(c.Request.Context(), eventID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg, "registered")
}

// Remove godoc
// @Summary Remove a registration
// @Tags Registrations
// @Param id path int true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{id} [delete]
func (h *RegistrationHandler) Remove(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "registration removed")
}

// RecordAttendance godoc
// @Summary Record attendance
// @Description Overwrites is_participated, is_volunteer, extra_point and recorded_by. Omitted optional fields reset to false, 0 and null.
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path int true "Registration ID"
// @Param payload body models.AttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{id}/attendance [put]
func (h *RegistrationHandler) RecordAttendance(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	reg, err := h.service.RecordAttendance(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg)
}
