package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/service"
)

type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Register signs the caller up for an event. Repeating it is harmless.
// POST /api/v1/events/:id/register
func (h *AttendanceHandler) Register(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reg, err := h.attendanceService.Register(userID, eventID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, reg)
}

// ConfirmAttendance records whether the caller attended.
// POST /api/v1/events/:id/attendance
func (h *AttendanceHandler) ConfirmAttendance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ConfirmAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	reg, err := h.attendanceService.ConfirmAttendance(userID, eventID, *req.Attended)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, reg)
}

// ListRegistrations returns the caller's registrations with their events.
// GET /api/v1/registrations
func (h *AttendanceHandler) ListRegistrations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	regs, err := h.attendanceService.ListMine(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"registrations": regs})
}

// AddPastEvent records an event attended outside the catalog.
// POST /api/v1/past-events
func (h *AttendanceHandler) AddPastEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.AddPastEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	pe, err := h.attendanceService.AddPastEvent(userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "past event added", pe)
}

// ListPastEvents returns the caller's manually recorded events.
// GET /api/v1/past-events
func (h *AttendanceHandler) ListPastEvents(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.attendanceService.ListPastEvents(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"past_events": list})
}
