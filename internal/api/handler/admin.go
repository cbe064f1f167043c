package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/service"
)

type AdminHandler struct {
	adminService        *service.AdminService
	subscriptionService *service.SubscriptionService
	attendanceService   *service.AttendanceService
}

func NewAdminHandler(
	adminService *service.AdminService,
	subscriptionService *service.SubscriptionService,
	attendanceService *service.AttendanceService,
) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		subscriptionService: subscriptionService,
		attendanceService:   attendanceService,
	}
}

// ListUsers pages through users, optionally filtered by tier or search text.
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q dto.UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	users, total, err := h.adminService.ListUsers(&q)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessPage(c, total, q.Page, q.PageSize, users)
}

// SetTier grants a tier for a number of days, or indefinitely.
// PUT /api/v1/admin/users/:id/tier
func (h *AdminHandler) SetTier(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SetTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.adminService.SetUserTier(adminID, userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "tier updated", user)
}

// SetRole promotes or demotes a user.
// PUT /api/v1/admin/users/:id/role
func (h *AdminHandler) SetRole(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.adminService.SetRole(adminID, userID, req.Role)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "role updated", user)
}

// SetAutoDowngrade controls whether reconciliation may downgrade the user.
// PUT /api/v1/admin/users/:id/auto-downgrade
func (h *AdminHandler) SetAutoDowngrade(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SetAutoDowngradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.adminService.SetAutoDowngrade(userID, *req.Enabled); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"user_id": userID, "auto_downgrade_enabled": *req.Enabled})
}

// RunReconcile triggers subscription reconciliation now.
// POST /api/v1/admin/jobs/reconcile
func (h *AdminHandler) RunReconcile(c *gin.Context) {
	result, err := h.subscriptionService.ReconcileExpired(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, result)
}

// RunAutoAttendance marks registrations for finished events now.
// POST /api/v1/admin/jobs/auto-attendance
func (h *AdminHandler) RunAutoAttendance(c *gin.Context) {
	result, err := h.attendanceService.AutoMarkAttendance(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, result)
}

// Stats returns the dashboard counters.
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats()
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, stats)
}
