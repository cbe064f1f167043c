package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/service"
)

type UserHandler struct {
	userService         *service.UserService
	subscriptionService *service.SubscriptionService
	attendanceService   *service.AttendanceService
}

func NewUserHandler(
	userService *service.UserService,
	subscriptionService *service.SubscriptionService,
	attendanceService *service.AttendanceService,
) *UserHandler {
	return &UserHandler{
		userService:         userService,
		subscriptionService: subscriptionService,
		attendanceService:   attendanceService,
	}
}

// GetProfile returns the caller's profile.
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, profile)
}

// UpdateProfile applies a partial profile update.
// PUT /api/v1/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "profile updated", profile)
}

// GetSubscription describes the caller's current plan.
// GET /api/v1/user/subscription
func (h *UserHandler) GetSubscription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	info, err := h.subscriptionService.GetSubscription(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, info)
}

// GetStats returns the caller's attendance counters.
// GET /api/v1/user/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.attendanceService.Stats(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, stats)
}
