package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/hatch_server/internal/api/middleware"
	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/service"
)

// handleError maps service errors onto response codes. Anything it does not
// recognize is logged and reported as a server error without details.
func handleError(c *gin.Context, err error) {
	var (
		validation *service.ValidationError
		conflict   *service.ConflictError
		notFound   *service.NotFoundError
		partial    *service.PartialFailureError
	)

	switch {
	case errors.As(err, &partial):
		zap.L().Error("partial failure", zap.String("path", c.FullPath()), zap.Error(err))
		response.ServerError(c, partial.Error())
	case errors.As(err, &validation):
		response.ParamError(c, validation.Error())
	case errors.As(err, &conflict):
		response.DuplicateError(c, conflict.Error())
	case errors.As(err, &notFound):
		response.NotFoundError(c, notFound.Error())
	case errors.Is(err, service.ErrPermission):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrQuotaExceeded):
		response.QuotaError(c, err.Error())
	case errors.Is(err, service.ErrEmailExists), errors.Is(err, service.ErrUsernameExists):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrEmailNotVerified):
		response.AuthError(c, err.Error())
	case errors.Is(err, service.ErrInvalidVerifyCode):
		response.ParamError(c, err.Error())
	default:
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.ServerError(c, "")
	}
}

// currentUser reads the authenticated user id, writing an auth error when absent.
func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
	}
	return userID, ok
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
