package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account and sends the verification code.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		handleError(c, err)
		return
	}

	message := "registered, check your inbox for the verification code"
	if resp.EmailVerified {
		message = "registered"
	}
	response.SuccessWithMessage(c, message, resp)
}

// Login checks email and password and returns a token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "logged in", resp)
}

// VerifyEmail redeems a verification code and signs the user in.
// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.VerifyEmail(req.Code)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "email verified", resp)
}
