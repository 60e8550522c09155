package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"teams-meeting-bridge/internal/domain/entity"
	"teams-meeting-bridge/internal/usecase"
)

const (
	msgUserIDRequired   = "User ID is required"
	msgAuthInitFailed   = "Authentication initialization failed"
	msgAuthStatusFailed = "Failed to check auth status"
	msgLogoutFailed     = "Logout failed"
	msgLoggedOut        = "Logged out successfully"
)

type AuthHandler struct {
	usecase usecase.AuthUsecase
	logger  *zap.Logger
}

func NewAuthHandler(usecase usecase.AuthUsecase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// InitAuth godoc
// @Summary Start Microsoft authentication
// @Description Returns authenticated=true when the user already holds a valid token.
//
//	Otherwise starts a device-code flow and returns the code the user enters
//	at the verification URL.
//
// @Tags auth
// @Accept json
// @Produce json
// @Param request body entity.InitAuthRequest true "User to authenticate"
// @Success 200 {object} entity.AuthStatus
// @Failure 400 {object} entity.ErrorResponse
// @Failure 500 {object} entity.ErrorResponse
// @Router /api/auth/init [post]
func (h *AuthHandler) InitAuth(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req entity.InitAuthRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return errorJSON(c, fiber.StatusBadRequest, msgUserIDRequired)
	}

	status, err := h.usecase.InitAuth(ctx, req.UserID)
	if err != nil {
		h.logger.Error("Auth initialization error",
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		code := statusFor(err)
		if code == fiber.StatusBadRequest {
			return errorJSON(c, code, msgUserIDRequired)
		}
		return errorJSON(c, code, msgAuthInitFailed)
	}

	return c.JSON(status)
}

// CheckStatus godoc
// @Summary Check authentication status
// @Tags auth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} entity.AuthStatus
// @Failure 500 {object} entity.ErrorResponse
// @Router /api/auth/status/{userId} [get]
func (h *AuthHandler) CheckStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")

	status, err := h.usecase.CheckAuthStatus(c.UserContext(), userID)
	if err != nil {
		h.logger.Error("Auth status check error",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return errorJSON(c, fiber.StatusInternalServerError, msgAuthStatusFailed)
	}

	return c.JSON(status)
}

// Logout godoc
// @Summary Remove stored credentials for a user
// @Tags auth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} entity.MessageResponse
// @Failure 500 {object} entity.ErrorResponse
// @Router /api/auth/logout/{userId} [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID := c.Params("userId")

	if err := h.usecase.Logout(c.UserContext(), userID); err != nil {
		h.logger.Error("Logout error",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return errorJSON(c, fiber.StatusInternalServerError, msgLogoutFailed)
	}

	return c.JSON(entity.NewMessageResponse(msgLoggedOut))
}
