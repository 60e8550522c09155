package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"teams-meeting-bridge/internal/domain/entity"
	"teams-meeting-bridge/internal/domain/repository"
)

type LogHandler struct {
	logRepo repository.APILogRepository
	logger  *zap.Logger
}

func NewLogHandler(logRepo repository.APILogRepository, logger *zap.Logger) *LogHandler {
	return &LogHandler{logRepo: logRepo, logger: logger}
}

// GetLogs returns recent Graph API call logs for one user
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return errorJSON(c, fiber.StatusBadRequest, msgUserIDRequired)
	}

	logs, err := h.logRepo.FindByUserID(c.UserContext(), userID, c.QueryInt("limit", 50))
	if err != nil {
		h.logger.Error("Failed to load API logs", zap.String("user_id", userID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to load logs")
	}

	if logs == nil {
		logs = []entity.APILog{}
	}
	return c.JSON(entity.DataResponse{Data: logs})
}
