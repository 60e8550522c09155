package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"teams-meeting-bridge/internal/domain/entity"
	"teams-meeting-bridge/internal/usecase"
)

const (
	msgMissingFields       = "Missing required fields"
	msgMeetingCreateFailed = "Failed to create meeting"
)

type MeetingHandler struct {
	usecase usecase.MeetingUsecase
	logger  *zap.Logger
}

func NewMeetingHandler(usecase usecase.MeetingUsecase, logger *zap.Logger) *MeetingHandler {
	return &MeetingHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// CreateMeeting godoc
// @Summary Create a Teams meeting
// @Description Creates an online meeting on the user's calendar and returns
// @Description the Microsoft Graph event as-is. Attachments are accepted but not uploaded.
// @Tags meetings
// @Accept json
// @Produce json
// @Param request body entity.CreateMeetingRequest true "Meeting details"
// @Success 200 {object} object
// @Failure 400 {object} entity.ErrorResponse
// @Failure 500 {object} entity.ErrorResponse
// @Router /api/meetings [post]
func (h *MeetingHandler) CreateMeeting(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req entity.CreateMeetingRequest
	if err := c.BodyParser(&req); err != nil || req.MissingRequired() {
		return errorJSON(c, fiber.StatusBadRequest, msgMissingFields)
	}

	event, err := h.usecase.CreateMeeting(ctx, req.UserID, &entity.MeetingDetails{
		Subject:   req.Subject,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Attendees: req.Attendees,
		Body:      req.Body,
	})
	if err != nil {
		h.logger.Error("Meeting creation error",
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		code := statusFor(err)
		if code == fiber.StatusBadRequest {
			return errorJSON(c, code, msgMissingFields)
		}
		return errorJSON(c, code, msgMeetingCreateFailed)
	}

	c.Type("json")
	return c.Send(event)
}
