package usecase

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"teams-meeting-bridge/internal/domain/apperror"
	"teams-meeting-bridge/internal/domain/entity"
	"teams-meeting-bridge/internal/domain/repository"
	"teams-meeting-bridge/internal/infrastructure/msgraph"
)

const (
	attendeeTypeRequired  = "required"
	onlineMeetingProvider = "teamsForBusiness"
)

type MeetingUsecase interface {
	// CreateMeeting creates a Teams meeting on the user's calendar and
	// returns the Graph event unchanged
	CreateMeeting(ctx context.Context, userID string, details *entity.MeetingDetails) (json.RawMessage, error)
}

type meetingUsecase struct {
	tokens repository.TokenRepository
	graph  msgraph.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewMeetingUsecase(tokens repository.TokenRepository, graph msgraph.Client, logger *zap.Logger) MeetingUsecase {
	return &meetingUsecase{
		tokens: tokens,
		graph:  graph,
		logger: logger,
		now:    time.Now,
	}
}

func (u *meetingUsecase) CreateMeeting(ctx context.Context, userID string, details *entity.MeetingDetails) (json.RawMessage, error) {
	const op = "meeting.create"

	if userID == "" || details == nil || details.Subject == "" || details.StartTime == "" ||
		details.EndTime == "" || details.Attendees == nil {
		return nil, apperror.InvalidInput(op, "missing required fields")
	}

	token, err := u.tokens.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}
	if token == nil {
		return nil, apperror.Unauthenticated(op, "user not authenticated")
	}
	if !token.ValidAt(u.now()) {
		return nil, apperror.Unauthenticated(op, "access token expired")
	}

	u.logger.Info("Creating meeting",
		zap.String("user_id", userID),
		zap.String("subject", details.Subject),
		zap.Int("attendees", len(details.Attendees)),
	)

	event, err := u.graph.CreateEvent(ctx, userID, token.AccessToken, BuildGraphEvent(details))
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}

	return event, nil
}

// BuildGraphEvent maps meeting details onto a Teams-enabled Graph event.
func BuildGraphEvent(details *entity.MeetingDetails) *entity.GraphEvent {
	attendees := make([]entity.GraphAttendee, 0, len(details.Attendees))
	for _, email := range details.Attendees {
		attendees = append(attendees, entity.GraphAttendee{
			EmailAddress: entity.GraphEmailAddress{Address: email},
			Type:         attendeeTypeRequired,
		})
	}

	return &entity.GraphEvent{
		Subject: details.Subject,
		Start:   entity.GraphDateTime{DateTime: details.StartTime, TimeZone: "UTC"},
		End:     entity.GraphDateTime{DateTime: details.EndTime, TimeZone: "UTC"},
		Body: entity.GraphItemBody{
			ContentType: "HTML",
			Content:     details.Body,
		},
		Attendees:             attendees,
		IsOnlineMeeting:       true,
		OnlineMeetingProvider: onlineMeetingProvider,
	}
}
