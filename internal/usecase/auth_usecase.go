package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"teams-meeting-bridge/internal/config"
	"teams-meeting-bridge/internal/domain/apperror"
	"teams-meeting-bridge/internal/domain/entity"
	"teams-meeting-bridge/internal/domain/repository"
	"teams-meeting-bridge/internal/infrastructure/msauth"
)

// UserLocker serializes auth flow initiation per user
type UserLocker interface {
	LockUser(ctx context.Context, userID string) (func(context.Context) error, error)
}

// DeviceFlowPoller completes started device flows in the background
type DeviceFlowPoller interface {
	Start(userID string, flow *oauth2.DeviceAuthResponse)
	Cancel(userID string)
}

type AuthUsecase interface {
	// InitAuth returns authenticated=true for a user holding a valid token,
	// otherwise starts a device-code flow and returns the code to enter
	InitAuth(ctx context.Context, userID string) (*entity.AuthStatus, error)

	// CheckAuthStatus reports whether the stored token is still valid
	CheckAuthStatus(ctx context.Context, userID string) (*entity.AuthStatus, error)

	// Logout removes the token and any pending flow for the user
	Logout(ctx context.Context, userID string) error
}

type authUsecase struct {
	tokens   repository.TokenRepository
	flows    repository.AuthFlowRepository
	provider msauth.DeviceCodeProvider
	poller   DeviceFlowPoller
	locker   UserLocker
	config   *config.Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthUsecase(
	tokens repository.TokenRepository,
	flows repository.AuthFlowRepository,
	provider msauth.DeviceCodeProvider,
	poller DeviceFlowPoller,
	locker UserLocker,
	cfg *config.Config,
	logger *zap.Logger,
) AuthUsecase {
	return &authUsecase{
		tokens:   tokens,
		flows:    flows,
		provider: provider,
		poller:   poller,
		locker:   locker,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (u *authUsecase) InitAuth(ctx context.Context, userID string) (*entity.AuthStatus, error) {
	const op = "auth.init"

	if userID == "" {
		return nil, apperror.InvalidInput(op, "user id is required")
	}

	unlock, err := u.locker.LockUser(ctx, userID)
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			u.logger.Warn("Failed to release auth lock", zap.String("user_id", userID), zap.Error(err))
		}
	}()

	token, err := u.tokens.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}

	if token.ValidAt(u.now()) {
		u.logger.Info("User already authenticated", zap.String("user_id", userID))
		return &entity.AuthStatus{Authenticated: true}, nil
	}

	flow, err := u.provider.StartDeviceFlow(ctx)
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}

	flowData, err := json.Marshal(flow)
	if err != nil {
		return nil, apperror.Upstream(op, fmt.Errorf("failed to encode device flow: %w", err))
	}

	if err := u.flows.Upsert(ctx, userID, flowData); err != nil {
		return nil, apperror.Upstream(op, err)
	}

	u.poller.Start(userID, flow)

	verificationURL := u.config.Microsoft.VerificationURL
	if verificationURL == "" {
		verificationURL = flow.VerificationURI
	}

	u.logger.Info("Device flow started",
		zap.String("user_id", userID),
		zap.String("verification_url", verificationURL),
	)

	return &entity.AuthStatus{
		Authenticated:   false,
		DeviceCode:      flow.UserCode,
		VerificationURL: verificationURL,
	}, nil
}

func (u *authUsecase) CheckAuthStatus(ctx context.Context, userID string) (*entity.AuthStatus, error) {
	const op = "auth.status"

	token, err := u.tokens.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}

	if token == nil {
		return &entity.AuthStatus{Authenticated: false}, nil
	}

	expiresOn := token.ExpiresOn
	return &entity.AuthStatus{
		Authenticated: token.ValidAt(u.now()),
		ExpiresOn:     &expiresOn,
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID string) error {
	const op = "auth.logout"

	u.poller.Cancel(userID)

	if err := u.tokens.DeleteByUserID(ctx, userID); err != nil {
		return apperror.Upstream(op, err)
	}
	if err := u.flows.DeleteByUserID(ctx, userID); err != nil {
		return apperror.Upstream(op, err)
	}

	u.logger.Info("User logged out", zap.String("user_id", userID))
	return nil
}
