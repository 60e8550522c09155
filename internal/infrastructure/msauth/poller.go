package msauth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"teams-meeting-bridge/internal/config"
	"teams-meeting-bridge/internal/domain/repository"
)

const (
	// fallbackTokenLifetime applies when the provider omits expires_in
	fallbackTokenLifetime = time.Hour
	saveTimeout           = 10 * time.Second
)

// Poller completes pending device-code flows in the background. Each user
// has at most one running poll; starting a new one cancels the old.
type Poller struct {
	enabled  bool
	provider DeviceCodeProvider
	tokens   repository.TokenRepository
	flows    repository.AuthFlowRepository
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	seq     uint64
	running map[string]pollHandle
}

type pollHandle struct {
	id     uint64
	cancel context.CancelFunc
}

func NewPoller(
	cfg *config.Config,
	provider DeviceCodeProvider,
	tokens repository.TokenRepository,
	flows repository.AuthFlowRepository,
	logger *zap.Logger,
) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		enabled:  cfg.Microsoft.PollDeviceFlow,
		provider: provider,
		tokens:   tokens,
		flows:    flows,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		running:  make(map[string]pollHandle),
	}
}

// Start begins waiting for the user to finish the given flow.
func (p *Poller) Start(userID string, flow *oauth2.DeviceAuthResponse) {
	if !p.enabled || flow == nil {
		return
	}

	ctx, cancel := context.WithCancel(p.ctx)

	p.mu.Lock()
	if prev, ok := p.running[userID]; ok {
		prev.cancel()
	}
	p.seq++
	id := p.seq
	p.running[userID] = pollHandle{id: id, cancel: cancel}
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx, id, userID, flow)
}

// Cancel stops the poll for a user, if any.
func (p *Poller) Cancel(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.running[userID]; ok {
		h.cancel()
		delete(p.running, userID)
	}
}

// Stop cancels every poll and waits for them to exit.
func (p *Poller) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *Poller) forget(userID string, id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.running[userID]; ok && h.id == id {
		h.cancel()
		delete(p.running, userID)
	}
}

func (p *Poller) run(ctx context.Context, id uint64, userID string, flow *oauth2.DeviceAuthResponse) {
	defer p.wg.Done()
	defer p.forget(userID, id)

	token, err := p.provider.AwaitToken(ctx, flow)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			p.logger.Debug("Device flow poll cancelled", zap.String("user_id", userID))
			return
		}
		p.logger.Warn("Device flow did not complete",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}

	// Logged out or superseded while the token was in flight
	if ctx.Err() != nil {
		return
	}

	expiresOn := token.Expiry
	if expiresOn.IsZero() {
		expiresOn = time.Now().Add(fallbackTokenLifetime)
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := p.tokens.Save(saveCtx, userID, token.AccessToken, expiresOn); err != nil {
		p.logger.Error("Failed to store token after device flow",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}

	// A newer flow started for the user in the meantime must survive
	removed, err := p.flows.DeleteByDeviceCode(saveCtx, userID, flow.DeviceCode)
	if err != nil {
		p.logger.Warn("Failed to clear completed auth flow",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	} else if !removed {
		p.logger.Debug("Auth flow already replaced or removed", zap.String("user_id", userID))
	}

	p.logger.Info("Device flow completed",
		zap.String("user_id", userID),
		zap.Time("expires_on", expiresOn),
	)
}

func registerPollerLifecycle(lc fx.Lifecycle, p *Poller) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Stop()
			return nil
		},
	})
}
