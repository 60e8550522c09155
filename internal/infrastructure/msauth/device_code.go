package msauth

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"teams-meeting-bridge/internal/config"
)

// DeviceCodeProvider starts and completes device-code flows against the
// Microsoft identity platform
type DeviceCodeProvider interface {
	// StartDeviceFlow requests a device code and user code for the configured scopes
	StartDeviceFlow(ctx context.Context) (*oauth2.DeviceAuthResponse, error)

	// AwaitToken polls until the user finishes signing in or the code expires
	AwaitToken(ctx context.Context, flow *oauth2.DeviceAuthResponse) (*oauth2.Token, error)
}

type deviceCodeProvider struct {
	oauth  *oauth2.Config
	logger *zap.Logger
}

func NewDeviceCodeProvider(cfg *config.Config, logger *zap.Logger) DeviceCodeProvider {
	return NewDeviceCodeProviderWithEndpoint(
		cfg.Microsoft.ClientID,
		cfg.Microsoft.Scopes,
		microsoft.AzureADEndpoint(cfg.Microsoft.Tenant),
		logger,
	)
}

// NewDeviceCodeProviderWithEndpoint builds a provider against an explicit endpoint.
func NewDeviceCodeProviderWithEndpoint(clientID string, scopes []string, endpoint oauth2.Endpoint, logger *zap.Logger) DeviceCodeProvider {
	// Public client: no secret, so the client id travels in the form body
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &deviceCodeProvider{
		oauth: &oauth2.Config{
			ClientID: clientID,
			Endpoint: endpoint,
			Scopes:   scopes,
		},
		logger: logger,
	}
}

func (p *deviceCodeProvider) StartDeviceFlow(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	p.logger.Info("Requesting device code",
		zap.String("device_auth_url", p.oauth.Endpoint.DeviceAuthURL),
		zap.Strings("scopes", p.oauth.Scopes),
	)

	flow, err := p.oauth.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate device flow: %w", err)
	}

	p.logger.Info("Device code issued",
		zap.String("user_code", flow.UserCode),
		zap.Time("expiry", flow.Expiry),
		zap.Int64("interval", flow.Interval),
	)

	return flow, nil
}

func (p *deviceCodeProvider) AwaitToken(ctx context.Context, flow *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	token, err := p.oauth.DeviceAccessToken(ctx, flow)
	if err != nil {
		return nil, fmt.Errorf("failed to complete device flow: %w", err)
	}
	return token, nil
}
