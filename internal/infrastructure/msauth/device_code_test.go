package msauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"teams-meeting-bridge/internal/config"
)

func newIdentityServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/devicecode", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "app-id", r.PostForm.Get("client_id"))
		assert.Equal(t, config.ScopeCalendarsReadWrite, r.PostForm.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"device_code": "device-123",
			"user_code": "ABCD-EFGH",
			"verification_uri": "https://microsoft.com/devicelogin",
			"expires_in": 900,
			"interval": 1
		}`))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "device-123", r.PostForm.Get("device_code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"graph-token","token_type":"Bearer","expires_in":3600}`))
	})
	return httptest.NewServer(mux)
}

func newTestProvider(serverURL string) DeviceCodeProvider {
	return NewDeviceCodeProviderWithEndpoint(
		"app-id",
		[]string{config.ScopeCalendarsReadWrite},
		oauth2.Endpoint{
			DeviceAuthURL: serverURL + "/devicecode",
			TokenURL:      serverURL + "/token",
		},
		zap.NewNop(),
	)
}

func TestStartDeviceFlow(t *testing.T) {
	server := newIdentityServer(t)
	defer server.Close()

	flow, err := newTestProvider(server.URL).StartDeviceFlow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "device-123", flow.DeviceCode)
	assert.Equal(t, "ABCD-EFGH", flow.UserCode)
	assert.Equal(t, "https://microsoft.com/devicelogin", flow.VerificationURI)
	assert.WithinDuration(t, time.Now().Add(900*time.Second), flow.Expiry, 10*time.Second)
}

func TestStartDeviceFlow_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).StartDeviceFlow(context.Background())
	assert.Error(t, err)
}

func TestAwaitToken(t *testing.T) {
	server := newIdentityServer(t)
	defer server.Close()

	provider := newTestProvider(server.URL)
	flow, err := provider.StartDeviceFlow(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	token, err := provider.AwaitToken(ctx, flow)
	require.NoError(t, err)
	assert.Equal(t, "graph-token", token.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.Expiry, 10*time.Second)
}
