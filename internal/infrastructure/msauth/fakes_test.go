package msauth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"teams-meeting-bridge/internal/domain/entity"
)

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.MSToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*entity.MSToken)}
}

func (r *fakeTokenRepo) FindByUserID(ctx context.Context, userID string) (*entity.MSToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[userID], nil
}

func (r *fakeTokenRepo) Save(ctx context.Context, userID, accessToken string, expiresOn time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[userID] = &entity.MSToken{UserID: userID, AccessToken: accessToken, ExpiresOn: expiresOn}
	return nil
}

func (r *fakeTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, userID)
	return nil
}

func (r *fakeTokenRepo) get(userID string) *entity.MSToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[userID]
}

type fakeFlowRepo struct {
	mu    sync.Mutex
	flows map[string][]byte
}

func newFakeFlowRepo() *fakeFlowRepo {
	return &fakeFlowRepo{flows: make(map[string][]byte)}
}

func (r *fakeFlowRepo) Upsert(ctx context.Context, userID string, flowData []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[userID] = flowData
	return nil
}

func (r *fakeFlowRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flows, userID)
	return nil
}

func (r *fakeFlowRepo) DeleteByDeviceCode(ctx context.Context, userID, deviceCode string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stored oauth2.DeviceAuthResponse
	data, ok := r.flows[userID]
	if !ok || json.Unmarshal(data, &stored) != nil || stored.DeviceCode != deviceCode {
		return false, nil
	}
	delete(r.flows, userID)
	return true, nil
}

func (r *fakeFlowRepo) has(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.flows[userID]
	return ok
}

// scriptedProvider returns tokens keyed by device code; codes without a
// token block until the context ends.
type scriptedProvider struct {
	mu     sync.Mutex
	tokens map[string]*oauth2.Token
	awaits int
}

func (p *scriptedProvider) StartDeviceFlow(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	return &oauth2.DeviceAuthResponse{DeviceCode: "dc", UserCode: "UC"}, nil
}

func (p *scriptedProvider) AwaitToken(ctx context.Context, flow *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	p.mu.Lock()
	p.awaits++
	tok := p.tokens[flow.DeviceCode]
	p.mu.Unlock()

	if tok != nil {
		return tok, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (p *scriptedProvider) awaitCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.awaits
}
