package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"teams-meeting-bridge/internal/domain/entity"
)

type fakeTokenRepo struct {
	mu      sync.Mutex
	tokens  map[string]*entity.MSToken
	findErr error
	writes  int
	deletes int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*entity.MSToken)}
}

func (r *fakeTokenRepo) FindByUserID(ctx context.Context, userID string) (*entity.MSToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.tokens[userID], nil
}

func (r *fakeTokenRepo) Save(ctx context.Context, userID, accessToken string, expiresOn time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	r.tokens[userID] = &entity.MSToken{UserID: userID, AccessToken: accessToken, ExpiresOn: expiresOn}
	return nil
}

func (r *fakeTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	delete(r.tokens, userID)
	return nil
}

type fakeFlowRepo struct {
	mu        sync.Mutex
	flows     map[string][]byte
	upsertErr error
	writes    int
}

func newFakeFlowRepo() *fakeFlowRepo {
	return &fakeFlowRepo{flows: make(map[string][]byte)}
}

func (r *fakeFlowRepo) get(userID string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flows[userID]
}

func (r *fakeFlowRepo) Upsert(ctx context.Context, userID string, flowData []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.writes++
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

	var stored struct {
		DeviceCode string `json:"device_code"`
	}
	data, ok := r.flows[userID]
	if !ok || json.Unmarshal(data, &stored) != nil || stored.DeviceCode != deviceCode {
		return false, nil
	}
	delete(r.flows, userID)
	return true, nil
}

type fakeProvider struct {
	flow  *oauth2.DeviceAuthResponse
	err   error
	calls int
}

func (p *fakeProvider) StartDeviceFlow(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.flow, nil
}

func (p *fakeProvider) AwaitToken(ctx context.Context, flow *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakePoller struct {
	started   []string
	cancelled []string
}

func (p *fakePoller) Start(userID string, flow *oauth2.DeviceAuthResponse) {
	p.started = append(p.started, userID)
}

func (p *fakePoller) Cancel(userID string) {
	p.cancelled = append(p.cancelled, userID)
}

type fakeLocker struct {
	err      error
	locked   int
	released int
}

func (l *fakeLocker) LockUser(ctx context.Context, userID string) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type fakeGraph struct {
	response json.RawMessage
	err      error
	calls    int
	token    string
	event    *entity.GraphEvent
}

func (g *fakeGraph) CreateEvent(ctx context.Context, userID, accessToken string, event *entity.GraphEvent) (json.RawMessage, error) {
	g.calls++
	g.token = accessToken
	g.event = event
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}
