package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
	"github.com/IbrahimDoba/CallPlatter-sub001/internal/infrastructure"
	"github.com/IbrahimDoba/CallPlatter-sub001/internal/interfaces"
)

// fakeAgentAPI counts vendor calls and can be told to fail.
type fakeAgentAPI struct {
	createCalls int
	updateCalls int
	deleteCalls int

	createErr error
	updateErr error
	deleteErr error

	lastPayload interfaces.AgentPayload
}

func (f *fakeAgentAPI) CreateAgent(_ context.Context, payload interfaces.AgentPayload) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	f.lastPayload = payload
	return "agent_remote_1", nil
}

func (f *fakeAgentAPI) UpdateAgent(_ context.Context, _ string, payload interfaces.AgentPayload) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.lastPayload = payload
	return nil
}

func (f *fakeAgentAPI) DeleteAgent(_ context.Context, _ string) error {
	f.deleteCalls++
	return f.deleteErr
}

// fakeAgentStore is an in-memory AgentStore. It hands out copies so callers
// cannot mutate stored records behind its back.
type fakeAgentStore struct {
	records   map[string]*entities.AgentRecord
	nextID    int
	createErr error
	updateErr error
}

func newFakeAgentStore() *fakeAgentStore {
	return &fakeAgentStore{records: make(map[string]*entities.AgentRecord)}
}

func (s *fakeAgentStore) GetByBusinessID(_ context.Context, businessID string) (*entities.AgentRecord, error) {
	rec, ok := s.records[businessID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeAgentStore) CreateIfAbsent(_ context.Context, rec *entities.AgentRecord) (bool, *entities.AgentRecord, error) {
	if s.createErr != nil {
		return false, nil, s.createErr
	}
	if existing, ok := s.records[rec.BusinessID]; ok {
		cp := *existing
		return false, &cp, nil
	}
	s.nextID++
	rec.ID = s.nextID
	cp := *rec
	s.records[rec.BusinessID] = &cp
	return true, nil, nil
}

func (s *fakeAgentStore) UpdateSynced(_ context.Context, rec *entities.AgentRecord) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	cp := *rec
	s.records[rec.BusinessID] = &cp
	return nil
}

func (s *fakeAgentStore) Delete(_ context.Context, businessID string) error {
	delete(s.records, businessID)
	return nil
}

type fakeKnowledgeStore struct {
	entries map[string][]entities.KnowledgeEntry
}

func (s *fakeKnowledgeStore) ListActive(_ context.Context, businessID string) ([]entities.KnowledgeEntry, error) {
	return s.entries[businessID], nil
}

type fakeBusinessStore struct {
	businesses map[string]*entities.Business
}

func (s *fakeBusinessStore) GetByID(_ context.Context, id string) (*entities.Business, error) {
	b, ok := s.businesses[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

type testEnv struct {
	svc       *AgentService
	api       *fakeAgentAPI
	store     *fakeAgentStore
	knowledge *fakeKnowledgeStore
}

func newTestEnv() *testEnv {
	api := &fakeAgentAPI{}
	store := newFakeAgentStore()
	knowledge := &fakeKnowledgeStore{entries: make(map[string][]entities.KnowledgeEntry)}
	businesses := &fakeBusinessStore{businesses: map[string]*entities.Business{
		"biz1": {ID: "biz1", Name: "Acme Dental", Description: "A dental clinic", IsActive: true},
	}}
	svc := NewAgentService(api, store, knowledge, businesses, infrastructure.NewBusinessLocker())
	return &testEnv{svc: svc, api: api, store: store, knowledge: knowledge}
}

func createBiz1Agent(t *testing.T, env *testEnv, settings entities.AgentSettings) string {
	t.Helper()
	id, err := env.svc.CreateAgent(context.Background(), "biz1", "Acme Dental", "A dental clinic",
		"rachel", "Hi, thanks for calling Acme!", settings)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func ptr[T any](v T) *T { return &v }

func TestCreateAgentIdempotent(t *testing.T) {
	env := newTestEnv()

	first := createBiz1Agent(t, env, entities.AgentSettings{})

	// Second create, even with different settings, returns the same agent.
	second, err := env.svc.CreateAgent(context.Background(), "biz1", "Acme Dental", "A dental clinic",
		"adam", "Different greeting", entities.AgentSettings{Temperature: ptr(0.9)})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, env.api.createCalls, "exactly one remote create call")
}

func TestCreateAgentMissingRequiredField(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateAgent(context.Background(), "biz1", "", "A dental clinic",
		"rachel", "Hi!", entities.AgentSettings{})
	assert.ErrorIs(t, err, ErrMissingRequiredField)
	assert.Zero(t, env.api.createCalls, "no remote call on incomplete input")
}

func TestCreateAgentRemoteFailure(t *testing.T) {
	env := newTestEnv()
	env.api.createErr = errors.New("status 500: upstream exploded")

	_, err := env.svc.CreateAgent(context.Background(), "biz1", "Acme Dental", "A dental clinic",
		"rachel", "Hi!", entities.AgentSettings{})
	assert.ErrorIs(t, err, ErrRemoteCallFailed)
	assert.Empty(t, env.store.records, "no local record after failed remote create")
}

func TestCreateAgentPersistFailureCleansUpRemote(t *testing.T) {
	env := newTestEnv()
	env.store.createErr = errors.New("connection reset")

	_, err := env.svc.CreateAgent(context.Background(), "biz1", "Acme Dental", "A dental clinic",
		"rachel", "Hi!", entities.AgentSettings{})
	require.Error(t, err)
	assert.Equal(t, 1, env.api.createCalls)
	assert.Equal(t, 1, env.api.deleteCalls, "orphaned remote agent must be cleaned up")
}

func TestUpdateAgentNotFound(t *testing.T) {
	env := newTestEnv()

	err := env.svc.UpdateAgent(context.Background(), "biz1", entities.AgentSettings{Temperature: ptr(0.7)})
	assert.ErrorIs(t, err, ErrAgentNotFound)
	assert.Zero(t, env.api.updateCalls)
}

func TestUpdateAgentNoopSkipsRemoteCall(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{AskForName: ptr(true)})

	// Re-submitting values that merge to the identical effective
	// configuration must not touch the vendor.
	err := env.svc.UpdateAgent(context.Background(), "biz1", entities.AgentSettings{
		AskForName:   ptr(true),
		Temperature:  ptr(0.5), // equals the built-in default already persisted
		FirstMessage: ptr("Hi, thanks for calling Acme!"),
	})
	require.NoError(t, err)
	assert.Zero(t, env.api.updateCalls, "no-op update must skip the remote call")
}

func TestUpdateAgentPartialPreservesUnspecifiedFields(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{
		Temperature: ptr(0.8),
		AskForPhone: ptr(true),
	})

	err := env.svc.UpdateAgent(context.Background(), "biz1", entities.AgentSettings{
		AskForPhone: ptr(false),
	})
	require.NoError(t, err)

	rec := env.store.records["biz1"]
	require.NotNil(t, rec)
	assert.Equal(t, 0.8, rec.Temperature, "temperature must survive unrelated update")
	assert.False(t, rec.AskForPhone)
	assert.Equal(t, 1, env.api.updateCalls)
}

func TestUpdateAgentFailedRemoteLeavesStateUntouched(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{AskForName: ptr(true)})

	before := *env.store.records["biz1"]

	env.api.updateErr = errors.New("status 503: try later")
	err := env.svc.UpdateAgent(context.Background(), "biz1", entities.AgentSettings{
		Temperature: ptr(0.9),
	})
	assert.ErrorIs(t, err, ErrRemoteCallFailed)

	after := *env.store.records["biz1"]
	assert.Equal(t, before, after, "failed remote update must not change the persisted record")
}

func TestUpdateAgentKeepsVoiceWhenSelectorAbsent(t *testing.T) {
	env := newTestEnv()

	// Seed with a passthrough voice id that no registry lookup would produce.
	_, err := env.svc.CreateAgent(context.Background(), "biz1", "Acme Dental", "A dental clinic",
		"Smxkoz0xiOoHo5WcSskf", "Hi!", entities.AgentSettings{})
	require.NoError(t, err)

	err = env.svc.UpdateAgent(context.Background(), "biz1", entities.AgentSettings{Temperature: ptr(0.9)})
	require.NoError(t, err)

	rec := env.store.records["biz1"]
	assert.Equal(t, "Smxkoz0xiOoHo5WcSskf", rec.VoiceID, "voice must not be re-resolved without a new selector")
}

func TestUpdateAgentVoiceChange(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{})

	err := env.svc.UpdateAgent(context.Background(), "biz1", entities.AgentSettings{
		VoiceSelector: ptr("adam"),
	})
	require.NoError(t, err)

	rec := env.store.records["biz1"]
	assert.Equal(t, "adam", rec.VoiceName)
	assert.Equal(t, "pNInz6obpgDQGcFmaJgB", rec.VoiceID)
	assert.Equal(t, 1, env.api.updateCalls)
}

func TestUpdateAgentExplicitKnowledgeReplacement(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{})

	err := env.svc.UpdateAgent(context.Background(), "biz1", entities.AgentSettings{
		KnowledgeEntries: []entities.KnowledgeEntry{
			{Title: "Hours", Content: "Mon-Fri 9am-5pm"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, env.api.lastPayload.Prompt, "- Hours: Mon-Fri 9am-5pm")
}

func TestUpdateAgentFreshKnowledgeLoad(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{})

	// Knowledge added after creation must show up on the next sync without
	// being part of the update request.
	env.knowledge.entries["biz1"] = []entities.KnowledgeEntry{
		{Title: "Parking", Content: "Free lot behind the building"},
	}

	err := env.svc.UpdateAgent(context.Background(), "biz1", entities.AgentSettings{})
	require.NoError(t, err)
	assert.Equal(t, 1, env.api.updateCalls)
	assert.Contains(t, env.api.lastPayload.Prompt, "- Parking: Free lot behind the building")
}

func TestOnboardingHappyPath(t *testing.T) {
	env := newTestEnv()

	id, err := env.svc.CreateAgent(context.Background(), "biz1", "Acme Dental", "A dental clinic",
		"rachel", "Hi, thanks for calling Acme!", entities.AgentSettings{
			AskForName:  ptr(true),
			AskForPhone: ptr(true),
		})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	callsAfterCreate := env.api.createCalls + env.api.updateCalls + env.api.deleteCalls

	got, err := env.svc.GetAgentID(context.Background(), "biz1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	callsAfterLookup := env.api.createCalls + env.api.updateCalls + env.api.deleteCalls
	assert.Equal(t, callsAfterCreate, callsAfterLookup, "lookup must not incur vendor calls")
}

func TestSettingsChurnCollapsesToOneRemoteCall(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{
		AskForName:  ptr(true),
		AskForPhone: ptr(true),
	})

	require.NoError(t, env.svc.UpdateAgent(context.Background(), "biz1",
		entities.AgentSettings{Temperature: ptr(0.9)}))
	assert.Equal(t, 1, env.api.updateCalls)

	require.NoError(t, env.svc.UpdateAgent(context.Background(), "biz1",
		entities.AgentSettings{Temperature: ptr(0.9)}))
	assert.Equal(t, 1, env.api.updateCalls, "identical re-submission must not PATCH again")
}

func TestDeleteAgent(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{})

	require.NoError(t, env.svc.DeleteAgent(context.Background(), "biz1"))
	assert.Empty(t, env.store.records)
	assert.Equal(t, 1, env.api.deleteCalls)

	err := env.svc.DeleteAgent(context.Background(), "biz1")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestDeleteAgentRemoteFailureStillRemovesLocal(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{})

	env.api.deleteErr = errors.New("status 500: vendor down")
	require.NoError(t, env.svc.DeleteAgent(context.Background(), "biz1"),
		"local teardown proceeds despite remote failure")
	assert.Empty(t, env.store.records)
}

func TestCreateAgentPromptContents(t *testing.T) {
	env := newTestEnv()
	createBiz1Agent(t, env, entities.AgentSettings{
		GoodbyeMessage: ptr("Thanks for calling Acme, goodbye!"),
	})

	prompt := env.api.lastPayload.Prompt
	assert.True(t, strings.Contains(prompt, "A dental clinic"), "business description in prompt")
	assert.True(t, strings.Contains(prompt, "Thanks for calling Acme, goodbye!"), "goodbye override in prompt")
	assert.Equal(t, "Hi, thanks for calling Acme!", env.api.lastPayload.FirstMessage)
	assert.Equal(t, "21m00Tcm4TlvDq8ikWAM", env.api.lastPayload.VoiceID)
	assert.Equal(t, defaultTemperature, env.api.lastPayload.Temperature)
}

func TestConfigHashSensitivity(t *testing.T) {
	base := configHash("prompt", "hello", 0.5, "voice1")

	assert.Equal(t, base, configHash("prompt", "hello", 0.5, "voice1"))
	assert.NotEqual(t, base, configHash("prompt2", "hello", 0.5, "voice1"))
	assert.NotEqual(t, base, configHash("prompt", "hello!", 0.5, "voice1"))
	assert.NotEqual(t, base, configHash("prompt", "hello", 0.51, "voice1"))
	assert.NotEqual(t, base, configHash("prompt", "hello", 0.5, "voice2"))
}
