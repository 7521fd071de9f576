package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

const testToken = "tok-agent"

type fakeIdentity struct {
	ident *model.Identity
	err   error
	calls int
}

func (f *fakeIdentity) Me(_ context.Context, token string) (*model.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.ident, nil
}

type fakeCatalog struct {
	known map[int64]bool
	err   error
}

func (f *fakeCatalog) GetSkill(_ context.Context, id int64) (*model.Skill, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[id] {
		return nil, fmt.Errorf("%w: skill %d", model.ErrNotFound, id)
	}
	return &model.Skill{ID: id, Name: fmt.Sprintf("skill-%d", id), IsActive: true}, nil
}

type fakeRegistry struct {
	agents  map[int64]*model.Agent // by user id
	applied []model.AgentEvent
	tokens  []string
	lookups int
	err     error
}

func (f *fakeRegistry) ApplyEvent(_ context.Context, token string, ev model.AgentEvent) (*model.Agent, error) {
	f.applied = append(f.applied, ev)
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Agent{ID: ev.AgentID}, nil
}

func (f *fakeRegistry) GetAgentByUser(_ context.Context, _ string, userID int64) (*model.Agent, error) {
	f.lookups++
	a, ok := f.agents[userID]
	if !ok {
		return nil, fmt.Errorf("%w: no agent for user %d", model.ErrNotFound, userID)
	}
	return a, nil
}

type fixture struct {
	svc      *Service
	identity *fakeIdentity
	catalog  *fakeCatalog
	registry *fakeRegistry
}

func newFixture() *fixture {
	f := &fixture{
		identity: &fakeIdentity{ident: &model.Identity{ID: "7", Username: "alice", Role: model.RoleAgent}},
		catalog:  &fakeCatalog{known: map[int64]bool{1: true, 2: true}},
		registry: &fakeRegistry{agents: map[int64]*model.Agent{7: {ID: 42, UserID: 7, Name: "alice"}}},
	}
	f.svc = New(Deps{
		Identity: f.identity,
		Catalog:  f.catalog,
		Registry: f.registry,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	f.svc.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestHandleAction_Forwards(t *testing.T) {
	f := newFixture()
	ts := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

	res, err := f.svc.HandleAction(context.Background(), testToken, model.EventCallStarted, ts, []string{"1", "2"})
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.AgentID)
	assert.Equal(t, model.EventCallStarted, res.Action)
	assert.True(t, ts.Equal(res.Timestamp))
	assert.Equal(t, []string{"1", "2"}, res.Skills)

	require.Len(t, f.registry.applied, 1)
	ev := f.registry.applied[0]
	assert.Equal(t, int64(42), ev.AgentID)
	assert.Equal(t, model.EventCallStarted, ev.EventType)
	assert.Equal(t, []string{"1", "2"}, ev.Skills)
	assert.Equal(t, []string{testToken}, f.registry.tokens)
}

func TestHandleAction_NoSkills(t *testing.T) {
	f := newFixture()
	res, err := f.svc.HandleAction(context.Background(), testToken, model.EventStartDoNotDisturb, time.Now(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Skills)
	require.Len(t, f.registry.applied, 1)
}

func TestHandleAction_MissingToken(t *testing.T) {
	f := newFixture()
	_, err := f.svc.HandleAction(context.Background(), "", model.EventCallEnded, time.Now(), nil)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
	assert.Zero(t, f.identity.calls)
	assert.Empty(t, f.registry.applied)
}

func TestHandleAction_IdentityFailuresCollapseToNotFound(t *testing.T) {
	cases := map[string]error{
		"unauthenticated": model.ErrUnauthenticated,
		"unreachable":     fmt.Errorf("%w: dial tcp", model.ErrUnavailable),
		"missing user":    model.ErrNotFound,
	}
	for name, cause := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.identity.err = cause
			_, err := f.svc.HandleAction(context.Background(), testToken, model.EventCallStarted, time.Now(), nil)
			assert.ErrorIs(t, err, model.ErrNotFound)
			assert.Empty(t, f.registry.applied)
		})
	}
}

func TestHandleAction_NoAgentForUser(t *testing.T) {
	f := newFixture()
	f.identity.ident = &model.Identity{ID: "99", Username: "ghost"}
	_, err := f.svc.HandleAction(context.Background(), testToken, model.EventCallStarted, time.Now(), nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, f.registry.applied)
}

func TestHandleAction_InvalidSkillNeverCallsRegistry(t *testing.T) {
	for _, ids := range [][]string{{"1", "99"}, {"abc"}, {"2", ""}} {
		t.Run(fmt.Sprint(ids), func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.HandleAction(context.Background(), testToken, model.EventCallStarted, time.Now(), ids)
			require.ErrorIs(t, err, model.ErrInvalidSkill)
			assert.Contains(t, err.Error(), "does not exist")
			assert.Empty(t, f.registry.applied)
			assert.Zero(t, f.registry.lookups)
		})
	}
}

func TestHandleAction_CatalogFailureIsNotInvalidSkill(t *testing.T) {
	f := newFixture()
	f.catalog.err = errors.New("connection refused")
	_, err := f.svc.HandleAction(context.Background(), testToken, model.EventCallStarted, time.Now(), []string{"1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrInvalidSkill)
	assert.Empty(t, f.registry.applied)
}

func TestHandleAction_RegistryErrorPassesThrough(t *testing.T) {
	f := newFixture()
	f.registry.err = fmt.Errorf("%w: event too old", model.ErrStaleEvent)
	_, err := f.svc.HandleAction(context.Background(), testToken, model.EventCallEnded, time.Now().Add(-2*time.Hour), nil)
	assert.ErrorIs(t, err, model.ErrStaleEvent)
	assert.Len(t, f.registry.applied, 1, "no retry")
}

func TestAdminActivity(t *testing.T) {
	f := newFixture()
	ts := time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC)
	res, err := f.svc.AdminActivity(context.Background(), "tok-admin", 5, model.EventStartDoNotDisturb, ts, []string{" 1 "})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.AgentID)
	assert.Equal(t, []string{"1"}, res.Skills)
	assert.Zero(t, f.identity.calls)
	assert.Zero(t, f.registry.lookups)
}

func TestAdminActivity_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AdminActivity(ctx, "tok-admin", 0, model.EventCallStarted, time.Now(), nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = f.svc.AdminActivity(ctx, "tok-admin", 5, "", time.Now(), nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = f.svc.AdminActivity(ctx, "tok-admin", 5, model.EventCallStarted, time.Now(), []string{"3"})
	assert.ErrorIs(t, err, model.ErrInvalidSkill)

	assert.Empty(t, f.registry.applied)
}

func TestUpdateSkills_PartialEffectIsSuccess(t *testing.T) {
	f := newFixture()
	f.registry.err = &model.SkillsAppliedError{Err: fmt.Errorf("%w: SKILLS_UPDATE", model.ErrUnknownEventType)}

	res, err := f.svc.UpdateSkills(context.Background(), "tok-admin", 5, []string{"2", "1"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.AgentID)
	assert.Equal(t, []string{"2", "1"}, res.UpdatedSkills)

	require.Len(t, f.registry.applied, 1)
	ev := f.registry.applied[0]
	assert.Equal(t, model.EventSkillsUpdate, ev.EventType)
	assert.True(t, ev.Timestamp.Equal(f.svc.now()))
}

func TestUpdateSkills_Failures(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.registry.err = fmt.Errorf("%w: SKILLS_UPDATE", model.ErrUnknownEventType)
	_, err := f.svc.UpdateSkills(ctx, "tok-admin", 5, []string{"1"})
	assert.ErrorIs(t, err, model.ErrUnknownEventType, "without skills_applied the rejection stands")

	f = newFixture()
	f.registry.err = fmt.Errorf("%w: agent 5", model.ErrNotFound)
	_, err = f.svc.UpdateSkills(ctx, "tok-admin", 5, []string{"1"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	f = newFixture()
	_, err = f.svc.UpdateSkills(ctx, "tok-admin", 5, nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Empty(t, f.registry.applied)
}

func TestReady(t *testing.T) {
	svc := New(Deps{Probes: map[string]Probe{
		"database": func(context.Context) error { return nil },
		"registry": func(context.Context) error { return errors.New("connection refused") },
	}})

	checks, ok := svc.Ready(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "ok", checks["database"])
	assert.Equal(t, "connection refused", checks["registry"])

	svc = New(Deps{})
	checks, ok = svc.Ready(context.Background())
	assert.True(t, ok)
	assert.Empty(t, checks)
}
