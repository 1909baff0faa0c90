package connections

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ABBA-DALHATU/football-network-app/internal/notifications"
	"github.com/ABBA-DALHATU/football-network-app/internal/users"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
	pkgerrors "github.com/ABBA-DALHATU/football-network-app/pkg/errors"
)

type recordingEmitter struct {
	events []notifications.Event
}

func (r *recordingEmitter) Emit(_ context.Context, event notifications.Event) {
	r.events = append(r.events, event)
}

type fakeMutualCache struct {
	store map[string]string
}

func newFakeMutualCache() *fakeMutualCache {
	return &fakeMutualCache{store: map[string]string{}}
}

func (f *fakeMutualCache) Get(_ context.Context, key string) (string, error) {
	v, ok := f.store[key]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *fakeMutualCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.store[key] = value.(string)
	return nil
}

func (f *fakeMutualCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.store, key)
	}
	return nil
}

func (f *fakeMutualCache) MutualCountKey(pairKey string) string {
	return "mutual:" + pairKey
}

type connFixture struct {
	svc     Service
	repo    *Repository
	users   *users.Repository
	emitter *recordingEmitter
	cache   *fakeMutualCache
	db      *gorm.DB
}

func newConnFixture(t *testing.T) *connFixture {
	t.Helper()
	db := setupConnectionsTestDB(t)
	repo := NewRepository(db)
	userRepo := users.NewRepository(db)
	emitter := &recordingEmitter{}
	cache := newFakeMutualCache()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Users:    userRepo,
		Notifier: emitter,
		Cache:    cache,
	})
	require.NoError(t, err)
	return &connFixture{svc: svc, repo: repo, users: userRepo, emitter: emitter, cache: cache, db: db}
}

func TestService_SendRequest_HappyPath(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	sender := seedDirectoryUser(t, f.db, "Sender One")
	receiver := seedDirectoryUser(t, f.db, "Receiver One")

	dto, err := f.svc.SendRequest(ctx, sender, receiver)
	require.NoError(t, err)
	assert.Equal(t, enums.ConnectionStatusPending, dto.Status)
	assert.Equal(t, sender, dto.SenderID)

	require.Len(t, f.emitter.events, 1)
	assert.Equal(t, receiver, f.emitter.events[0].UserID)
	assert.Equal(t, enums.NotificationTypeConnectionRequest, f.emitter.events[0].Type)
	assert.Contains(t, f.emitter.events[0].Content, "Sender One")
}

func TestService_SendRequest_RejectsSelf(t *testing.T) {
	f := newConnFixture(t)
	me := seedDirectoryUser(t, f.db, "Me")

	_, err := f.svc.SendRequest(context.Background(), me, me)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestService_SendRequest_ReceiverMustExist(t *testing.T) {
	f := newConnFixture(t)
	me := seedDirectoryUser(t, f.db, "Me")

	_, err := f.svc.SendRequest(context.Background(), me, uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestService_SendRequest_ConflictsOnPendingAndAccepted(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	a := seedDirectoryUser(t, f.db, "A")
	b := seedDirectoryUser(t, f.db, "B")

	first, err := f.svc.SendRequest(ctx, a, b)
	require.NoError(t, err)

	// duplicate while pending, in either direction
	_, err = f.svc.SendRequest(ctx, b, a)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	_, err = f.svc.Respond(ctx, b, first.ID, true)
	require.NoError(t, err)

	_, err = f.svc.SendRequest(ctx, a, b)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestService_SendRequest_ReopensRejectedEdge(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	a := seedDirectoryUser(t, f.db, "A")
	b := seedDirectoryUser(t, f.db, "B")

	first, err := f.svc.SendRequest(ctx, a, b)
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, b, first.ID, false)
	require.NoError(t, err)

	// b can now initiate a fresh request on the same edge
	reopened, err := f.svc.SendRequest(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, first.ID, reopened.ID)
	assert.Equal(t, enums.ConnectionStatusPending, reopened.Status)
	assert.Equal(t, b, reopened.SenderID)
	assert.Equal(t, a, reopened.ReceiverID)
}

func TestService_Respond_ReceiverOnly(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	a := seedDirectoryUser(t, f.db, "A")
	b := seedDirectoryUser(t, f.db, "B")

	dto, err := f.svc.SendRequest(ctx, a, b)
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, a, dto.ID, true)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestService_Respond_AcceptNotifiesSender(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	a := seedDirectoryUser(t, f.db, "Alice Sender")
	b := seedDirectoryUser(t, f.db, "Bob Receiver")

	dto, err := f.svc.SendRequest(ctx, a, b)
	require.NoError(t, err)

	accepted, err := f.svc.Respond(ctx, b, dto.ID, true)
	require.NoError(t, err)
	assert.Equal(t, enums.ConnectionStatusAccepted, accepted.Status)

	require.Len(t, f.emitter.events, 2)
	last := f.emitter.events[1]
	assert.Equal(t, a, last.UserID)
	assert.Equal(t, enums.NotificationTypeConnectionAccepted, last.Type)
	assert.Contains(t, last.Content, "Bob Receiver")
}

func TestService_Respond_AlreadyResolved(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	a := seedDirectoryUser(t, f.db, "A")
	b := seedDirectoryUser(t, f.db, "B")

	dto, err := f.svc.SendRequest(ctx, a, b)
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, b, dto.ID, false)
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, b, dto.ID, true)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestService_Cancel_SenderOnlyAndPendingOnly(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	a := seedDirectoryUser(t, f.db, "A")
	b := seedDirectoryUser(t, f.db, "B")

	dto, err := f.svc.SendRequest(ctx, a, b)
	require.NoError(t, err)

	err = f.svc.Cancel(ctx, b, dto.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	require.NoError(t, f.svc.Cancel(ctx, a, dto.ID))

	err = f.svc.Cancel(ctx, a, dto.ID)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestService_Remove_PartyOnlyThenReconnectAllowed(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	a := seedDirectoryUser(t, f.db, "A")
	b := seedDirectoryUser(t, f.db, "B")
	c := seedDirectoryUser(t, f.db, "C")

	dto, err := f.svc.SendRequest(ctx, a, b)
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, b, dto.ID, true)
	require.NoError(t, err)

	err = f.svc.Remove(ctx, c, dto.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	require.NoError(t, f.svc.Remove(ctx, b, dto.ID))

	// removed edge is gone, the pair can start over
	fresh, err := f.svc.SendRequest(ctx, a, b)
	require.NoError(t, err)
	assert.NotEqual(t, dto.ID, fresh.ID)
	assert.Equal(t, enums.ConnectionStatusPending, fresh.Status)
}

func TestService_List_IncludesProfilesAndMutualCounts(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	me := seedDirectoryUser(t, f.db, "Me")
	friend := seedDirectoryUser(t, f.db, "Friend")
	shared := seedDirectoryUser(t, f.db, "Shared")

	acceptEdge(t, f.repo, me, friend)
	acceptEdge(t, f.repo, me, shared)
	acceptEdge(t, f.repo, friend, shared)

	list, err := f.svc.List(ctx, me)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byName := map[string]ConnectionWithUserDTO{}
	for _, item := range list {
		byName[item.User.FullName] = item
	}
	require.Contains(t, byName, "Friend")
	assert.Equal(t, int64(1), byName["Friend"].MutualCount)
	assert.Equal(t, enums.ConnectionStatusAccepted, byName["Friend"].Status)
}

func TestService_Requests_Directions(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	me := seedDirectoryUser(t, f.db, "Me")
	other := seedDirectoryUser(t, f.db, "Other")

	_, err := f.svc.SendRequest(ctx, other, me)
	require.NoError(t, err)

	incoming, err := f.svc.Requests(ctx, me, DirectionIncoming)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "Other", incoming[0].User.FullName)

	outgoing, err := f.svc.Requests(ctx, me, DirectionOutgoing)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	_, err = f.svc.Requests(ctx, me, RequestDirection("sideways"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestService_MutualCount_UsesAndInvalidatesCache(t *testing.T) {
	f := newConnFixture(t)
	ctx := context.Background()
	me := seedDirectoryUser(t, f.db, "Me")
	other := seedDirectoryUser(t, f.db, "Other")
	shared := seedDirectoryUser(t, f.db, "Shared")

	acceptEdge(t, f.repo, me, shared)
	acceptEdge(t, f.repo, other, shared)

	count, err := f.svc.MutualCount(ctx, me, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, f.cache.store, 1)

	// poison the cache to prove the hit path is used
	for key := range f.cache.store {
		f.cache.store[key] = "42"
	}
	count, err = f.svc.MutualCount(ctx, me, other)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)

	// accepting an edge between the pair invalidates their cached count
	dto, err := f.svc.SendRequest(ctx, me, other)
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, other, dto.ID, true)
	require.NoError(t, err)
	assert.Empty(t, f.cache.store)
}
