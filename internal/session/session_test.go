package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/taskstore"
)

// fakeAuth is an in-memory AuthBackend.
type fakeAuth struct {
	mu        sync.Mutex
	sess      *Session
	signInErr error
	signOuts  int
	resets    []string
}

func (f *fakeAuth) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sess = &Session{ID: "user-1", Name: name, Email: email, CreatedAt: time.Now()}
	out := *f.sess
	return &out, nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.sess = &Session{ID: "user-1", Name: "Test", Email: email, CreatedAt: time.Now()}
	out := *f.sess
	return &out, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return nil
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, patch ProfilePatch) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := *f.sess
	if patch.Name != nil {
		out.Name = *patch.Name
	}
	if patch.ProfilePictureURL != nil {
		out.ProfilePictureURL = *patch.ProfilePictureURL
	}
	f.sess = &out
	copied := out
	return &copied, nil
}

func (f *fakeAuth) ResetPasswordRequest(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, email)
	return nil
}

// fakeTaskBackend serves a fixed task list for any owner.
type fakeTaskBackend struct {
	tasks []models.Task
}

func (f *fakeTaskBackend) ListTasks(ctx context.Context) ([]models.Task, error) {
	out := make([]models.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeTaskBackend) InsertTask(ctx context.Context, draft taskstore.Draft) (*models.Task, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTaskBackend) UpdateTask(ctx context.Context, id string, patch taskstore.Patch) (*models.Task, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTaskBackend) DeleteTask(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

// fakeFeedSource counts subscriptions and teardowns.
type fakeFeedSource struct {
	mu    sync.Mutex
	subs  int
	stops int
}

func (f *fakeFeedSource) Subscribe(ctx context.Context, onEvent func(models.ChangeEvent)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stops++
	}, nil
}

type memBlob struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemBlob() *memBlob { return &memBlob{values: make(map[string][]byte)} }

func (b *memBlob) Get(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *memBlob) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = append([]byte(nil), value...)
	return nil
}

func (b *memBlob) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}

func newBackedHolder(t *testing.T) (*Holder, *fakeAuth, *taskstore.Store, *fakeFeedSource, *memBlob) {
	t.Helper()
	auth := &fakeAuth{}
	blob := newMemBlob()
	store := taskstore.NewBacked(&fakeTaskBackend{tasks: []models.Task{
		{ID: "t1", OwnerID: "user-1", Title: "existing"},
	}}, nil)
	feedSrc := &fakeFeedSource{}
	feed := taskstore.NewFeed(store, nil)

	holder := NewHolder(Options{
		Backend:    auth,
		Blob:       blob,
		Store:      store,
		Feed:       feed,
		FeedSource: feedSrc,
	})
	return holder, auth, store, feedSrc, blob
}

func TestHolder_LoginActivatesStoreAndFeed(t *testing.T) {
	holder, _, store, feedSrc, _ := newBackedHolder(t)

	require.NoError(t, holder.Login(context.Background(), "test@example.com", "secret"))

	sess := holder.Current()
	require.NotNil(t, sess)
	assert.Equal(t, "user-1", sess.ID)
	assert.Equal(t, "user-1", store.Owner())
	assert.Len(t, store.Snapshot(), 1)
	assert.Equal(t, 1, feedSrc.subs)
}

func TestHolder_LoginFailureLeavesNoSession(t *testing.T) {
	holder, auth, store, _, _ := newBackedHolder(t)
	auth.signInErr = errors.New("invalid email or password")

	err := holder.Login(context.Background(), "test@example.com", "wrong")

	require.Error(t, err)
	assert.Nil(t, holder.Current())
	assert.Empty(t, store.Snapshot())
}

func TestHolder_LogoutClearsStoreBeforeCallbacks(t *testing.T) {
	holder, auth, store, feedSrc, blob := newBackedHolder(t)
	require.NoError(t, holder.Login(context.Background(), "test@example.com", "secret"))

	var sawTasks int
	var sawNil bool
	holder.OnChange(func(sess *Session) {
		if sess == nil {
			sawNil = true
			sawTasks = len(store.Snapshot())
		}
	})

	holder.Logout(context.Background())

	assert.True(t, sawNil)
	assert.Zero(t, sawTasks, "the store must already be empty when the change is announced")
	assert.Nil(t, holder.Current())
	assert.Equal(t, 1, auth.signOuts)
	assert.Equal(t, 1, feedSrc.stops)

	_, ok, err := blob.Get(sessionKey)
	require.NoError(t, err)
	assert.False(t, ok, "the persisted session must be dropped")
}

func TestHolder_LogoutWithoutSessionIsSafe(t *testing.T) {
	holder, auth, _, _, _ := newBackedHolder(t)

	holder.Logout(context.Background())

	assert.Nil(t, holder.Current())
	assert.Equal(t, 1, auth.signOuts)
}

func TestHolder_SessionSwitchNeverMixesOwners(t *testing.T) {
	holder, auth, store, feedSrc, _ := newBackedHolder(t)
	require.NoError(t, holder.Login(context.Background(), "first@example.com", "secret"))
	require.Len(t, store.Snapshot(), 1)

	// The second login tears the first session down first.
	require.NoError(t, holder.Login(context.Background(), "second@example.com", "secret"))

	assert.Equal(t, "second@example.com", holder.Current().Email)
	assert.Equal(t, 1, feedSrc.stops)
	assert.Equal(t, 2, feedSrc.subs)
	assert.Equal(t, 0, auth.signOuts, "switching sessions does not sign the backend out")
}

func TestHolder_RestoreReactivatesPersistedSession(t *testing.T) {
	holder, _, _, _, blob := newBackedHolder(t)
	require.NoError(t, holder.Login(context.Background(), "test@example.com", "secret"))

	// A second holder over the same blob picks the session up.
	store2 := taskstore.NewBacked(&fakeTaskBackend{}, nil)
	holder2 := NewHolder(Options{
		Backend: &fakeAuth{},
		Blob:    blob,
		Store:   store2,
	})
	require.NoError(t, holder2.Restore(context.Background()))

	sess := holder2.Current()
	require.NotNil(t, sess)
	assert.Equal(t, "test@example.com", sess.Email)
	assert.Equal(t, "user-1", store2.Owner())
}

func TestHolder_RestoreWithNothingPersistedIsNoOp(t *testing.T) {
	holder, _, _, _, _ := newBackedHolder(t)
	require.NoError(t, holder.Restore(context.Background()))
	assert.Nil(t, holder.Current())
}

func TestHolder_RestoreDropsCorruptSession(t *testing.T) {
	holder, _, _, _, blob := newBackedHolder(t)
	require.NoError(t, blob.Set(sessionKey, []byte("{not json")))

	require.NoError(t, holder.Restore(context.Background()))

	assert.Nil(t, holder.Current())
	_, ok, err := blob.Get(sessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHolder_OnChangeFiresImmediately(t *testing.T) {
	holder, _, _, _, _ := newBackedHolder(t)
	require.NoError(t, holder.Login(context.Background(), "test@example.com", "secret"))

	var got *Session
	holder.OnChange(func(sess *Session) { got = sess })

	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.ID)
}

func TestHolder_UpdateProfile(t *testing.T) {
	holder, _, _, _, blob := newBackedHolder(t)
	require.NoError(t, holder.Login(context.Background(), "test@example.com", "secret"))

	name := "Renamed"
	require.NoError(t, holder.UpdateProfile(context.Background(), ProfilePatch{Name: &name}))

	assert.Equal(t, "Renamed", holder.Current().Name)

	data, ok, err := blob.Get(sessionKey)
	require.NoError(t, err)
	require.True(t, ok)
	var persisted Session
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "Renamed", persisted.Name)
}

func TestHolder_UpdateProfileWithoutSession(t *testing.T) {
	holder, _, _, _, _ := newBackedHolder(t)
	err := holder.UpdateProfile(context.Background(), ProfilePatch{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestHolder_ForgotPassword(t *testing.T) {
	holder, auth, _, _, _ := newBackedHolder(t)
	require.NoError(t, holder.ForgotPassword(context.Background(), "test@example.com"))
	assert.Equal(t, []string{"test@example.com"}, auth.resets)
}

func TestHolder_LocalModeRegisterAndLogin(t *testing.T) {
	blob := newMemBlob()
	store := taskstore.NewLocal(blob, nil)
	holder := NewHolder(Options{Blob: blob, Store: store})

	require.NoError(t, holder.Register(context.Background(), "Local User", "Local@Example.com", ""))
	sess := holder.Current()
	require.NotNil(t, sess)
	assert.Equal(t, "local@example.com", sess.Email)

	holder2 := NewHolder(Options{Blob: blob, Store: taskstore.NewLocal(blob, nil)})
	assert.ErrorIs(t, holder2.Login(context.Background(), "other@example.com", ""),
		ErrInvalidCredentials)
	require.NoError(t, holder2.Login(context.Background(), "local@example.com", ""))
	assert.Equal(t, sess.ID, holder2.Current().ID)
}
