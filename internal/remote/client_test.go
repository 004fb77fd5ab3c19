package remote

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adithyakesavan/taskdeck/internal/database"
	"github.com/adithyakesavan/taskdeck/internal/feedhub"
	"github.com/adithyakesavan/taskdeck/internal/handlers"
	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/repository"
	"github.com/adithyakesavan/taskdeck/internal/services"
	"github.com/adithyakesavan/taskdeck/internal/taskstore"
)

// newTestServer runs the full API over in-memory SQLite.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.PasswordReset{}, &models.Task{}, &models.Notification{})
	require.NoError(t, err)

	database.SetDB(db)

	hub := feedhub.NewHub()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	authHandler := handlers.NewAuthHandler(services.NewAuthService(userRepo))
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(taskRepo, notifRepo, hub))
	notifHandler := handlers.NewNotificationHandler(services.NewNotificationService(notifRepo, hub))
	eventHandler := handlers.NewEventHandler(hub)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	// Match the server's non-production cookie options; the store's default
	// Secure flag would make the jar drop the cookie over plain HTTP.
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions("taskdeck_session", store))
	handlers.RegisterRoutes(r, authHandler, taskHandler, notifHandler, eventHandler)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		sqlDB, dberr := db.DB()
		if dberr == nil {
			sqlDB.Close()
		}
	})
	return srv
}

func signUpClient(t *testing.T, srv *httptest.Server, email string) *Client {
	t.Helper()
	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.SignUp(context.Background(), "Test User", email, "supersecret")
	require.NoError(t, err)
	return client
}

func TestClient_EndpointKeepsBasePathPrefix(t *testing.T) {
	client, err := NewClient("http://example.com/prefix")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/prefix/api/tasks", client.endpoint("/api/tasks"))

	client, err = NewClient("http://example.com/prefix/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/prefix/api/tasks", client.endpoint("/api/tasks"))

	client, err = NewClient("http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/tasks", client.endpoint("/api/tasks"))
}

func TestClient_AuthFlow(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	sess, err := client.SignUp(ctx, "Test User", "test@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "test@example.com", sess.Email)

	// The session cookie carries to subsequent calls.
	me, err := client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, me.ID)

	require.NoError(t, client.SignOut(ctx))

	_, err = client.Me(ctx)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "UNAUTHORIZED", authErr.Code)
}

func TestClient_SignInWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	signUpClient(t, srv, "test@example.com")

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.SignIn(context.Background(), "test@example.com", "wrongpassword")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "UNAUTHORIZED", authErr.Code)
}

func TestClient_ValidationError(t *testing.T) {
	srv := newTestServer(t)
	client := signUpClient(t, srv, "test@example.com")

	_, err := client.InsertTask(context.Background(), taskstore.Draft{Title: ""})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestClient_TransportError(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = client.ListTasks(context.Background())

	var transErr *TransportError
	require.ErrorAs(t, err, &transErr)
}

func TestClient_TaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	client := signUpClient(t, srv, "test@example.com")
	ctx := context.Background()

	task, err := client.InsertTask(ctx, taskstore.Draft{
		Title:    "Ship release",
		DueDate:  time.Now().Add(48 * time.Hour).UTC(),
		Priority: models.PriorityHigh,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, models.StatusPending, task.Status)

	tasks, err := client.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	title := "Ship release v2"
	updated, err := client.UpdateTask(ctx, task.ID, taskstore.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Ship release v2", updated.Title)

	require.NoError(t, client.DeleteTask(ctx, task.ID))

	tasks, err = client.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestClient_NotificationsFollowTaskMutations(t *testing.T) {
	srv := newTestServer(t)
	client := signUpClient(t, srv, "test@example.com")
	ctx := context.Background()

	_, err := client.InsertTask(ctx, taskstore.Draft{Title: "Task A"})
	require.NoError(t, err)

	items, err := client.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationUnread, items[0].Status)

	require.NoError(t, client.MarkNotificationRead(ctx, items[0].ID))

	items, err = client.ListNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationRead, items[0].Status)

	require.NoError(t, client.MarkAllNotificationsRead(ctx))
	require.NoError(t, client.DeleteNotification(ctx, items[0].ID))

	items, err = client.ListNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClient_SubscribeReceivesChangeEvents(t *testing.T) {
	srv := newTestServer(t)
	client := signUpClient(t, srv, "test@example.com")
	ctx := context.Background()

	events := make(chan models.ChangeEvent, 8)
	cancel, err := client.Subscribe(ctx, func(ev models.ChangeEvent) {
		events <- ev
	})
	require.NoError(t, err)
	defer cancel()

	_, err = client.InsertTask(ctx, taskstore.Draft{Title: "Watched"})
	require.NoError(t, err)

	var got models.ChangeEvent
	select {
	case got = <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("no change event arrived")
	}
	assert.Equal(t, models.EventInsert, got.Type)
	assert.Equal(t, models.TableTasks, got.Table)
	require.NotNil(t, got.Task)
	assert.Equal(t, "Watched", got.Task.Title)

	// The notification event for the same mutation follows.
	select {
	case got = <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("no notification event arrived")
	}
	assert.Equal(t, models.TableNotifications, got.Table)

	// Unsubscribe is idempotent.
	cancel()
	cancel()
}

func TestClient_SubscribeRequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Subscribe(context.Background(), func(models.ChangeEvent) {})

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestClient_CookieFilePersistsSession(t *testing.T) {
	srv := newTestServer(t)
	cookieFile := filepath.Join(t.TempDir(), "cookies.json")

	first, err := NewClient(srv.URL, WithCookieFile(cookieFile))
	require.NoError(t, err)
	_, err = first.SignUp(context.Background(), "Test User", "test@example.com", "supersecret")
	require.NoError(t, err)

	// A fresh client over the same cookie file resumes the session.
	second, err := NewClient(srv.URL, WithCookieFile(cookieFile))
	require.NoError(t, err)

	me, err := second.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", me.Email)
}
