// Package remote implements the consumed backend contract over HTTP: auth,
// the tasks and notifications tables, and the SSE push channel. The session
// travels as a cookie; an optional cookie file carries it across processes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/session"
	"github.com/adithyakesavan/taskdeck/internal/taskstore"
)

// Client talks to a taskdeck server. It implements the auth backend of the
// session holder, the task backend of the store, the notification backend of
// the relay and the feed source of the change feed adapter.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	cookieFile string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCookieFile persists the session cookie at path so a new process can
// resume an existing session.
func WithCookieFile(path string) Option {
	return func(c *Client) { c.cookieFile = path }
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	c.http.Jar = jar
	c.loadCookies()

	return c, nil
}

// SignUp registers an account and starts a session.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (*session.Session, error) {
	var sess session.Session
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &sess, "sign up")
	if err != nil {
		return nil, err
	}
	c.saveCookies()
	return &sess, nil
}

// SignIn authenticates and starts a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	var sess session.Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &sess, "sign in")
	if err != nil {
		return nil, err
	}
	c.saveCookies()
	return &sess, nil
}

// SignOut ends the server-side session.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, "sign out")
	c.saveCookies()
	return err
}

// Me returns the session for the carried cookie.
func (c *Client) Me(ctx context.Context) (*session.Session, error) {
	var sess session.Session
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &sess, "fetch session"); err != nil {
		return nil, err
	}
	return &sess, nil
}

// UpdateProfile applies a profile patch to the authenticated user.
func (c *Client) UpdateProfile(ctx context.Context, patch session.ProfilePatch) (*session.Session, error) {
	var sess session.Session
	if err := c.do(ctx, http.MethodPatch, "/api/auth/me", patch, &sess, "update profile"); err != nil {
		return nil, err
	}
	return &sess, nil
}

// ResetPasswordRequest asks the backend to issue a reset link.
func (c *Client) ResetPasswordRequest(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"email": email,
	}, nil, "request password reset")
}

// ListTasks returns the owner's tasks, newest first.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var resp struct {
		Tasks []models.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &resp, "list tasks"); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// InsertTask creates a task; the server assigns id, status and creation time.
func (c *Client) InsertTask(ctx context.Context, draft taskstore.Draft) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", draft, &task, "insert task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a typed patch to a task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch taskstore.Patch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), patch, &task, "update task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, "delete task")
}

// ListNotifications returns the owner's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var resp struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &resp, "list notifications"); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

// MarkNotificationRead flips one notification to read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/"+url.PathEscape(id)+"/read", nil, nil, "mark notification read")
}

// MarkAllNotificationsRead flips every unread notification to read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil, "mark notifications read")
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notifications/"+url.PathEscape(id), nil, nil, "delete notification")
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, op string) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, op)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Op: op, Err: err}
		}
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response, op string) error {
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return &ValidationError{Message: apiErr.Message}
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict:
		return &AuthError{Code: apiErr.Code, Message: apiErr.Message}
	default:
		return &TransportError{Op: op, Err: errors.New(apiErr.Message)}
	}
}

func (c *Client) endpoint(path string) string {
	// The base URL may carry a path prefix; join rather than overwrite.
	return c.baseURL.JoinPath(path).String()
}

func (c *Client) loadCookies() {
	if c.cookieFile == "" {
		return
	}
	data, err := os.ReadFile(c.cookieFile)
	if err != nil {
		return
	}
	var cookies []*http.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		log.Printf("remote: ignoring corrupt cookie file: %v", err)
		return
	}
	c.http.Jar.SetCookies(c.baseURL, cookies)
}

func (c *Client) saveCookies() {
	if c.cookieFile == "" {
		return
	}
	data, err := json.Marshal(c.http.Jar.Cookies(c.baseURL))
	if err != nil {
		return
	}
	if err := os.WriteFile(c.cookieFile, data, 0o600); err != nil {
		log.Printf("remote: failed to persist session cookie: %v", err)
	}
}
