// Package session holds the current authenticated identity and drives the
// lifecycle of everything scoped to it: the task store is loaded and the
// change feed attached when a session begins, and both are torn down,
// synchronously and in that order, before the session ends or changes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adithyakesavan/taskdeck/internal/taskstore"
)

const sessionKey = "session"

var (
	ErrNotAuthenticated   = errors.New("no user logged in")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Session is the authenticated identity scoping all task and notification
// operations.
type Session struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProfilePatch lists the mutable profile fields.
type ProfilePatch struct {
	Name              *string `json:"name,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

// AuthBackend is the external authentication service.
type AuthBackend interface {
	SignUp(ctx context.Context, name, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch ProfilePatch) (*Session, error)
	ResetPasswordRequest(ctx context.Context, email string) error
}

// Holder owns zero or one live session. It is constructed once at process
// start and injected into consumers; there is no ambient lookup.
type Holder struct {
	mu       sync.Mutex
	backend  AuthBackend // nil in local-only mode
	blob     taskstore.Blob
	store    *taskstore.Store
	feed     *taskstore.Feed
	feedSrc  taskstore.FeedSource
	notify   taskstore.Notifier
	current  *Session
	onChange []func(*Session)
}

// Options carries the collaborators a Holder drives.
type Options struct {
	Backend    AuthBackend        // remote auth; nil selects local-only mode
	Blob       taskstore.Blob     // session persistence for local-only mode
	Store      *taskstore.Store   // required
	Feed       *taskstore.Feed    // optional
	FeedSource taskstore.FeedSource
	Notifier   taskstore.Notifier
}

// NewHolder creates a holder with no live session.
func NewHolder(opts Options) *Holder {
	notify := opts.Notifier
	if notify == nil {
		notify = taskstore.NopNotifier{}
	}
	return &Holder{
		backend: opts.Backend,
		blob:    opts.Blob,
		store:   opts.Store,
		feed:    opts.Feed,
		feedSrc: opts.FeedSource,
		notify:  notify,
	}
}

// Current returns the live session, or nil.
func (h *Holder) Current() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return nil
	}
	copied := *h.current
	return &copied
}

// OnChange registers fn to run on every session change. fn is invoked
// immediately with the current session.
func (h *Holder) OnChange(fn func(*Session)) {
	h.mu.Lock()
	h.onChange = append(h.onChange, fn)
	current := h.current
	h.mu.Unlock()
	fn(current)
}

// Restore loads a persisted session at startup (local-only mode). It is a
// no-op when nothing was persisted.
func (h *Holder) Restore(ctx context.Context) error {
	if h.blob == nil {
		return nil
	}
	data, ok, err := h.blob.Get(sessionKey)
	if err != nil || !ok {
		return err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		log.Printf("session: dropping corrupt persisted session: %v", err)
		return h.blob.Delete(sessionKey)
	}

	return h.activate(ctx, &sess)
}

// Register creates an account and starts a session for it.
func (h *Holder) Register(ctx context.Context, name, email, password string) error {
	var sess *Session
	var err error

	if h.backend != nil {
		sess, err = h.backend.SignUp(ctx, name, email, password)
	} else {
		sess = &Session{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     strings.ToLower(strings.TrimSpace(email)),
			CreatedAt: time.Now(),
		}
	}
	if err != nil {
		h.notify.Error("Registration failed", err.Error())
		return err
	}

	h.notify.Success("Registration successful", "Your account has been created.")
	return h.activate(ctx, sess)
}

// Login authenticates and starts a session. Auth failures are surfaced as a
// toast and returned so the caller can suppress navigation.
func (h *Holder) Login(ctx context.Context, email, password string) error {
	var sess *Session
	var err error

	if h.backend != nil {
		sess, err = h.backend.SignIn(ctx, email, password)
	} else {
		sess, err = h.localSignIn(email)
	}
	if err != nil {
		h.notify.Error("Login failed", err.Error())
		return err
	}

	h.notify.Success("Login successful", "Welcome back!")
	return h.activate(ctx, sess)
}

// Logout ends the session. The feed is detached and the store cleared
// synchronously before the change is announced, so a new session's load can
// never observe the old owner's rows.
func (h *Holder) Logout(ctx context.Context) {
	h.deactivate()

	if h.backend != nil {
		if err := h.backend.SignOut(ctx); err != nil {
			log.Printf("session: sign-out call failed: %v", err)
		}
	}
	if h.blob != nil {
		if err := h.blob.Delete(sessionKey); err != nil {
			log.Printf("session: failed to drop persisted session: %v", err)
		}
	}

	h.notify.Success("Logged out", "You have been successfully logged out")
}

// ForgotPassword requests a reset link for the email.
func (h *Holder) ForgotPassword(ctx context.Context, email string) error {
	if h.backend != nil {
		if err := h.backend.ResetPasswordRequest(ctx, email); err != nil {
			h.notify.Error("Failed to send reset link", err.Error())
			return err
		}
	}
	h.notify.Success("Password reset link sent", "We've sent a password reset link to "+email)
	return nil
}

// UpdateProfile applies a profile patch to the live session.
func (h *Holder) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	h.mu.Lock()
	current := h.current
	h.mu.Unlock()
	if current == nil {
		h.notify.Error("Update failed", ErrNotAuthenticated.Error())
		return ErrNotAuthenticated
	}

	updated := *current
	if h.backend != nil {
		sess, err := h.backend.UpdateProfile(ctx, patch)
		if err != nil {
			h.notify.Error("Update failed", err.Error())
			return err
		}
		updated = *sess
	} else {
		if patch.Name != nil {
			updated.Name = *patch.Name
		}
		if patch.ProfilePictureURL != nil {
			updated.ProfilePictureURL = *patch.ProfilePictureURL
		}
	}

	h.mu.Lock()
	h.current = &updated
	callbacks := append([]func(*Session){}, h.onChange...)
	h.mu.Unlock()

	if err := h.persist(&updated); err != nil {
		log.Printf("session: failed to persist session: %v", err)
	}

	h.notify.Success("Profile updated", "Your profile has been successfully updated")
	for _, fn := range callbacks {
		fn(&updated)
	}
	return nil
}

// activate tears down any previous session, installs sess, loads the store
// and attaches the feed.
func (h *Holder) activate(ctx context.Context, sess *Session) error {
	h.deactivate()

	h.mu.Lock()
	h.current = sess
	callbacks := append([]func(*Session){}, h.onChange...)
	h.mu.Unlock()

	if err := h.persist(sess); err != nil {
		log.Printf("session: failed to persist session: %v", err)
	}

	if err := h.store.Load(ctx, sess.ID); err != nil {
		// Fails soft: the session stands, the store stays empty, the load
		// error was already surfaced to the user.
		log.Printf("session: initial task load failed: %v", err)
	}

	if h.feed != nil && h.feedSrc != nil {
		if err := h.feed.Attach(ctx, h.feedSrc); err != nil {
			log.Printf("session: failed to attach change feed: %v", err)
		}
	}

	for _, fn := range callbacks {
		fn(sess)
	}
	return nil
}

func (h *Holder) deactivate() {
	if h.feed != nil {
		h.feed.Detach()
	}
	h.store.Clear()

	h.mu.Lock()
	had := h.current != nil
	h.current = nil
	callbacks := append([]func(*Session){}, h.onChange...)
	h.mu.Unlock()

	if had {
		for _, fn := range callbacks {
			fn(nil)
		}
	}
}

func (h *Holder) persist(sess *Session) error {
	if h.blob == nil {
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return h.blob.Set(sessionKey, data)
}

// localSignIn matches the persisted local account. Local-only mode keeps no
// credentials, so only the email is checked.
func (h *Holder) localSignIn(email string) (*Session, error) {
	if h.blob == nil {
		return nil, ErrInvalidCredentials
	}
	data, ok, err := h.blob.Get(sessionKey)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !strings.EqualFold(sess.Email, strings.TrimSpace(email)) {
		return nil, ErrInvalidCredentials
	}
	return &sess, nil
}
