package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// Store holds the current owner's tasks in memory, newest first. All methods
// are safe for concurrent use. In backed mode the list only ever reflects
// confirmed server state plus whatever the change feed pushes back; local
// mutations happen in the success path, so no rollback is needed.
type Store struct {
	mu      sync.Mutex
	backend Backend // nil in local-only mode
	blob    Blob    // nil in backed mode
	notify  Notifier
	ownerID string
	gen     uint64
	tasks   []models.Task
}

// NewBacked creates a store caching the given remote backend.
func NewBacked(backend Backend, notify Notifier) *Store {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Store{backend: backend, notify: notify}
}

// NewLocal creates an authoritative in-memory store persisted through blob.
func NewLocal(blob Blob, notify Notifier) *Store {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Store{blob: blob, notify: notify}
}

// Owner returns the owner the store currently holds tasks for.
func (s *Store) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerID
}

// Snapshot returns a copy of the current task list.
func (s *Store) Snapshot() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]models.Task, len(s.tasks))
	copy(tasks, s.tasks)
	return tasks
}

// Clear drops all tasks and detaches the store from its owner. Any load
// still in flight for the previous owner is invalidated and its late
// response discarded.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	s.ownerID = ""
	s.gen++
}

// Load replaces the store contents with ownerID's tasks, newest first. On
// transport failure the store is left empty and the failure is surfaced as a
// user-visible error.
func (s *Store) Load(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	s.ownerID = ownerID
	s.tasks = nil
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	if s.backend == nil {
		return s.loadLocal(ownerID, gen)
	}

	tasks, err := s.backend.ListTasks(ctx)
	if err != nil {
		log.Printf("taskstore: load failed for owner %s: %v", ownerID, err)
		s.notify.Error("Failed to load tasks", err.Error())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// The session ended or changed while the request was in flight.
		return nil
	}
	s.tasks = tasks
	return nil
}

func (s *Store) loadLocal(ownerID string, gen uint64) error {
	data, ok, err := s.blob.Get(tasksKey(ownerID))
	if err != nil {
		log.Printf("taskstore: load failed for owner %s: %v", ownerID, err)
		s.notify.Error("Failed to load tasks", err.Error())
		return err
	}

	var tasks []models.Task
	if ok {
		if err := json.Unmarshal(data, &tasks); err != nil {
			log.Printf("taskstore: corrupt task blob for owner %s: %v", ownerID, err)
			s.notify.Error("Failed to load tasks", "stored tasks could not be read")
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.tasks = tasks
	return nil
}

// Add validates and creates a task, returning the new id. The title check
// happens before any backend call; the new record is only merged in once the
// backend confirms it.
func (s *Store) Add(ctx context.Context, draft Draft) (string, error) {
	if draft.Title == "" {
		return "", ErrTitleRequired
	}
	if draft.Priority == "" {
		draft.Priority = models.PriorityMedium
	}

	if s.backend == nil {
		return s.addLocal(draft)
	}

	task, err := s.backend.InsertTask(ctx, draft)
	if err != nil {
		s.notify.Error("Failed to add task", err.Error())
		return "", err
	}

	s.upsert(*task)
	s.notify.Success("Task added", "Your task has been added successfully")
	return task.ID, nil
}

func (s *Store) addLocal(draft Draft) (string, error) {
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    draft.Priority,
		Status:      models.StatusPending,
		AssignedTo:  draft.AssignedTo,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	task.OwnerID = s.ownerID
	s.tasks = append([]models.Task{task}, s.tasks...)
	err := s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		s.notify.Error("Failed to add task", err.Error())
		return "", err
	}
	s.notify.Success("Task added", "Your task has been added successfully")
	return task.ID, nil
}

// Update applies a typed patch to the task with the given id.
func (s *Store) Update(ctx context.Context, id string, patch Patch) error {
	if patch.Title != nil && *patch.Title == "" {
		return ErrTitleRequired
	}

	if s.backend == nil {
		return s.updateLocal(id, patch, "Task updated", "Your task has been updated successfully")
	}

	task, err := s.backend.UpdateTask(ctx, id, patch)
	if err != nil {
		s.notify.Error("Failed to update task", err.Error())
		return err
	}

	s.replace(*task)
	s.notify.Success("Task updated", "Your task has been updated successfully")
	return nil
}

func (s *Store) updateLocal(id string, patch Patch, title, detail string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	patch.apply(&s.tasks[idx])
	err := s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		s.notify.Error("Failed to update task", err.Error())
		return err
	}
	s.notify.Success(title, detail)
	return nil
}

// Remove deletes the task with the given id.
func (s *Store) Remove(ctx context.Context, id string) error {
	if s.backend == nil {
		return s.removeLocal(id)
	}

	if err := s.backend.DeleteTask(ctx, id); err != nil {
		s.notify.Error("Failed to delete task", err.Error())
		return err
	}

	s.drop(id)
	s.notify.Success("Task deleted", "Your task has been deleted")
	return nil
}

func (s *Store) removeLocal(id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	err := s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		s.notify.Error("Failed to delete task", err.Error())
		return err
	}
	s.notify.Success("Task deleted", "Your task has been deleted")
	return nil
}

// ToggleStatus flips the task between pending and completed. The toast
// reports the status that was actually written.
func (s *Store) ToggleStatus(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	next := s.tasks[idx].ToggledStatus()
	s.mu.Unlock()

	if s.backend == nil {
		return s.updateLocal(id, Patch{Status: &next},
			fmt.Sprintf("Task %s", next), fmt.Sprintf("Task has been marked as %s", next))
	}

	task, err := s.backend.UpdateTask(ctx, id, Patch{Status: &next})
	if err != nil {
		s.notify.Error("Failed to update task", err.Error())
		return err
	}

	s.replace(*task)
	s.notify.Success(fmt.Sprintf("Task %s", task.Status),
		fmt.Sprintf("Task has been marked as %s", task.Status))
	return nil
}

// Apply reconciles a pushed change event into the store. Events for other
// tables or other owners are ignored. All three operations are idempotent:
// replayed inserts overwrite, updates and deletes of absent rows are no-ops.
func (s *Store) Apply(ev models.ChangeEvent) {
	if ev.Table != models.TableTasks || ev.Task == nil {
		return
	}
	switch ev.Type {
	case models.EventInsert:
		s.ApplyInsert(*ev.Task)
	case models.EventUpdate:
		s.ApplyUpdate(*ev.Task)
	case models.EventDelete:
		s.ApplyRemove(ev.Task.ID)
	}
}

// ApplyInsert prepends a pushed task, or overwrites it in place on replay.
// Display ordering is the query layer's job, not the feed's.
func (s *Store) ApplyInsert(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID == "" || task.OwnerID != s.ownerID {
		return
	}
	if idx := s.indexLocked(task.ID); idx >= 0 {
		s.tasks[idx] = task
		return
	}
	s.tasks = append([]models.Task{task}, s.tasks...)
}

// ApplyUpdate replaces the matching task wholesale; no-op if absent.
func (s *Store) ApplyUpdate(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID == "" || task.OwnerID != s.ownerID {
		return
	}
	if idx := s.indexLocked(task.ID); idx >= 0 {
		s.tasks[idx] = task
	}
}

// ApplyRemove drops the matching task; no-op if absent.
func (s *Store) ApplyRemove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	}
}

// upsert merges a confirmed mutation result. The session may have ended or
// switched owners while the backend call was in flight; a confirmation for
// another owner is discarded rather than merged.
func (s *Store) upsert(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID == "" || task.OwnerID != s.ownerID {
		return
	}
	if idx := s.indexLocked(task.ID); idx >= 0 {
		s.tasks[idx] = task
		return
	}
	s.tasks = append([]models.Task{task}, s.tasks...)
}

func (s *Store) replace(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID == "" || task.OwnerID != s.ownerID {
		return
	}
	if idx := s.indexLocked(task.ID); idx >= 0 {
		s.tasks[idx] = task
	}
}

func (s *Store) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() error {
	if s.blob == nil {
		return nil
	}
	data, err := json.Marshal(s.tasks)
	if err != nil {
		return fmt.Errorf("failed to serialize tasks: %w", err)
	}
	return s.blob.Set(tasksKey(s.ownerID), data)
}

func tasksKey(ownerID string) string {
	return "tasks:" + ownerID
}
