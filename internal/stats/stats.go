// Package stats computes dashboard statistics over a task list. All
// functions are pure; day comparisons use the calendar day of the supplied
// reference time in its own location.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// Summary holds the derived dashboard numbers for one task list.
type Summary struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completion_rate"` // percent, 0 when Total is 0
	Overdue        int `json:"overdue"`
	DueToday       int `json:"due_today"`

	HighPriority   int `json:"high_priority"`
	MediumPriority int `json:"medium_priority"`
	LowPriority    int `json:"low_priority"`
}

// Summarize computes a Summary of tasks as of now. A pending task is overdue
// when its due date falls on an earlier calendar day than now; a task due
// today is never overdue regardless of the time of day.
func Summarize(tasks []models.Task, now time.Time) Summary {
	var s Summary
	s.Total = len(tasks)

	today := dayOf(now, now.Location())
	for _, task := range tasks {
		if task.Status == models.StatusCompleted {
			s.Completed++
		}

		switch task.Priority {
		case models.PriorityHigh:
			s.HighPriority++
		case models.PriorityMedium:
			s.MediumPriority++
		case models.PriorityLow:
			s.LowPriority++
		}

		// Tasks without a due date never count as overdue or due today.
		if task.Status == models.StatusPending && !task.DueDate.IsZero() {
			due := dayOf(task.DueDate, now.Location())
			switch {
			case due.Before(today):
				s.Overdue++
			case due.Equal(today):
				s.DueToday++
			}
		}
	}

	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}

// GroupByDueDate buckets tasks by the calendar day they are due, keyed by
// YYYY-MM-DD. Tasks without a due date are left out. Used by the calendar
// view.
func GroupByDueDate(tasks []models.Task) map[string][]models.Task {
	grouped := make(map[string][]models.Task)
	for _, task := range tasks {
		if task.DueDate.IsZero() {
			continue
		}
		key := task.DueDate.Format("2006-01-02")
		grouped[key] = append(grouped[key], task)
	}
	return grouped
}

// Recent returns up to n tasks ordered by creation time, newest first.
func Recent(tasks []models.Task, n int) []models.Task {
	result := make([]models.Task, len(tasks))
	copy(result, tasks)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if n < len(result) {
		result = result[:n]
	}
	return result
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
