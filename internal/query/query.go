// Package query derives filtered and sorted views of a task list. Functions
// are pure: the input slice is never mutated and results are fresh slices.
package query

import (
	"sort"
	"strings"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// Criteria selects tasks. Zero-valued fields are ignored; provided fields
// must all match (status and priority exactly, Search as a case-insensitive
// substring of the title or description).
type Criteria struct {
	Status   models.TaskStatus
	Priority models.TaskPriority
	Search   string
}

// SortKey names a task ordering.
type SortKey string

const (
	SortByDueDate  SortKey = "dueDate"  // ascending chronological
	SortByPriority SortKey = "priority" // high before medium before low
	SortByStatus   SortKey = "status"   // pending before completed
)

// Filter returns the tasks matching every provided criterion.
func Filter(tasks []models.Task, c Criteria) []models.Task {
	term := strings.ToLower(c.Search)

	result := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if c.Status != "" && task.Status != c.Status {
			continue
		}
		if c.Priority != "" && task.Priority != c.Priority {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(task.Title), term) &&
			!strings.Contains(strings.ToLower(task.Description), term) {
			continue
		}
		result = append(result, task)
	}
	return result
}

var priorityRank = map[models.TaskPriority]int{
	models.PriorityLow:    0,
	models.PriorityMedium: 1,
	models.PriorityHigh:   2,
}

// SortBy returns a copy of tasks ordered by key. The sort is stable: ties
// keep their prior relative order.
func SortBy(tasks []models.Task, key SortKey) []models.Task {
	result := make([]models.Task, len(tasks))
	copy(result, tasks)

	switch key {
	case SortByDueDate:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].DueDate.Before(result[j].DueDate)
		})
	case SortByPriority:
		sort.SliceStable(result, func(i, j int) bool {
			return priorityRank[result[i].Priority] > priorityRank[result[j].Priority]
		})
	case SortByStatus:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Status == models.StatusPending && result[j].Status == models.StatusCompleted
		})
	}
	return result
}
