package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/query"
	"github.com/adithyakesavan/taskdeck/internal/taskstore"
)

func taskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(taskAddCmd(a))
	cmd.AddCommand(taskListCmd(a))
	cmd.AddCommand(taskEditCmd(a))
	cmd.AddCommand(taskDoneCmd(a))
	cmd.AddCommand(taskRmCmd(a))
	return cmd
}

func taskAddCmd(a *app) *cobra.Command {
	var desc, due, priority, assign string

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}

			draft := taskstore.Draft{
				Title:       args[0],
				Description: desc,
				AssignedTo:  assign,
				Priority:    models.TaskPriority(priority),
			}
			if due != "" {
				t, err := parseDue(due)
				if err != nil {
					return err
				}
				draft.DueDate = t
			}

			id, err := a.store.Add(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&desc, "desc", "d", "", "description")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "priority (low, medium, high)")
	cmd.Flags().StringVar(&assign, "assign", "", "assignee")

	return cmd
}

func taskListCmd(a *app) *cobra.Command {
	var status, priority, search, sortKey string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}

			tasks := query.Filter(a.store.Snapshot(), query.Criteria{
				Status:   models.TaskStatus(status),
				Priority: models.TaskPriority(priority),
				Search:   search,
			})
			if sortKey != "" {
				tasks = query.SortBy(tasks, query.SortKey(sortKey))
			}

			if asJSON {
				return printJSON(tasks)
			}
			printTasks(tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, completed)")
	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority (low, medium, high)")
	cmd.Flags().StringVar(&search, "search", "", "match against title and description")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort by dueDate, priority or status")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

func taskEditCmd(a *app) *cobra.Command {
	var title, desc, due, priority, status, assign string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}

			var patch taskstore.Patch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("desc") {
				patch.Description = &desc
			}
			if cmd.Flags().Changed("due") {
				t, err := parseDue(due)
				if err != nil {
					return err
				}
				patch.DueDate = &t
			}
			if cmd.Flags().Changed("priority") {
				p := models.TaskPriority(priority)
				patch.Priority = &p
			}
			if cmd.Flags().Changed("status") {
				s := models.TaskStatus(status)
				patch.Status = &s
			}
			if cmd.Flags().Changed("assign") {
				patch.AssignedTo = &assign
			}

			id, err := a.resolveTaskID(args[0])
			if err != nil {
				return err
			}
			return a.store.Update(cmd.Context(), id, patch)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "new description")
	cmd.Flags().StringVar(&due, "due", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&assign, "assign", "", "new assignee")

	return cmd
}

func taskDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}
			id, err := a.resolveTaskID(args[0])
			if err != nil {
				return err
			}
			return a.store.ToggleStatus(cmd.Context(), id)
		},
	}
}

func taskRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}
			id, err := a.resolveTaskID(args[0])
			if err != nil {
				return err
			}
			return a.store.Remove(cmd.Context(), id)
		},
	}
}

// resolveTaskID expands a unique id prefix to the full task id.
func (a *app) resolveTaskID(arg string) (string, error) {
	var match string
	for _, t := range a.store.Snapshot() {
		if t.ID == arg {
			return arg, nil
		}
		if strings.HasPrefix(t.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("id %q is ambiguous", arg)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no task with id %q", arg)
	}
	return match, nil
}

func parseDue(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func printTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return
	}
	for _, t := range tasks {
		marker := " "
		if t.Status == models.StatusCompleted {
			marker = "x"
		}
		line := fmt.Sprintf("[%s] %-8s %s  %s", marker, t.Priority, shortID(t.ID), t.Title)
		if !t.DueDate.IsZero() {
			line += "  (due " + t.DueDate.Format("2006-01-02") + ")"
		}
		if t.AssignedTo != "" {
			line += "  @" + t.AssignedTo
		}
		fmt.Println(line)
	}
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}
