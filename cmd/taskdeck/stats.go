package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/adithyakesavan/taskdeck/internal/stats"
)

func statsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}

			summary := stats.Summarize(a.store.Snapshot(), time.Now())
			if asJSON {
				return printJSON(summary)
			}

			fmt.Printf("Total:          %d\n", summary.Total)
			fmt.Printf("Completed:      %d (%d%%)\n", summary.Completed, summary.CompletionRate)
			fmt.Printf("Pending:        %d\n", summary.Pending)
			fmt.Printf("Overdue:        %d\n", summary.Overdue)
			fmt.Printf("Due today:      %d\n", summary.DueToday)
			fmt.Printf("Priority:       %d high / %d medium / %d low\n",
				summary.HighPriority, summary.MediumPriority, summary.LowPriority)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

func calendarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Show tasks grouped by due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}

			groups := stats.GroupByDueDate(a.store.Snapshot())
			if len(groups) == 0 {
				fmt.Println("No tasks.")
				return nil
			}

			days := make([]string, 0, len(groups))
			for day := range groups {
				days = append(days, day)
			}
			sort.Strings(days)

			for _, day := range days {
				fmt.Println(day)
				printTasks(groups[day])
				fmt.Println()
			}
			return nil
		},
	}
}
