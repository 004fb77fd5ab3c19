package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live changes to the task list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.localOnly {
				return errors.New("watch needs a server; there is no feed in local mode")
			}

			a.onEvent = printEvent
			if err := a.restore(cmd.Context(), true); err != nil {
				return err
			}
			defer a.feed.Detach()

			if !a.feed.Attached() {
				return errors.New("could not open the change feed")
			}

			fmt.Println("Watching for changes. Ctrl-C to stop.")
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			select {
			case <-stop:
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
}

func printEvent(ev models.ChangeEvent) {
	switch {
	case ev.Table == models.TableTasks && ev.Task != nil:
		fmt.Printf("%s task %s: %s\n", ev.Type, shortID(ev.Task.ID), ev.Task.Title)
	case ev.Table == models.TableNotifications && ev.Notification != nil:
		fmt.Printf("%s notification %s: %s\n", ev.Type, shortID(ev.Notification.ID), ev.Notification.Message)
	default:
		fmt.Printf("%s on %s\n", ev.Type, ev.Table)
	}
}
