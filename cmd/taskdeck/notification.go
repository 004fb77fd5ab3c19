package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/relay"
)

func notificationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Manage notifications",
	}
	cmd.AddCommand(notifListCmd(a))
	cmd.AddCommand(notifReadCmd(a))
	cmd.AddCommand(notifReadAllCmd(a))
	cmd.AddCommand(notifClearCmd(a))
	return cmd
}

// loadRelay fills the relay: the backed strategy fetches the remote table,
// the derived one rebuilds from the task list already in the store.
func (a *app) loadRelay(ctx context.Context) error {
	if a.backed != nil {
		return a.backed.Load(ctx)
	}
	if d, ok := a.relay.(*relay.Derived); ok {
		d.Rebuild(a.store.Snapshot())
	}
	return nil
}

func notifListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}
			if err := a.loadRelay(cmd.Context()); err != nil {
				return err
			}

			items := a.relay.Notifications()
			if asJSON {
				return printJSON(items)
			}
			if len(items) == 0 {
				fmt.Println("No notifications.")
				return nil
			}
			fmt.Printf("%d unread\n", a.relay.UnreadCount())
			for _, n := range items {
				marker := " "
				if n.Status == models.NotificationUnread {
					marker = "*"
				}
				fmt.Printf("[%s] %s  %s\n", marker, shortID(n.ID), n.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

func notifReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read [id]",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}
			if err := a.loadRelay(cmd.Context()); err != nil {
				return err
			}
			id, err := a.resolveNotificationID(args[0])
			if err != nil {
				return err
			}
			return a.relay.MarkRead(cmd.Context(), id)
		},
	}
}

func notifReadAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}
			if err := a.loadRelay(cmd.Context()); err != nil {
				return err
			}
			return a.relay.MarkAllRead(cmd.Context())
		},
	}
}

func notifClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [id]",
		Short: "Remove one notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}
			if err := a.loadRelay(cmd.Context()); err != nil {
				return err
			}
			id, err := a.resolveNotificationID(args[0])
			if err != nil {
				return err
			}
			return a.relay.Clear(cmd.Context(), id)
		},
	}
}

func (a *app) resolveNotificationID(arg string) (string, error) {
	var match string
	for _, n := range a.relay.Notifications() {
		if n.ID == arg {
			return arg, nil
		}
		if len(arg) > 0 && len(n.ID) >= len(arg) && n.ID[:len(arg)] == arg {
			if match != "" {
				return "", fmt.Errorf("id %q is ambiguous", arg)
			}
			match = n.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no notification with id %q", arg)
	}
	return match, nil
}
