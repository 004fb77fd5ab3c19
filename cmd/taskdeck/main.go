// Command taskdeck is the terminal client. It drives the same task store,
// change feed, query, stats and notification layers a graphical frontend
// would, against either a taskdeck server or a local-only data file.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adithyakesavan/taskdeck/internal/localdisk"
	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/relay"
	"github.com/adithyakesavan/taskdeck/internal/remote"
	"github.com/adithyakesavan/taskdeck/internal/session"
	"github.com/adithyakesavan/taskdeck/internal/taskstore"
)

var Version = "dev"

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "taskdeck",
		Short:         "Taskdeck - task management from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.serverURL, "server", "http://localhost:8080", "taskdeck server base URL")
	rootCmd.PersistentFlags().BoolVar(&a.localOnly, "local", false, "work against the local data file, no server")
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data", "", "data directory (default: user config dir)")

	rootCmd.AddCommand(signupCmd(a))
	rootCmd.AddCommand(loginCmd(a))
	rootCmd.AddCommand(logoutCmd(a))
	rootCmd.AddCommand(whoamiCmd(a))
	rootCmd.AddCommand(forgotPasswordCmd(a))
	rootCmd.AddCommand(profileCmd(a))
	rootCmd.AddCommand(taskCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(calendarCmd(a))
	rootCmd.AddCommand(notificationsCmd(a))
	rootCmd.AddCommand(watchCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app wires the client core once per invocation. In backed mode the remote
// client serves every backend role; in local mode the data file does.
type app struct {
	serverURL string
	localOnly bool
	dataDir   string

	disk    *localdisk.File
	client  *remote.Client
	store   *taskstore.Store
	feed    *taskstore.Feed
	relay   relay.Relay
	backed  *relay.Backed
	holder  *session.Holder
	onEvent func(models.ChangeEvent)
}

// setup builds the object graph. withFeed controls whether activating a
// session also opens the push channel; one-shot commands leave it closed.
func (a *app) setup(withFeed bool) error {
	dir := a.dataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("cannot determine config dir: %w", err)
		}
		dir = filepath.Join(base, "taskdeck")
	}

	disk, err := localdisk.Open(filepath.Join(dir, "state.json"))
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	a.disk = disk

	notify := consoleNotifier{}

	if a.localOnly {
		a.store = taskstore.NewLocal(disk, notify)
		a.relay = relay.NewDerived()
		a.holder = session.NewHolder(session.Options{
			Blob:     disk,
			Store:    a.store,
			Notifier: notify,
		})
		return nil
	}

	client, err := remote.NewClient(a.serverURL,
		remote.WithCookieFile(filepath.Join(dir, "cookies.json")))
	if err != nil {
		return err
	}
	a.client = client
	a.store = taskstore.NewBacked(client, notify)
	a.backed = relay.NewBacked(client, notify)
	a.relay = a.backed

	opts := session.Options{
		Backend:  client,
		Blob:     disk,
		Store:    a.store,
		Notifier: notify,
	}
	if withFeed {
		a.feed = taskstore.NewFeed(a.store, func(ev models.ChangeEvent) {
			a.backed.HandleEvent(ev)
			if a.onEvent != nil {
				a.onEvent(ev)
			}
		})
		opts.Feed = a.feed
		opts.FeedSource = client
	}
	a.holder = session.NewHolder(opts)
	return nil
}

// consoleNotifier renders the transient success and error notifications on
// the terminal.
type consoleNotifier struct{}

func (consoleNotifier) Success(title, detail string) {
	fmt.Printf("%s: %s\n", title, detail)
}

func (consoleNotifier) Error(title, detail string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, detail)
}
