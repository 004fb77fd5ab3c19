package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adithyakesavan/taskdeck/internal/session"
)

// restore rebuilds the persisted session. Commands that operate on tasks or
// notifications call this first.
func (a *app) restore(ctx context.Context, withFeed bool) error {
	if err := a.setup(withFeed); err != nil {
		return err
	}
	if err := a.holder.Restore(ctx); err != nil {
		return err
	}
	if a.holder.Current() == nil {
		return errors.New("not logged in; run `taskdeck login` first")
	}
	return nil
}

func signupCmd(a *app) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			return a.holder.Register(cmd.Context(), name, email, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			return a.holder.Login(cmd.Context(), email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("email")

	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and drop local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			if err := a.holder.Restore(cmd.Context()); err != nil {
				return err
			}
			a.holder.Logout(cmd.Context())
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}
			sess := a.holder.Current()
			fmt.Printf("%s <%s>\n", sess.Name, sess.Email)
			if sess.ProfilePictureURL != "" {
				fmt.Printf("Avatar: %s\n", sess.ProfilePictureURL)
			}
			return nil
		},
	}
}

func forgotPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password [email]",
		Short: "Request a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			return a.holder.ForgotPassword(cmd.Context(), args[0])
		},
	}
}

func profileCmd(a *app) *cobra.Command {
	var name, avatar string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the logged-in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd.Context(), false); err != nil {
				return err
			}

			var patch session.ProfilePatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("avatar") {
				patch.ProfilePictureURL = &avatar
			}
			return a.holder.UpdateProfile(cmd.Context(), patch)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "new profile picture URL")

	return cmd
}
