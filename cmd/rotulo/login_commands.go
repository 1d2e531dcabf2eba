package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rotulo/internal/services"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "login NAME",
		Short: "Record who is capturing inventory on this device",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := ctx.identityProvider()
			if err != nil {
				return err
			}
			session, err := provider.Login(strings.Join(args, " "), admin)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s\n", session.ActorName)
			if session.IsAdmin {
				fmt.Fprintln(out, "Administrative commands are unlocked")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "Unlock administrative commands (records delete, queue clear)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the device session",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := ctx.identityProvider()
			if err != nil {
				return err
			}
			if err := provider.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := ctx.identityProvider()
			if err != nil {
				return err
			}
			session, err := provider.Current()
			if errors.Is(err, services.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Operator: %s\n", session.ActorName)
			fmt.Fprintf(out, "Admin:    %s\n", yesNo(session.IsAdmin))
			fmt.Fprintf(out, "Since:    %s\n", session.LoggedInAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}

// requireSession resolves the active operator or explains how to create one.
func requireSession(ctx *commandContext) (string, bool, error) {
	provider, err := ctx.identityProvider()
	if err != nil {
		return "", false, err
	}
	session, err := provider.Current()
	if errors.Is(err, services.ErrNotFound) {
		return "", false, errors.New("not logged in; run `rotulo login NAME` first")
	}
	if err != nil {
		return "", false, err
	}
	return session.ActorName, session.IsAdmin, nil
}

// requireAdmin resolves the active operator and insists on admin rights.
func requireAdmin(ctx *commandContext) error {
	_, admin, err := requireSession(ctx)
	if err != nil {
		return err
	}
	if !admin {
		return errors.New("this command requires an admin session; run `rotulo login NAME --admin`")
	}
	return nil
}
