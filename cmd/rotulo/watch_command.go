package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"rotulo/internal/connectivity"
	"rotulo/internal/daemon"
	"rotulo/internal/notifications"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run in the foreground and sync whenever connectivity returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			monitor := connectivity.NewMonitor(cfg, logger)
			rec, err := ctx.buildReconciler(store, monitor)
			if err != nil {
				store.Close()
				return err
			}

			d, err := daemon.New(cfg, store, monitor, rec, logger)
			if err != nil {
				store.Close()
				return err
			}
			if err := d.Start(cmd.Context()); err != nil {
				store.Close()
				return err
			}
			defer d.Close()

			status := d.Status(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching for connectivity (online: %s, queued: %d)\n",
				yesNo(status.Online), status.Pending)
			fmt.Fprintln(out, "Press Ctrl+C to stop")

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(signals)

			select {
			case <-cmd.Context().Done():
			case <-signals:
			}
			fmt.Fprintln(out, "Stopping")
			return nil
		},
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test push notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "ntfy topic not configured; set [notifications].ntfy_topic")
				return nil
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
