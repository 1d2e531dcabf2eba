package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rotulo/internal/services"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload queued records to the remote store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := requireSession(ctx); err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			pending, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			if pending == 0 {
				fmt.Fprintln(out, "Queue is empty; nothing to sync")
				return nil
			}

			network, err := ctx.probeReachability(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := ctx.buildReconciler(store, network)
			if err != nil {
				return err
			}

			report, err := rec.Reconcile(cmd.Context())
			if errors.Is(err, services.ErrOffline) {
				return errors.New("device is offline; connect to a network and retry")
			}
			if errors.Is(err, services.ErrAlreadyRunning) {
				return errors.New("a sync is already running")
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Synced %d of %d queued records in %s\n",
				report.Synced, pending, report.Duration.Round(time.Millisecond))
			for _, failure := range report.Failures {
				fmt.Fprintf(out, "  failed %s (item %d): %v\n", failure.BusinessCode, failure.ItemID, failure.Err)
			}
			if report.Pending > 0 {
				fmt.Fprintf(out, "%d records remain queued\n", report.Pending)
			}
			return nil
		},
	}
}
