package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rotulo/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the local durable queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued records in sync order",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.ReadAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.BusinessCode,
					item.SubmittedBy,
					strconv.Itoa(len(item.Attachments)),
					strconv.Itoa(item.PendingUploads()),
					item.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(queueListColumns, rows))
			return nil
		},
	}
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue size and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			network, err := ctx.probeReachability(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued records: %d\n", count)
			fmt.Fprintf(out, "Online:         %s\n", yesNo(network.Online()))
			fmt.Fprintf(out, "Database:       %s\n", store.Path())
			return nil
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove one queued record without syncing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(ctx); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.RemoveByID(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed item %d (no-op if it was already gone)\n", id)
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard every queued record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(ctx); err != nil {
				return err
			}
			if !force {
				return fmt.Errorf("refusing to discard queued records without --force")
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discarded %d queued records\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm discarding unsynced records")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run queue database diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			health, err := store.CheckHealth(cmd.Context())
			if err != nil {
				return err
			}
			printHealth(cmd, health)
			return nil
		},
	}
}

func printHealth(cmd *cobra.Command, health queue.DatabaseHealth) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database:  %s\n", health.DBPath)
	fmt.Fprintf(out, "Exists:    %s\n", yesNo(health.DatabaseExists))
	fmt.Fprintf(out, "Readable:  %s\n", yesNo(health.DatabaseReadable))
	fmt.Fprintf(out, "Schema:    %s\n", yesNo(health.TableExists))
	fmt.Fprintf(out, "Integrity: %s\n", yesNo(health.IntegrityCheck))
	fmt.Fprintf(out, "Items:     %d\n", health.TotalItems)
	if health.Error != "" {
		fmt.Fprintf(out, "Error:     %s\n", health.Error)
	}
}
