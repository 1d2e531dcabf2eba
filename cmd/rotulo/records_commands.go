package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Browse and manage records in the remote store",
	}

	recordsCmd.AddCommand(newRecordsListCommand(ctx))
	recordsCmd.AddCommand(newRecordsDeleteCommand(ctx))
	return recordsCmd
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List records stored remotely",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.recordStore()
			if err != nil {
				return err
			}
			records, err := client.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No records stored remotely")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.StoreID,
					record.Code,
					record.Floor,
					record.ServiceArea,
					record.SignalType,
					strconv.Itoa(record.Quantity),
					strconv.Itoa(len(record.PhotoURLs)),
					record.SubmittedBy,
					record.Date,
				})
			}
			fmt.Fprintln(out, renderTable(recordListColumns, rows))
			return nil
		},
	}
}

func newRecordsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a remote record by its store ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAdmin(ctx); err != nil {
				return err
			}
			client, err := ctx.recordStore()
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %s\n", args[0])
			return nil
		},
	}
}
