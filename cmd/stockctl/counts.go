package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

func newSubmitCmd(a *app) *cobra.Command {
	var (
		current  string
		restocks string
		date     string
	)

	cmd := &cobra.Command{
		Use:   "submit <item>",
		Short: "Record today's count for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if current == "" {
				return fmt.Errorf("--current is required")
			}
			currentCount, err := models.ParseStrictInt(current)
			if err != nil {
				return fmt.Errorf("--current: %w", err)
			}
			restockCount, err := models.ParseStrictInt(restocks)
			if err != nil {
				return fmt.Errorf("--restocks: %w", err)
			}

			result, err := a.counting.RecordDailyCount(cmd.Context(), models.SubmitCount{
				ItemName:         args[0],
				CurrentCount:     currentCount,
				RestocksReceived: restockCount,
				Date:             date,
			})
			if err != nil {
				return err
			}

			if a.format == "json" {
				return writeJSON(cmd, result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			renderRecords(cmd, []models.CountRecord{result.Record})
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Counted stock on hand")
	cmd.Flags().StringVar(&restocks, "restocks", "0", "Units received since the previous count")
	cmd.Flags().StringVar(&date, "date", "", "Count date (YYYY-MM-DD), defaults to today")

	return cmd
}

func newTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "List counts recorded today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.counting.ListToday(cmd.Context())
			if err != nil {
				return err
			}
			if a.format == "json" {
				return writeJSON(cmd, records)
			}
			renderRecords(cmd, records)
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse the count history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.counting.ListHistory(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			if a.format == "json" {
				return writeJSON(cmd, result)
			}
			renderRecords(cmd, result.Data)
			p := result.Pagination
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d entries)\n", p.Page, p.TotalPages, p.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "Entries per page")

	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item> <date>",
		Short: "Delete the count of an item on a date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.counting.DeleteEntry(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s on %s\n", args[0], args[1])
			return nil
		},
	}
}
