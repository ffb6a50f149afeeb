package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		days      int
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize sales and restocks per item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := models.DateFilter{StartDate: startDate, EndDate: endDate}
			if cmd.Flags().Changed("days") {
				filter.Days = &days
			}

			rows, err := a.reporting.Summarize(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if a.format == "json" {
				return writeJSON(cmd, rows)
			}
			renderSummary(cmd, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Only include the last N days")
	cmd.Flags().StringVar(&startDate, "start", "", "Range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Range end date (YYYY-MM-DD)")

	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		date       string
		actual     int
		calculated int
	)

	cmd := &cobra.Command{
		Use:   "check <item>",
		Short: "Compare declared sales with calculated sales",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("actual") {
				return fmt.Errorf("--actual is required")
			}

			req := models.TheftCheckRequest{ItemName: args[0], Date: date, ActualSales: actual}
			if cmd.Flags().Changed("calculated") {
				req.CalculatedSales = &calculated
			}

			check, err := a.reporting.CheckTheft(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.format == "json" {
				return writeJSON(cmd, check)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: calculated %d, actual %d, difference %d [%s]\n%s\n",
				check.ItemName, check.CalculatedSales, check.ActualSales, check.Difference, check.Status, check.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Count date (YYYY-MM-DD), defaults to today")
	cmd.Flags().IntVar(&actual, "actual", 0, "Sales actually rung up")
	cmd.Flags().IntVar(&calculated, "calculated", 0, "Override the calculated sales instead of reading the ledger")

	return cmd
}
