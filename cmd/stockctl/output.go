package main

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func renderRecords(cmd *cobra.Command, records []models.CountRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Date", "Item", "Starting", "Restocks", "Current", "Sold"})
	for _, rec := range records {
		t.AppendRow(table.Row{rec.Date, rec.ItemName, rec.YesterdayCount, rec.RestocksReceived, rec.CurrentCount, rec.SoldCalculated})
	}
	t.SetColumnConfigs(numericColumns(3, 4, 5, 6))
	t.Render()
}

func renderSummary(cmd *cobra.Command, rows []models.SummaryRow) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Item", "Sold", "Restocked", "Avg Start", "Total Stock", "Current", "Days", "Turnover %"})
	for _, row := range rows {
		t.AppendRow(table.Row{
			row.ItemName,
			row.TotalSold,
			row.TotalRestocked,
			row.AvgStartingStock,
			row.TotalStock,
			row.CurrentStock,
			row.DaysTracked,
			row.TurnoverRate,
		})
	}
	t.SetColumnConfigs(numericColumns(2, 3, 4, 5, 6, 7, 8))
	t.Render()
}

func numericColumns(numbers ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(numbers))
	for _, n := range numbers {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	return configs
}
