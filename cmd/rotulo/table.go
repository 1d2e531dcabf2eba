package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableColumn describes one column of a CLI listing. Numeric columns
// (counts, quantities, queue IDs) render right-aligned.
type tableColumn struct {
	title   string
	numeric bool
}

// queueListColumns lays out `rotulo queue list`: one row per queued
// submission, with its attachment and pending-upload counts.
var queueListColumns = []tableColumn{
	{title: "ID", numeric: true},
	{title: "CODE"},
	{title: "BY"},
	{title: "PHOTOS", numeric: true},
	{title: "PENDING UPLOADS", numeric: true},
	{title: "CAPTURED"},
}

// recordListColumns lays out `rotulo records list` over the remote store.
var recordListColumns = []tableColumn{
	{title: "ID"},
	{title: "CODE"},
	{title: "FLOOR"},
	{title: "SERVICE"},
	{title: "TYPE"},
	{title: "QTY", numeric: true},
	{title: "PHOTOS", numeric: true},
	{title: "BY"},
	{title: "DATE"},
}

func renderTable(columns []tableColumn, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}
