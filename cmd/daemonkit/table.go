package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// detail is one row of the verbose status table.
type detail struct {
	field string
	value string
}

// detailValueWidth caps the value column so long command lines wrap.
const detailValueWidth = 72

// renderDetails lays details out as a FIELD/VALUE table, one string per line.
// Empty values render as "-".
func renderDetails(details []detail, colorize bool) []string {
	if len(details) == 0 {
		return nil
	}

	style := table.StyleRounded
	if colorize {
		style.Color.Header = text.Colors{text.FgBlue, text.Bold}
	}

	tw := table.NewWriter()
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"Field", "Value"})
	for _, d := range details {
		value := d.value
		if value == "" {
			value = "-"
		}
		tw.AppendRow(table.Row{d.field, value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: detailValueWidth, WidthMaxEnforcer: text.WrapHard},
	})

	return strings.Split(strings.TrimRight(tw.Render(), "\n"), "\n")
}
