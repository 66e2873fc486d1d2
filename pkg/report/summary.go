package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/gnana997/importi/pkg/indexer"
	"github.com/gnana997/importi/pkg/usage"
)

// Summary writes a table of scan and result counts to w.
// stats may be nil.
func Summary(w io.Writer, result *usage.Result, stats *indexer.ScanStats) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"Metric", "Value"})

	if stats != nil {
		tbl.AppendRows([]table.Row{
			{"Files scanned", stats.FilesIndexed},
			{"Import specifiers", stats.ImportsExtracted},
			{"Exported declarations", stats.ExportsExtracted},
			{"Components", stats.ComponentsFound},
		})
		if stats.CacheHits > 0 {
			tbl.AppendRow(table.Row{"Cached files", stats.CacheHits})
		}
		tbl.AppendSeparator()
	}

	tbl.AppendRows([]table.Row{
		{"Unused intrafaces", len(result.UnusedExports)},
		{"Unused components", len(result.UnusedComponents)},
	})

	if stats != nil {
		tbl.AppendFooter(table.Row{"Duration", fmt.Sprintf("%d ms", stats.TotalTimeMs)})
	}

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
