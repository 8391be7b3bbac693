package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fastertools/modelschemas/internal/aggregate"
	"github.com/fastertools/modelschemas/internal/openapi"
)

// summaryRow describes one published schema
type summaryRow struct {
	Schema  string `json:"schema"`
	Model   string `json:"model"`
	Origin  string `json:"origin"`
	Pointer string `json:"pointer"`
}

func summaryRows(reg *aggregate.Registry) []summaryRow {
	rows := make([]summaryRow, 0, reg.Len())
	for _, e := range reg.Entries() {
		rows = append(rows, summaryRow{
			Schema:  e.Name,
			Model:   e.Model,
			Origin:  string(e.Origin),
			Pointer: openapi.Pointer(e.Name),
		})
	}
	return rows
}

// writeSummary lists the published schemas in registry order, as an aligned
// table or a JSON array.
func writeSummary(w io.Writer, format string, reg *aggregate.Registry) error {
	rows := summaryRows(reg)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "SCHEMA\tMODEL\tORIGIN\tPOINTER")
		for _, r := range rows {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Schema, r.Model, r.Origin, r.Pointer)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported summary format %q: must be table or json", format)
	}
}
