package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"jizhang/internal/frame"
)

type tableOut struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func tableOf(f frame.Frame) tableOut {
	grid := f.Strings()
	t := tableOut{Columns: []string{}, Rows: [][]string{}}
	if len(grid) > 0 {
		t.Columns = grid[0]
		t.Rows = grid[1:]
	}
	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeFrame prints f as aligned columns, or as JSON when asJSON is set.
// empty is printed instead of a table when f has no rows.
func writeFrame(w io.Writer, f frame.Frame, asJSON bool, empty string) error {
	t := tableOf(f)
	if asJSON {
		return writeJSON(w, t)
	}
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, empty)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
