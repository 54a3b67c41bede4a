package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by types that can render themselves as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// PrintTable writes data as a formatted table to the writer.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(data.Headers())

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, row := range data.Rows() {
		table.Append(row)
	}

	table.Render()
	return nil
}

// KeyValueTable is a TableRenderer for an ordered set of key/value pairs,
// used for single-record results like GetServerStatus.
type KeyValueTable [][2]string

func (t KeyValueTable) Headers() []string { return []string{"FIELD", "VALUE"} }

func (t KeyValueTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, pair := range t {
		rows = append(rows, []string{pair[0], pair[1]})
	}
	return rows
}
