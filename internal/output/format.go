// Package output renders ectl command results as a table, JSON, or YAML.
//
// There is deliberately no generic Printer type here: ectl has exactly one
// call site per format (cmd/ectl/cmdutil.PrintOutput), so the coloring and
// format-dispatch logic a general-purpose Printer would need lives there
// instead, next to the global --output/--no-color flags it reads.
package output

import (
	"fmt"
	"strings"
)

// Format is the output format selected by ectl's --output flag.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a string into a Format, returning an error if invalid.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}
