// Package cmdutil provides shared utilities for ectl commands: global flag
// storage, client construction, and output-format dispatch.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/go-amule/amulec"
	"github.com/go-amule/amulec/internal/output"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values, synced from cobra in
// root.go's PersistentPreRunE.
type GlobalFlags struct {
	Host          string
	Port          int
	Password      string
	ClientName    string
	ClientVersion string
	Output        string
	NoColor       bool
}

// Connect dials and authenticates a new Client using the current global
// flags. The caller is responsible for calling Disconnect.
func Connect() (*amulec.Client, error) {
	c := amulec.NewClient()
	if err := c.Connect(Flags.Host, Flags.Port, Flags.Password, Flags.ClientName, Flags.ClientVersion); err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", Flags.Host, Flags.Port, err)
	}
	return c, nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintOutput prints data in the configured format. For table format, it
// displays emptyMsg when isEmpty is true, otherwise renders tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table,
// colored green unless --no-color is set. JSON/YAML output has no room for
// a free-text success line, so other formats print nothing: the caller
// already got (or will get) a structured result to confirm the operation.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	if IsColorDisabled() {
		fmt.Fprintln(os.Stdout, msg)
		return
	}
	fmt.Fprintf(os.Stdout, "\033[32m%s\033[0m\n", msg)
}

// ParseHashArgs validates that at least one hash argument was given.
func ParseHashArgs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one file hash is required")
	}
	return args, nil
}
