package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// statusFixture is a minimal stand-in for a ServerStatus result record,
// exercising both the TableRenderer path and direct JSON/YAML marshaling.
type statusFixture struct {
	ULSpeed uint32 `json:"ul_speed" yaml:"ul_speed"`
	DLSpeed uint32 `json:"dl_speed" yaml:"dl_speed"`
}

func (s statusFixture) Headers() []string { return []string{"FIELD", "VALUE"} }

func (s statusFixture) Rows() [][]string {
	return [][]string{
		{"ul_speed", "111"},
		{"dl_speed", "222"},
	}
}

// TestOutputRoundTrip is the CLI round-trip smoke test: every output format
// applied to a fixed result record produces parseable output. There is no
// Printer here to route through — cmd/ectl/cmdutil.PrintOutput is the only
// caller, so the formats are exercised directly, the way that call site
// does it.
func TestOutputRoundTrip(t *testing.T) {
	fixture := statusFixture{ULSpeed: 111, DLSpeed: 222}

	for _, format := range []Format{FormatTable, FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			var err error
			switch format {
			case FormatJSON:
				err = PrintJSON(&buf, fixture)
			case FormatYAML:
				err = PrintYAML(&buf, fixture)
			case FormatTable:
				err = PrintTable(&buf, fixture)
			}
			require.NoError(t, err)
			assert.NotEmpty(t, buf.String())

			switch format {
			case FormatJSON:
				assert.Contains(t, buf.String(), `"ul_speed": 111`)
			case FormatYAML:
				assert.Contains(t, buf.String(), "ul_speed: 111")
			case FormatTable:
				assert.Contains(t, buf.String(), "111")
			}
		})
	}
}

// TestPrintYAMLEncodeError checks that a value yaml.v3 cannot encode (a bare
// channel, which has no YAML representation) surfaces as a wrapped error
// instead of a panic or silent truncation.
func TestPrintYAMLEncodeError(t *testing.T) {
	var buf bytes.Buffer
	err := PrintYAML(&buf, make(chan int))
	assert.Error(t, err)
}
