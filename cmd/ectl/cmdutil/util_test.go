package cmdutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-amule/amulec/internal/output"
)

type kvTable [][2]string

func (t kvTable) Headers() []string { return []string{"FIELD", "VALUE"} }
func (t kvTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, p := range t {
		rows = append(rows, []string{p[0], p[1]})
	}
	return rows
}

func withOutputFormat(t *testing.T, format string, fn func()) {
	t.Helper()
	prev := Flags.Output
	Flags.Output = format
	defer func() { Flags.Output = prev }()
	fn()
}

func TestGetOutputFormatParsed(t *testing.T) {
	withOutputFormat(t, "json", func() {
		f, err := GetOutputFormatParsed()
		require.NoError(t, err)
		assert.Equal(t, output.FormatJSON, f)
	})

	withOutputFormat(t, "bogus", func() {
		_, err := GetOutputFormatParsed()
		assert.Error(t, err)
	})
}

func TestIsColorDisabled(t *testing.T) {
	prev := Flags.NoColor
	defer func() { Flags.NoColor = prev }()

	Flags.NoColor = true
	assert.True(t, IsColorDisabled())
	Flags.NoColor = false
	assert.False(t, IsColorDisabled())
}

func TestPrintOutputJSON(t *testing.T) {
	withOutputFormat(t, "json", func() {
		var buf bytes.Buffer
		require.NoError(t, PrintOutput(&buf, map[string]int{"a": 1}, false, "", kvTable{}))
		assert.Contains(t, buf.String(), `"a": 1`)
	})
}

func TestPrintOutputTableEmpty(t *testing.T) {
	withOutputFormat(t, "table", func() {
		var buf bytes.Buffer
		require.NoError(t, PrintOutput(&buf, nil, true, "No results.", kvTable{}))
		assert.Equal(t, "No results.\n", buf.String())
	})
}

func TestPrintOutputTableWithData(t *testing.T) {
	withOutputFormat(t, "table", func() {
		var buf bytes.Buffer
		table := kvTable{{"ul_speed", "111"}}
		require.NoError(t, PrintOutput(&buf, nil, false, "", table))
		assert.Contains(t, buf.String(), "111")
	})
}

func TestParseHashArgs(t *testing.T) {
	_, err := ParseHashArgs(nil)
	assert.Error(t, err)

	hashes, err := ParseHashArgs([]string{"d41d8cd98f00b204e9800998ecf8427e"})
	require.NoError(t, err)
	assert.Len(t, hashes, 1)
}
