package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// PrintYAML writes data as YAML to the writer.
//
// yaml.Encoder buffers its final document terminator until Close, so unlike
// json.Encoder a flush failure there is a real possibility, not just a
// defensive check; internal/wire/packet/packet.go's zlib writer guards
// against the same Close-time failure for the same reason, and this mirrors
// that.
func PrintYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(data); err != nil {
		_ = encoder.Close()
		return fmt.Errorf("output: yaml encode: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("output: yaml encode: %w", err)
	}
	return nil
}
