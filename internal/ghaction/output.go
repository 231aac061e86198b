package ghaction

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Outputs appends step outputs to the $GITHUB_OUTPUT file.
type Outputs struct {
	path string
}

// NewOutputs creates an output writer for path. An empty path discards
// outputs, which is the case outside a runner.
func NewOutputs(path string) *Outputs {
	return &Outputs{path: path}
}

// Enabled reports whether outputs are recorded.
func (o *Outputs) Enabled() bool {
	return o.path != ""
}

// Set records a step output. Multi-line values use a random heredoc
// delimiter.
func (o *Outputs) Set(name, value string) error {
	if !o.Enabled() {
		return nil
	}
	if name == "" || strings.ContainsAny(name, "\r\n=") {
		return fmt.Errorf("invalid output name %q", name)
	}

	var entry string
	if strings.ContainsAny(value, "\r\n") {
		delimiter := "ghadelimiter_" + uuid.NewString()
		if strings.Contains(value, delimiter) {
			return fmt.Errorf("output %s contains its delimiter", name)
		}
		entry = fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
	} else {
		entry = fmt.Sprintf("%s=%s\n", name, value)
	}

	f, err := os.OpenFile(o.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	if _, err := f.WriteString(entry); err != nil {
		_ = f.Close()
		return fmt.Errorf("write output %s: %w", name, err)
	}
	return f.Close()
}
