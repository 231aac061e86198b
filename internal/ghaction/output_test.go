package ghaction

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestOutputs_Set(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github-output")
	outputs := NewOutputs(path)

	if err := outputs.Set("version", "1.4.0"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := outputs.Set("output", "bom.json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "version=1.4.0\noutput=bom.json\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestOutputs_SetMultiline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github-output")

	if err := NewOutputs(path).Set("sbom", "line one\nline two"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	re := regexp.MustCompile(`^sbom<<(ghadelimiter_[0-9a-f-]{36})\nline one\nline two\n(ghadelimiter_[0-9a-f-]{36})\n$`)
	m := re.FindStringSubmatch(string(data))
	if m == nil {
		t.Fatalf("unexpected heredoc format: %q", data)
	}
	if m[1] != m[2] {
		t.Errorf("delimiters differ: %q vs %q", m[1], m[2])
	}
}

func TestOutputs_Disabled(t *testing.T) {
	outputs := NewOutputs("")
	if outputs.Enabled() {
		t.Error("Enabled() = true for empty path")
	}
	if err := outputs.Set("version", "1.0.0"); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestOutputs_InvalidName(t *testing.T) {
	outputs := NewOutputs(filepath.Join(t.TempDir(), "out"))
	for _, name := range []string{"", "a=b", "a\nb"} {
		if err := outputs.Set(name, "x"); err == nil {
			t.Errorf("Set(%q) expected error", name)
		}
	}
}
