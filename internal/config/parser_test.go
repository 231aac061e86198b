package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/platform"
)

func TestParser_ParseString(t *testing.T) {
	tests := []struct {
		name string
		code string
		want FileValues
	}{
		{
			name: "all value kinds",
			code: `sbom = {
				version = "^1.4.0",
				json = true,
				reproducible = false,
				download_retries = 3,
				output = "bom.json",
			}`,
			want: FileValues{
				"version":          "^1.4.0",
				"json":             "true",
				"reproducible":     "false",
				"download-retries": "3",
				"output":           "bom.json",
			},
		},
		{
			name: "empty table",
			code: `sbom = {}`,
			want: FileValues{},
		},
		{
			name: "nil entries skipped",
			code: `sbom = { version = "latest", module = nil }`,
			want: FileValues{"version": "latest"},
		},
		{
			name: "computed values",
			code: `local v = "1." .. tostring(4)
				sbom = { version = "~" .. v, type = string.lower("LIBRARY") }`,
			want: FileValues{"version": "~1.4", "type": "library"},
		},
	}

	parser := NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseString(context.Background(), tt.code)
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseString() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParser_ParseStringErrors(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantParse bool
		wantErr   error
	}{
		{name: "syntax error", code: `sbom = {`, wantParse: true},
		{name: "missing table", code: `x = 1`, wantParse: true},
		{name: "sbom not a table", code: `sbom = "latest"`, wantParse: true},
		{name: "runtime error", code: `error("boom")`, wantParse: true},
		{name: "unknown key", code: `sbom = { verison = "latest" }`, wantErr: ErrInvalidInput},
		{name: "config key rejected", code: `sbom = { config = "other.lua" }`, wantErr: ErrInvalidInput},
		{name: "table value", code: `sbom = { version = { "1.0.0" } }`, wantErr: ErrInvalidInput},
		{name: "array entry", code: `sbom = { "latest" }`, wantErr: ErrInvalidInput},
	}

	parser := NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseString(context.Background(), tt.code)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantParse {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("error = %T %v, want *ParseError", err, err)
				}
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParser_PlatformTable(t *testing.T) {
	detector := platform.StaticDetector{Info: &platform.Info{
		OS:     platform.OSWindows,
		Arch:   "x64",
		GOOS:   "windows",
		GOARCH: "amd64",
	}}

	code := `sbom = {
		version = "latest",
		output = platform.is_windows and "bom-win.json" or "bom.json",
		include_test = platform.when(platform.arch == "x64", true),
		resolve_licenses = platform.when(platform.is_linux, true),
	}`

	got, err := NewParser(detector).ParseString(context.Background(), code)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	want := FileValues{
		"version":      "latest",
		"output":       "bom-win.json",
		"include-test": "true",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseString() mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_PlatformTableReadOnly(t *testing.T) {
	detector := platform.StaticDetector{Info: &platform.Info{OS: "linux", Arch: "x64"}}

	_, err := NewParser(detector).ParseString(context.Background(), `platform.os = "win32"; sbom = {}`)
	if err == nil {
		t.Fatal("expected error writing to platform table")
	}
	if !strings.Contains(err.Error(), "read-only") {
		t.Errorf("error = %v, want read-only message", err)
	}
}

func TestParser_DetectorError(t *testing.T) {
	detector := platform.StaticDetector{Err: errors.New("no host")}

	_, err := NewParser(detector).ParseString(context.Background(), `sbom = {}`)
	if err == nil || !strings.Contains(err.Error(), "platform detection failed") {
		t.Errorf("error = %v, want platform detection failure", err)
	}
}

func TestParser_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewParser(nil).ParseString(ctx, `while true do end`)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestParser_TooLarge(t *testing.T) {
	code := "sbom = {}\n--" + strings.Repeat("x", MaxConfigSize)

	_, err := NewParser(nil).ParseString(context.Background(), code)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

func TestParser_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sbom.lua")
	if err := os.WriteFile(path, []byte(`sbom = { version = "^1.0.0" }`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewParser(nil).ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if got["version"] != "^1.0.0" {
		t.Errorf("version = %q", got["version"])
	}

	if _, err := NewParser(nil).ParseFile(context.Background(), filepath.Join(t.TempDir(), "absent.lua")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile(absent) error = %v, want os.ErrNotExist", err)
	}
}

func TestFileValuesNames(t *testing.T) {
	got := FileValues{"version": "1", "json": "true", "output": "-"}.Names()
	want := []string{"json", "output", "version"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseString_ErrorOmitsTraceback(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"runtime error", `local function fail() error("boom") end fail()`, "boom"},
		{"nested call", `local function a() error("deep") end local function b() a() end b()`, "deep"},
		{"syntax error", `sbom = {`, "Lua error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseString(context.Background(), tt.code)

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("ParseString() error = %v, want *ParseError", err)
			}
			if strings.Contains(err.Error(), "stack traceback") {
				t.Errorf("error contains traceback: %q", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
