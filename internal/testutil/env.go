// Package testutil provides utilities for running tests in an isolated
// Actions-like environment.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/config"
)

// Env describes the isolated environment created by SetupTestEnv.
type Env struct {
	TempDir    string // RUNNER_TEMP
	OutputFile string // GITHUB_OUTPUT
	Workspace  string // GITHUB_WORKSPACE
}

// runnerVars are cleared so tests never see the host's Actions settings.
var runnerVars = []string{
	"GITHUB_ACTIONS",
	"GITHUB_TOKEN",
	"GITHUB_API_URL",
	"GITHUB_OUTPUT",
	"GITHUB_WORKSPACE",
	"RUNNER_TEMP",
}

// SetupTestEnv clears every INPUT_* variable and points the runner
// variables at fresh temp directories. Values are restored by t.Setenv.
func SetupTestEnv(t *testing.T) Env {
	t.Helper()

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "INPUT_") {
			t.Setenv(key, "")
		}
	}
	for _, key := range runnerVars {
		t.Setenv(key, "")
	}

	tmpDir := t.TempDir()
	env := Env{
		TempDir:    filepath.Join(tmpDir, "runner-temp"),
		OutputFile: filepath.Join(tmpDir, "github-output"),
		Workspace:  filepath.Join(tmpDir, "workspace"),
	}

	for _, dir := range []string{env.TempDir, env.Workspace} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(env.OutputFile, nil, 0o600); err != nil {
		t.Fatalf("failed to create output file: %v", err)
	}

	t.Setenv("RUNNER_TEMP", env.TempDir)
	t.Setenv("GITHUB_OUTPUT", env.OutputFile)
	t.Setenv("GITHUB_WORKSPACE", env.Workspace)

	return env
}

// SetInputs sets action inputs the way the runner does.
func SetInputs(t *testing.T, inputs map[string]string) {
	t.Helper()

	for name, value := range inputs {
		t.Setenv(config.EnvName(name), value)
	}
}
