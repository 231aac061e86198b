// Package ghaction speaks the GitHub Actions runner protocol: workflow
// commands on stdout and the $GITHUB_OUTPUT file.
package ghaction

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// IsActions reports whether the process runs under a GitHub Actions runner.
func IsActions(getenv func(string) string) bool {
	if getenv == nil {
		getenv = os.Getenv
	}
	return getenv("GITHUB_ACTIONS") == "true"
}

// Commands writes workflow commands.
type Commands struct {
	mu sync.Mutex
	w  io.Writer
}

// NewCommands creates a command writer. Commands must go to the stream the
// runner scans, normally os.Stdout.
func NewCommands(w io.Writer) *Commands {
	return &Commands{w: w}
}

// Warning emits a ::warning:: annotation.
func (c *Commands) Warning(msg string) {
	c.issue("warning", msg)
}

// Error emits an ::error:: annotation.
func (c *Commands) Error(msg string) {
	c.issue("error", msg)
}

// AddMask registers value as a secret so the runner redacts it from logs.
func (c *Commands) AddMask(value string) {
	if value == "" {
		return
	}
	c.issue("add-mask", value)
}

// Group starts a collapsible log group.
func (c *Commands) Group(title string) {
	c.issue("group", title)
}

// EndGroup closes the current log group.
func (c *Commands) EndGroup() {
	c.issue("endgroup", "")
}

func (c *Commands) issue(command, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, "::%s::%s\n", command, escapeData(msg))
}

// escapeData encodes the characters the runner treats as command syntax.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

// Hook returns a zap hook that mirrors warnings and errors as annotations.
// Install it with zap.Hooks.
func (c *Commands) Hook() func(zapcore.Entry) error {
	return func(entry zapcore.Entry) error {
		switch {
		case entry.Level >= zapcore.ErrorLevel:
			c.Error(entry.Message)
		case entry.Level == zapcore.WarnLevel:
			c.Warning(entry.Message)
		}
		return nil
	}
}

// Attach returns a copy of log that mirrors warnings and errors through c.
func (c *Commands) Attach(log *zap.SugaredLogger) *zap.SugaredLogger {
	return log.Desugar().WithOptions(zap.Hooks(c.Hook())).Sugar()
}
