package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/cyclonedx"
)

// Source describes where inputs are read from.
type Source struct {
	// Flags holds command-line flags that were explicitly set, keyed by
	// input name.
	Flags map[string]string
	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
	// Parser evaluates the config file, if one is named. Defaults to a
	// parser without platform facts.
	Parser *Parser
	Logger *zap.SugaredLogger
}

// EnvName returns the environment variable the Actions runner uses for an
// input: upper-cased, spaces replaced with underscores, prefixed INPUT_.
func EnvName(input string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(input, " ", "_"))
}

// ParseBool parses a YAML 1.2 core schema boolean.
func ParseBool(name, value string) (bool, error) {
	switch value {
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	}
	return false, &ValidationError{
		Field:   name,
		Message: fmt.Sprintf("%q is not a boolean (use true or false)", value),
		Err:     ErrInvalidInput,
	}
}

type loader struct {
	flags  map[string]string
	getenv func(string) string
	file   FileValues
	log    *zap.SugaredLogger
}

// lookup returns the highest-precedence value for name.
func (l *loader) lookup(name string) (string, bool) {
	if v, ok := l.flags[name]; ok {
		l.log.Debugw("input set", "input", name, "source", "flag")
		return strings.TrimSpace(v), true
	}
	if v := strings.TrimSpace(l.getenv(EnvName(name))); v != "" {
		l.log.Debugw("input set", "input", name, "source", "env")
		return v, true
	}
	if v, ok := l.file[name]; ok {
		l.log.Debugw("input set", "input", name, "source", "config file")
		return strings.TrimSpace(v), true
	}
	return "", false
}

func (l *loader) str(name, def string) string {
	if v, ok := l.lookup(name); ok {
		return v
	}
	return def
}

func (l *loader) boolean(name string, dst *bool) error {
	v, ok := l.lookup(name)
	if !ok || v == "" {
		return nil
	}
	b, err := ParseBool(name, v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func (l *loader) count(name string, dst *int) error {
	v, ok := l.lookup(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return &ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%q is not a non-negative integer", v),
			Err:     ErrInvalidInput,
		}
	}
	*dst = n
	return nil
}

// Load resolves every input from src.
func Load(ctx context.Context, src Source) (*Inputs, error) {
	l := &loader{
		flags:  src.Flags,
		getenv: src.Getenv,
		log:    src.Logger,
	}
	if l.getenv == nil {
		l.getenv = os.Getenv
	}
	if l.log == nil {
		l.log = zap.NewNop().Sugar()
	}

	in := &Inputs{SBOM: cyclonedx.DefaultOptions()}

	in.ConfigFile = l.str(InputConfig, "")
	if in.ConfigFile != "" {
		parser := src.Parser
		if parser == nil {
			parser = NewParser(nil)
		}
		values, err := parser.WithLogger(l.log).ParseFile(ctx, in.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", in.ConfigFile, err)
		}
		l.file = values
	}

	in.Version = l.str(InputVersion, "")
	if in.Version == "" {
		return nil, &ValidationError{Field: InputVersion, Message: "a version specifier is required", Err: ErrMissingInput}
	}

	in.SBOM.Module = l.str(InputModule, "")
	in.SBOM.Output = l.str(InputOutput, cyclonedx.StdoutPath)
	in.SBOM.Type = l.str(InputType, cyclonedx.DefaultType)

	bools := []struct {
		name string
		dst  *bool
	}{
		{InputIncludeStdlib, &in.SBOM.IncludeStd},
		{InputIncludeTest, &in.SBOM.IncludeTest},
		{InputJSON, &in.SBOM.JSON},
		{InputOmitSerialNumber, &in.SBOM.NoSerialNumber},
		{InputOmitVersionPrefix, &in.SBOM.NoVersionPrefix},
		{InputReproducible, &in.SBOM.Reproducible},
		{InputResolveLicenses, &in.SBOM.ResolveLicenses},
		{InputVerifyChecksums, &in.VerifyChecksums},
	}
	for _, b := range bools {
		if err := l.boolean(b.name, b.dst); err != nil {
			return nil, err
		}
	}

	if err := l.count(InputDownloadRetries, &in.DownloadRetries); err != nil {
		return nil, err
	}

	in.SigningKey = l.str(InputSigningKey, "")
	in.GitHubToken = l.str(InputGitHubToken, l.getenv("GITHUB_TOKEN"))
	in.APIURL = l.getenv("GITHUB_API_URL")

	in.TempRoot = l.getenv("RUNNER_TEMP")
	if in.TempRoot == "" {
		in.TempRoot = os.TempDir()
	}

	return in, nil
}
