package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/binary"
	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/config"
	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/cyclonedx"
	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/ghaction"
	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/git"
	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/platform"
	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/release"
	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/service"
)

// app holds the process-level collaborators so tests can replace them.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	getenv   func(string) string
	lookPath func(string) (string, error)
	detector platform.Detector

	// downloadBaseURL overrides binary.DefaultBaseURL when set.
	downloadBaseURL string

	debug    bool
	log      *zap.SugaredLogger
	commands *ghaction.Commands
}

// run executes the command line and returns the process exit code. A
// failure is reported exactly once.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	a.reportFailure(err)
	return 1
}

func (a *app) reportFailure(err error) {
	switch {
	case ghaction.IsActions(a.getenv):
		if a.commands == nil {
			a.commands = ghaction.NewCommands(a.stdout)
		}
		a.commands.Error(err.Error())
	case a.log != nil:
		a.log.Error(err.Error())
		_ = a.log.Sync()
	default:
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
}

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gomod-sbom",
		Short: "Generate a CycloneDX SBOM for a Go module",
		Long: `gomod-sbom installs a release of cyclonedx-gomod matching a version
specifier and runs it against a Go module.

Every option can also be supplied as an INPUT_<NAME> environment variable,
which is how the GitHub Actions runner passes step inputs, or in a Lua
config file named by --config.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd.Context(), changedFlags(cmd.Flags()))
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	f := cmd.Flags()
	f.String(config.InputVersion, "", `cyclonedx-gomod version: "latest" or a semver range such as "^1.4.0"`)
	f.String(config.InputOutput, cyclonedx.StdoutPath, `output file, "-" for stdout`)
	f.String(config.InputType, cyclonedx.DefaultType, "component type: application, library, ...")
	f.String(config.InputModule, "", "path of the module to analyse")
	f.Bool(config.InputIncludeStdlib, false, "include the Go standard library")
	f.Bool(config.InputIncludeTest, false, "include test dependencies")
	f.Bool(config.InputJSON, false, "write JSON instead of XML")
	f.Bool(config.InputOmitSerialNumber, false, "omit the BOM serial number")
	f.Bool(config.InputOmitVersionPrefix, false, `omit the "v" prefix from versions`)
	f.Bool(config.InputReproducible, false, "omit non-deterministic data")
	f.Bool(config.InputResolveLicenses, false, "resolve module licenses")
	f.String(config.InputGitHubToken, "", "token for the GitHub releases API (default $GITHUB_TOKEN)")
	f.Bool(config.InputVerifyChecksums, false, "verify the archive against the release checksums")
	f.String(config.InputSigningKey, "", "armored OpenPGP key that signed the release checksums")
	f.Int(config.InputDownloadRetries, 0, "extra download attempts with exponential backoff")
	f.String(config.InputConfig, "", "Lua config file")
	f.BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// newVersionCmd prints the build version. The --version flag is taken by
// the cyclonedx-gomod version input.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gomod-sbom version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gomod-sbom %s\n", Version)
		},
	}
}

// changedFlags returns the explicitly set flags keyed by name.
func changedFlags(fs *pflag.FlagSet) map[string]string {
	flags := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "debug" {
			return
		}
		flags[f.Name] = f.Value.String()
	})
	return flags
}

// setupLogging builds the console logger. Under Actions, warnings and
// errors are mirrored as annotations and RUNNER_DEBUG enables debug output.
func (a *app) setupLogging() {
	level := zapcore.InfoLevel
	if a.debug || a.getenv("RUNNER_DEBUG") == "1" {
		level = zapcore.DebugLevel
	}

	a.log = newLogger(a.stderr, level)
	if ghaction.IsActions(a.getenv) {
		a.commands = ghaction.NewCommands(a.stdout)
		a.log = a.commands.Attach(a.log)
	}
}

func newLogger(w io.Writer, level zapcore.Level) *zap.SugaredLogger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.CallerKey = ""
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Sugar()
}

// createWorkDir creates a fresh per-run directory under root.
func createWorkDir(root string) (string, error) {
	dir := filepath.Join(root, "gomod-sbom-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	return dir, nil
}

// generate wires the pipeline from inputs and runs it.
func (a *app) generate(ctx context.Context, flags map[string]string) error {
	defer func() { _ = a.log.Sync() }()

	in, err := config.Load(ctx, config.Source{
		Flags:  flags,
		Getenv: a.getenv,
		Parser: config.NewParser(a.detector),
		Logger: a.log,
	})
	if err != nil {
		return err
	}
	if a.commands != nil {
		a.commands.AddMask(in.GitHubToken)
	}

	host, err := a.detector.Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}
	a.log.Debugw("detected host", "platform", host.String(), "goos", host.GOOS, "goarch", host.GOARCH)

	workDir, err := createWorkDir(in.TempRoot)
	if err != nil {
		return err
	}
	a.log.Debugw("work directory", "path", workDir)

	catalog := release.NewGitHubCatalog(release.CatalogConfig{
		APIURL: in.APIURL,
		Token:  in.GitHubToken,
	})
	resolver, err := release.NewResolver(catalog, release.DefaultPolicy(), a.log)
	if err != nil {
		return err
	}

	installer, err := binary.NewInstaller(binary.Config{
		WorkDir:         workDir,
		Host:            host,
		BaseURL:         a.downloadBaseURL,
		VerifyChecksums: in.VerifyChecksums,
		SigningKeyPath:  in.SigningKey,
		Retries:         in.DownloadRetries,
		Logger:          a.log,
	})
	if err != nil {
		return err
	}

	moduleDir := in.SBOM.Module
	if moduleDir == "" {
		moduleDir = "."
	}

	var runner cyclonedx.ProcessRunner = &cyclonedx.ExecRunner{Stdout: a.stdout, Stderr: a.stderr}
	if a.commands != nil {
		runner = groupedRunner{ProcessRunner: runner, commands: a.commands}
	}

	generator := service.NewGenerator(service.Dependencies{
		Resolver:  resolver,
		Installer: installer,
		Runner:    runner,
		Repo:      git.NewClient(moduleDir),
		Outputs:   ghaction.NewOutputs(a.getenv("GITHUB_OUTPUT")),
		LookPath:  a.lookPath,
		Logger:    a.log,
	})

	_, err = generator.Run(ctx, service.GenerateRequest{
		Version: in.Version,
		Options: in.SBOM,
	})
	return err
}

// groupedRunner folds the generator's output into a collapsible log group.
type groupedRunner struct {
	cyclonedx.ProcessRunner
	commands *ghaction.Commands
}

func (g groupedRunner) Run(ctx context.Context, path string, args []string) error {
	g.commands.Group(filepath.Base(path) + " " + strings.Join(args, " "))
	defer g.commands.EndGroup()
	return g.ProcessRunner.Run(ctx, path, args)
}
