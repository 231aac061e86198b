// Package service runs the SBOM generation pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/cyclonedx"
	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/git"
)

// RequiredTool must be on PATH; cyclonedx-gomod shells out to it.
const RequiredTool = "go"

// ErrMissingDependency is returned when RequiredTool cannot be found.
var ErrMissingDependency = errors.New("required tool not found")

// Resolver maps a version specifier to a concrete version.
type Resolver interface {
	Resolve(ctx context.Context, spec string) (string, error)
}

// Installer makes a version of the generator available locally and
// returns the executable path.
type Installer interface {
	Install(ctx context.Context, version string) (string, error)
}

// Revisioner reports the revision of the analysed source tree.
type Revisioner interface {
	Head(ctx context.Context) (git.Revision, error)
}

// OutputSetter records step outputs.
type OutputSetter interface {
	Set(name, value string) error
}

// Dependencies are the collaborators of a Generator. Repo and Outputs are
// optional.
type Dependencies struct {
	Resolver  Resolver
	Installer Installer
	Runner    cyclonedx.ProcessRunner
	Repo      Revisioner
	Outputs   OutputSetter
	LookPath  func(file string) (string, error) // defaults to exec.LookPath
	Clock     Clock                             // defaults to RealClock
	Logger    *zap.SugaredLogger
}

// Generator runs one SBOM generation.
type Generator struct {
	resolver  Resolver
	installer Installer
	runner    cyclonedx.ProcessRunner
	repo      Revisioner
	outputs   OutputSetter
	lookPath  func(string) (string, error)
	clock     Clock
	log       *zap.SugaredLogger
}

// NewGenerator creates a generator with dependency injection.
func NewGenerator(deps Dependencies) *Generator {
	g := &Generator{
		resolver:  deps.Resolver,
		installer: deps.Installer,
		runner:    deps.Runner,
		repo:      deps.Repo,
		outputs:   deps.Outputs,
		lookPath:  deps.LookPath,
		clock:     deps.Clock,
		log:       deps.Logger,
	}
	if g.lookPath == nil {
		g.lookPath = exec.LookPath
	}
	if g.clock == nil {
		g.clock = RealClock{}
	}
	if g.log == nil {
		g.log = zap.NewNop().Sugar()
	}
	return g
}

// GenerateRequest contains the parameters of a run.
type GenerateRequest struct {
	Version string // "latest" or a semver range
	Options cyclonedx.Options
}

// GenerateResult describes a completed run.
type GenerateResult struct {
	Version    string
	BinaryPath string
	Args       []string
	Output     string
	SBOM       []byte // file contents when Output is a file
	Revision   git.Revision
	Elapsed    time.Duration
}

// Run executes the pipeline. The first failing stage ends the run.
func (g *Generator) Run(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	start := g.clock.Now()
	result := &GenerateResult{Output: req.Options.Output}
	if result.Output == "" {
		result.Output = cyclonedx.StdoutPath
	}

	// 1. Companion tool
	goPath, err := g.lookPath(RequiredTool)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not on PATH (install Go before this step): %w", ErrMissingDependency, RequiredTool, err)
	}
	g.log.Debugw("found required tool", "tool", RequiredTool, "path", goPath)

	// 2. Resolve
	version, err := g.resolver.Resolve(ctx, req.Version)
	if err != nil {
		return nil, fmt.Errorf("resolve version %q: %w", req.Version, err)
	}
	result.Version = version

	// 3. Install
	binPath, err := g.installer.Install(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("install cyclonedx-gomod %s: %w", version, err)
	}
	result.BinaryPath = binPath
	g.log.Infow("installed cyclonedx-gomod", "version", version, "path", binPath)

	// 4. Arguments
	result.Args = req.Options.Args()

	// 5. Execute
	g.log.Infow("generating SBOM", "args", result.Args)
	if err := g.runner.Run(ctx, binPath, result.Args); err != nil {
		return nil, err
	}

	// 6. Read back the output file
	if req.Options.WritesFile() {
		data, err := os.ReadFile(req.Options.Output)
		if err != nil {
			return nil, fmt.Errorf("read SBOM %s: %w", req.Options.Output, err)
		}
		result.SBOM = data
		g.log.Infow("SBOM written", "path", req.Options.Output, "bytes", len(data))
		g.log.Info(string(data))
	}

	// 7. Provenance and step outputs
	if g.repo != nil {
		rev, err := g.repo.Head(ctx)
		if err != nil {
			g.log.Debugw("no source revision", "error", err)
		} else {
			result.Revision = rev
			g.log.Infow("analysed revision", "commit", rev.Short(), "ref", rev.Ref)
		}
	}

	if g.outputs != nil {
		for _, o := range []struct{ name, value string }{
			{"version", result.Version},
			{"output", result.Output},
		} {
			if err := g.outputs.Set(o.name, o.value); err != nil {
				return nil, fmt.Errorf("set output %s: %w", o.name, err)
			}
		}
	}

	result.Elapsed = g.clock.Now().Sub(start)
	g.log.Debugw("run complete", "elapsed", result.Elapsed)

	return result, nil
}
