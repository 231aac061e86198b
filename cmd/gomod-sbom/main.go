package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/platform"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		detector: platform.NewDetector(),
	}
	code := a.run(ctx, os.Args[1:])

	stop()
	os.Exit(code)
}
