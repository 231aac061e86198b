package config

import "time"

// Input names, as declared by the action and used for flags.
const (
	InputIncludeStdlib     = "include-stdlib"
	InputIncludeTest       = "include-test"
	InputJSON              = "json"
	InputModule            = "module"
	InputOmitSerialNumber  = "omit-serial-number"
	InputOmitVersionPrefix = "omit-version-prefix"
	InputOutput            = "output"
	InputReproducible      = "reproducible"
	InputResolveLicenses   = "resolve-licenses"
	InputType              = "type"
	InputVersion           = "version"
	InputGitHubToken       = "github-token"
	InputVerifyChecksums   = "verify-checksums"
	InputSigningKey        = "signing-key"
	InputDownloadRetries   = "download-retries"
	InputConfig            = "config"
)

// fileInputs are the inputs a config file may set. InputConfig is excluded.
var fileInputs = map[string]bool{
	InputIncludeStdlib:     true,
	InputIncludeTest:       true,
	InputJSON:              true,
	InputModule:            true,
	InputOmitSerialNumber:  true,
	InputOmitVersionPrefix: true,
	InputOutput:            true,
	InputReproducible:      true,
	InputResolveLicenses:   true,
	InputType:              true,
	InputVersion:           true,
	InputGitHubToken:       true,
	InputVerifyChecksums:   true,
	InputSigningKey:        true,
	InputDownloadRetries:   true,
}

const (
	luaGlobalSBOM = "sbom"

	// MaxConfigSize bounds the size of a Lua config file.
	MaxConfigSize = 1 << 20

	defaultParseTimeout = 5 * time.Second
)
