// Package config collects the run's inputs.
//
// Inputs come from four layers, highest precedence first:
//
//  1. command-line flags that were explicitly set
//  2. INPUT_<NAME> environment variables, as set by the GitHub Actions runner
//  3. an optional Lua config file
//  4. built-in defaults
//
// # Lua config files
//
// A config file is evaluated in a sandboxed gopher-lua VM with only the base,
// string, table and math libraries available. It must define a global "sbom"
// table whose keys are input names with dashes written as underscores:
//
//	sbom = {
//	  version = "^1.4.0",
//	  json = true,
//	  output = platform.is_windows and "bom.json" or "./bom.json",
//	  resolve_licenses = platform.when(not platform.is_windows, true),
//	}
//
// A read-only "platform" table describing the host is injected before the
// file runs. Entries that evaluate to nil are ignored.
//
// # Boolean inputs
//
// Boolean inputs accept the YAML 1.2 core schema spellings only:
// true, True, TRUE, false, False, FALSE. Anything else is ErrInvalidInput.
package config
