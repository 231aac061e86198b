// Package cyclonedx builds the command line for cyclonedx-gomod and runs it.
package cyclonedx

const (
	// StdoutPath makes cyclonedx-gomod write the SBOM to standard output.
	StdoutPath = "-"
	// DefaultType is the component type of the analysed module.
	DefaultType = "application"
)

// Options configures one cyclonedx-gomod invocation.
type Options struct {
	IncludeStd      bool   // include the Go standard library as a component
	IncludeTest     bool   // include test-only dependencies
	JSON            bool   // emit JSON instead of XML
	Module          string // path of the module to analyse, empty for the working directory
	NoSerialNumber  bool   // omit the BOM serial number
	NoVersionPrefix bool   // strip the "v" prefix from component versions
	Output          string // output file, StdoutPath for standard output
	Reproducible    bool   // omit timestamps and other non-deterministic data
	ResolveLicenses bool   // attempt to resolve module licenses
	Type            string // component type, e.g. "application" or "library"
}

// DefaultOptions returns options that write an application SBOM to stdout.
func DefaultOptions() Options {
	return Options{
		Output: StdoutPath,
		Type:   DefaultType,
	}
}

// Args returns the flags for o. -output and -type are always present;
// boolean flags appear only when set.
func (o Options) Args() []string {
	output := o.Output
	if output == "" {
		output = StdoutPath
	}
	typ := o.Type
	if typ == "" {
		typ = DefaultType
	}

	args := []string{"-output", output, "-type", typ}

	if o.IncludeStd {
		args = append(args, "-std")
	}
	if o.IncludeTest {
		args = append(args, "-test")
	}
	if o.JSON {
		args = append(args, "-json")
	}
	if o.Module != "" {
		args = append(args, "-module", o.Module)
	}
	if o.NoSerialNumber {
		args = append(args, "-noserial")
	}
	if o.NoVersionPrefix {
		args = append(args, "-novprefix")
	}
	if o.Reproducible {
		args = append(args, "-reproducible")
	}
	if o.ResolveLicenses {
		args = append(args, "-licenses")
	}

	return args
}

// BuildArgs is Options.Args as a function.
func BuildArgs(o Options) []string {
	return o.Args()
}

// WritesFile reports whether the SBOM goes to a file rather than stdout.
func (o Options) WritesFile() bool {
	return o.Output != "" && o.Output != StdoutPath
}
