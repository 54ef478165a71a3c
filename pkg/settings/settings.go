// Package settings provides build metadata, per-run options, and context
// helpers used across the keytree CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "keytree"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"buildTime" yaml:"buildTime"`
}

// Run holds the options of a single CLI invocation.
type Run struct {
	MinLogLevel int8
	// ConfigFile is the resolved config path, "" for defaults only.
	ConfigFile string
	// Output is the output format name after flags and config are applied.
	Output string
	// InputPath is the forest file, "-" for stdin.
	InputPath   string
	IsQuiet     bool
	ExitOnError bool
}

// NewCliParams returns the defaults for a CLI run: info logging, the tree
// output and exit on error.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Output:      "tree",
		IsQuiet:     false,
		ExitOnError: true,
	}
}

// LogLevel maps the --debug flag to a zap level: debug (-1) or info (0).
func LogLevel(debug bool) int8 {
	if debug {
		return -1
	}
	return 0
}
