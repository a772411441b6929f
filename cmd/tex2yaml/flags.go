package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all command-line flags.
type cliFlags struct {
	config    string
	outDir    string
	workers   int
	check     bool
	normalize bool
	indexPath string
	assetPath string
	quiet     bool
	verbose   bool
	version   bool
}

const usageText = `Usage: tex2yaml [flags] <input>

Converts between two-column resume documents and their structured form.
Direction is inferred from the input extension: .tex files are parsed
to .yaml, .yaml/.yml files are generated back to .tex. Directories are
walked recursively.

Flags:
`

// parseFlags parses command-line arguments.
// Returns the flags, positional arguments, and any parse error.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("tex2yaml", flag.ContinueOnError)

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.outDir, "out-dir", "o", "", "output directory (default: next to input)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "worker count (0 = auto)")
	fs.BoolVar(&f.check, "check", false, "verify round-trip fidelity instead of writing output")
	fs.BoolVar(&f.normalize, "normalize", false, "normalize whitespace before parsing")
	fs.StringVar(&f.indexPath, "index", "", "build a content index database at this path")
	fs.StringVar(&f.assetPath, "asset-path", "", "override embedded parse configs and templates")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
