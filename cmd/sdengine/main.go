// Command sdengine documents the CLI contract this engine is meant to sit
// behind (import/run/export/diff) without implementing it: CLI/FFI
// bindings are out of scope for this core (see DESIGN.md and
// SPEC_FULL.md's NON-GOALS). It exists so the contract — subcommand
// names, flags, and the non-zero-exit-on-error convention — has one
// place to live rather than being scattered across doc comments.
package main

import (
	"flag"
	"fmt"
	"os"
)

// subcommands lists the CLI surface a future front-end would implement
// on top of this package's compile/vm/ltm/layout/persist APIs.
var subcommands = map[string]string{
	"import": "read an XMILE/MDL source into a datamodel.Project (out of scope: serializer import)",
	"run":    "compile and simulate a project, writing the resulting series via persist.SeriesWriter",
	"export": "write a project back out as XMILE/MDL (out of scope: serializer export)",
	"diff":   "compare two simulation runs or two projects (out of scope: JSON patch layer)",
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	if _, ok := subcommands[args[0]]; !ok {
		fmt.Fprintf(os.Stderr, "sdengine: unknown subcommand %q\n", args[0])
		usage()
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "sdengine: %q is not implemented; this binary documents the CLI contract only\n", args[0])
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sdengine <subcommand> [flags]")
	fmt.Fprintln(os.Stderr, "\nsubcommands:")
	for _, name := range []string{"import", "run", "export", "diff"} {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, subcommands[name])
	}
}
