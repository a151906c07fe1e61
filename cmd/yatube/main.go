package main

import (
	"fmt"
	"os"
)

// Version information, set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	root := newRootCommand()
	root.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
