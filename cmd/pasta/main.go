// Command pasta wraps a subprocess in a pseudo-terminal and segments its
// interactive session into discrete, timed command captures.
package main

import "os"

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		return exitCodeFor(err)
	}
	return exitOK
}
