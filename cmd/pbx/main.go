// Command pbx converts, lints, and inspects Xcode project.pbxproj files
// and the gids inside them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	fmt.Fprintln(os.Stderr, err)
	return codeError
}
