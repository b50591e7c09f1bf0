// Command rosterctl edits a weekly service roster from the terminal. Each
// invocation is one editing session: it opens the roster, applies one
// operation and writes the session's audit record on exit.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
