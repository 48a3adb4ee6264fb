// Command taxq queries XBRL taxonomies from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/xbrlmap/internal/core"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(1)
	}
}
