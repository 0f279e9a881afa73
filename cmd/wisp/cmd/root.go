package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "wisp",
	Short: "Wisp interpreter",
	Long: `wisp runs programs written in the Wisp scripting language.

Wisp is a small dynamically-typed language: a source file is a set of
top-level declarations (functions, attributes, type aliases) plus an
optional script body, executed by a tree-walking interpreter.

When the file has free-standing top-level statements they run directly
as the script body; otherwise its 'main' function is invoked. A leading
'#script' comment is reported by --trace and does not change which of
the two runs.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
