package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd is the base command when no other command has been specified.
var RootCmd = &cobra.Command{
	Use:   "wmconf",
	Short: "inspect window manager configuration files",
	Long: `
wmconf parses window manager configuration files, including all files and
command output they pull in, and shows the resulting tree of entries. Problems
in the files are reported with the file name and line number.
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: parseConfig,
}

func main() {
	cmd, err := RootCmd.ExecuteC()
	syncLogger()

	if err != nil {
		fmt.Printf("error: %v\n\n", err)
		cmd.Usage()
		os.Exit(1)
	}
}
