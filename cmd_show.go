package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/fd0/wmconf/internal/tree"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show [flags] [path]",
	Example: "$ wmconf show -c ~/.pekwm/config Screen",
	Short:   "Parse and show a configuration",
	Long: `
The show command parses the configuration and prints the resulting tree, with
all files included, variables expanded and templates applied. When a path is
given, only the section it names is shown.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ShowConfig(args)
	},
}

var (
	// also show template definitions
	displayTemplates bool

	// do not fail when the parser reported problems
	ignoreDiagnostics bool
)

func init() {
	RootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVarP(&displayTemplates, "templates", "t", false, "also show template definitions")
	showCmd.Flags().BoolVarP(&ignoreDiagnostics, "ignore-diagnostics", "I", false, "do not fail on problems in the configuration")
}

var (
	printText    = color.New(color.FgWhite).PrintfFunc()
	printName    = color.New(color.FgHiBlue).PrintfFunc()
	printSection = color.New(color.FgHiRed).PrintfFunc()
	printDefine  = color.New(color.FgHiMagenta).PrintfFunc()
)

// ShowConfig prints the parsed configuration.
func ShowConfig(args []string) error {
	if len(args) > 1 {
		return errors.New("more than one path specified")
	}

	root := cfg
	if len(args) == 1 {
		entry, err := lookup(cfg, args[0])
		if err != nil {
			return err
		}

		if entry.Section() == nil {
			printEntry(0, entry)
			return checkDiagnostics(ignoreDiagnostics)
		}
		root = entry.Section()
	}

	if displayTemplates {
		for _, name := range ld.Templates() {
			printDefine("DEFINE")
			printText(" = %s {\n", quote(name))
			printEntries(1, ld.Template(name).Section())
			printText("}\n\n")
		}
	}

	printEntries(0, root)

	if debugOutput {
		var n int
		_ = root.Walk(func(depth int, e *tree.Entry) error {
			n++
			return nil
		})
		D("\n%d entries, files read:\n", n)
		for _, name := range ld.Files() {
			D("  %v\n", name)
		}
	}

	return checkDiagnostics(ignoreDiagnostics)
}

func printEntries(depth int, section *tree.Entry) {
	for _, e := range section.Entries() {
		printEntry(depth, e)
	}
}

func printEntry(depth int, e *tree.Entry) {
	indent := strings.Repeat("    ", depth)

	if e.Section() == nil {
		printName("%s%s", indent, e.Name())
		printText(" = %s\n", quote(e.Value()))
		return
	}

	printSection("%s%s", indent, e.Name())
	if e.Value() != "" {
		printText(" = %s", quote(e.Value()))
	}
	printText(" {\n")
	printEntries(depth+1, e.Section())
	printText("%s}\n", indent)
}
