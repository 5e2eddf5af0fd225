package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fd0/wmconf/internal/keys"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags]",
	Short: "Check the values of well-known sections",
	Long: `
The check command reads the Screen and Files sections the way the window manager
does: numbers are checked against their bounds, booleans and paths are parsed.
Invalid values are reported together with the value that is used instead.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return CheckConfig(os.Stdout)
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVarP(&ignoreDiagnostics, "ignore-diagnostics", "I", false, "do not fail on problems in the configuration")
}

// ScreenConfig contains the settings of the Screen section.
type ScreenConfig struct {
	Workspaces       int    `cfg:"Workspaces" min:"1" max:"64"`
	WorkspacesPerRow int    `cfg:"WorkspacesPerRow" min:"0" max:"64"`
	WorkspaceNames   string `cfg:"WorkspaceNames"`
	DoubleClickTime  int    `cfg:"DoubleClickTime" min:"0" max:"10000"`
	ShowFrameList    bool   `cfg:"ShowFrameList"`
	FocusNew         bool   `cfg:"FocusNew"`
}

// FilesConfig contains the settings of the Files section.
type FilesConfig struct {
	Keys  string `cfg:"Keys,path"`
	Menu  string `cfg:"Menu,path"`
	Theme string `cfg:"Theme,path"`
}

// CheckConfig binds the well-known sections and prints the resulting values.
func CheckConfig(wr io.Writer) error {
	screen := ScreenConfig{
		Workspaces:      4,
		DoubleClickTime: 250,
		ShowFrameList:   true,
	}
	var files FilesConfig

	sections := []struct {
		name   string
		target interface{}
	}{
		{"Screen", &screen},
		{"Files", &files},
	}

	var err error
	for _, s := range sections {
		section := cfg.FindSection(s.name, "")
		if section == nil {
			V("section %v not found, using defaults\n", s.name)
		}

		for _, e := range multierr.Errors(keys.Bind(section, s.target)) {
			err = multierr.Append(err, errors.WithMessage(e, s.name))
		}

		if _, e := fmt.Fprintf(wr, "%s: %+v\n", s.name, s.target); e != nil {
			return e
		}
	}

	for _, e := range multierr.Errors(err) {
		log.Warn(e.Error())
	}

	if n := len(multierr.Errors(err)); n > 0 && !ignoreDiagnostics {
		return errors.Errorf("found %d invalid value(s)", n)
	}

	return checkDiagnostics(ignoreDiagnostics)
}
