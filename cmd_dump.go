package main

import (
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var dumpCmd = &cobra.Command{
	Use:     "dump [flags] [path]",
	Example: "$ wmconf dump --format yaml Keys",
	Short:   "Write the parsed configuration in a machine readable format",
	Long: `
The dump command writes the parsed configuration tree as JSON, YAML or TOML to
standard output, so it can be processed by other programs.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return DumpConfig(os.Stdout, args)
	},
}

var dumpFormat string

func init() {
	RootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().VarP(newChoice(&dumpFormat, "json", "json", "yaml", "toml"), "format", "f", "output format (json, yaml, toml)")
}

// DumpConfig writes the configuration, or the section named by the path, to wr.
func DumpConfig(wr io.Writer, args []string) error {
	if len(args) > 1 {
		return errors.New("more than one path specified")
	}

	entries := dumpEntries(cfg)
	if len(args) == 1 {
		entry, err := lookup(cfg, args[0])
		if err != nil {
			return err
		}

		d := dumpEntry{Name: entry.Name(), Value: entry.Value()}
		if s := entry.Section(); s != nil {
			d.Section = true
			d.Entries = dumpEntries(s)
		}
		entries = []dumpEntry{d}
	}

	if entries == nil {
		entries = []dumpEntry{}
	}

	return writeDump(wr, dumpFormat, entries)
}

func writeDump(wr io.Writer, format string, entries []dumpEntry) error {
	switch format {
	case "json":
		buf, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return errors.Wrap(err, "marshal json")
		}
		_, err = wr.Write(append(buf, '\n'))
		return err

	case "yaml":
		enc := yaml.NewEncoder(wr)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return errors.Wrap(err, "marshal yaml")
		}
		return enc.Close()

	case "toml":
		// TOML documents are tables, the list needs a key
		doc := struct {
			Entry []dumpEntry `toml:"entry"`
		}{entries}

		buf, err := toml.Marshal(doc)
		if err != nil {
			return errors.Wrap(err, "marshal toml")
		}
		_, err = wr.Write(buf)
		return err
	}

	return errors.Errorf("unknown format %q", format)
}
