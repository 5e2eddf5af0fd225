package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/fd0/wmconf/internal/keys"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [flags] path",
	Example: `$ wmconf get Screen/Workspaces --type int --min 1 --max 64
$ wmconf get 'Property:^dialog/Border' --type bool`,
	Short: "Print a single value",
	Long: `
The get command prints the value of a single entry. Path segments are separated
by slashes, a segment "Name:value" selects the section with the name and value.
With --type, the value is checked like the window manager would do it: invalid
values are replaced by the default or clamped to the bounds, and a warning is
printed.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("exactly one path must be specified")
		}
		return GetValue(os.Stdout, args[0], cmd.Flags().Changed("default"))
	},
}

var (
	getType    string
	getDefault string
	getMin     string
	getMax     string
)

func init() {
	RootCmd.AddCommand(getCmd)

	getCmd.Flags().VarP(newChoice(&getType, "", "int", "float", "bool", "string", "path"), "type", "t", "type of the value (int, float, bool, string, path)")
	getCmd.Flags().StringVarP(&getDefault, "default", "d", "", "value to use when the entry is missing or invalid")
	getCmd.Flags().StringVar(&getMin, "min", "", "lower bound, minimum length for strings")
	getCmd.Flags().StringVar(&getMax, "max", "", "upper bound, maximum length for strings")
}

// GetValue prints the value at path, validated according to the flags.
func GetValue(wr io.Writer, path string, haveDefault bool) error {
	raw := getDefault

	entry, err := lookup(cfg, path)
	switch {
	case err == nil:
		raw = entry.Value()
		D("%v is defined at %v:%d\n", path, entry.SourceName(), entry.Line())
	case !haveDefault:
		return err
	default:
		V("%v, using default\n", err)
	}

	key, format, err := newKey(path)
	if err != nil {
		return err
	}

	if key == nil {
		_, err = fmt.Fprintln(wr, raw)
		return err
	}

	if err := key.ParseValue(raw); err != nil {
		log.Warn(err.Error())
	}

	_, err = fmt.Fprintln(wr, format())
	return err
}

// newKey returns a key for the type selected by the flags and a function
// which formats the parsed value.
func newKey(name string) (keys.Key, func() string, error) {
	switch getType {
	case "":
		return nil, nil, nil

	case "int":
		def, min, max := 0, math.MinInt, math.MaxInt
		if err := parseFlags(&def, &min, &max, strconv.Atoi); err != nil {
			return nil, nil, err
		}

		var v int
		return keys.Int(name, &v, def, min, max), func() string { return strconv.Itoa(v) }, nil

	case "float":
		def, min, max := 0.0, math.Inf(-1), math.Inf(1)
		parse := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
		if err := parseFlags(&def, &min, &max, parse); err != nil {
			return nil, nil, err
		}

		var v float64
		return keys.Float(name, &v, def, min, max), func() string { return strconv.FormatFloat(v, 'g', -1, 64) }, nil

	case "bool":
		var def bool
		if getDefault != "" {
			if err := keys.Bool("default", &def, false).ParseValue(getDefault); err != nil {
				return nil, nil, err
			}
		}

		var v bool
		return keys.Bool(name, &v, def), func() string { return strconv.FormatBool(v) }, nil

	case "string":
		min, max := 0, 0
		if err := parseFlags(nil, &min, &max, strconv.Atoi); err != nil {
			return nil, nil, err
		}

		var v string
		return keys.String(name, &v, getDefault, min, max), func() string { return v }, nil

	case "path":
		var v string
		return keys.Path(name, &v, keys.ExpandHome(getDefault)), func() string { return v }, nil
	}

	return nil, nil, errors.Errorf("unknown type %q", getType)
}

// parseFlags parses the --default, --min and --max flags if they are set. A
// nil def leaves --default alone.
func parseFlags[T any](def, min, max *T, parse func(string) (T, error)) error {
	for _, f := range []struct {
		name  string
		value string
		out   *T
	}{
		{"default", getDefault, def},
		{"min", getMin, min},
		{"max", getMax, max},
	} {
		if f.value == "" || f.out == nil {
			continue
		}

		v, err := parse(f.value)
		if err != nil {
			return errors.Wrapf(err, "invalid --%v", f.name)
		}
		*f.out = v
	}

	return nil
}
