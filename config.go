package main

import (
	"github.com/BurntSushi/xdg"
	"github.com/fd0/wmconf/internal/config"
	"github.com/fd0/wmconf/internal/loader"
	"github.com/fd0/wmconf/internal/tree"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	configText  string
	noOverwrite bool
)

var configPaths = xdg.Paths{XDGSuffix: "wmconf"}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file to read (default is $XDG_CONFIG_HOME/wmconf/config)")
	RootCmd.PersistentFlags().StringVarP(&configText, "expr", "e", "", "parse `text` instead of a config file")
	RootCmd.PersistentFlags().BoolVar(&noOverwrite, "no-overwrite", false, "keep entries with the same name instead of merging them")
}

const configFileName = "config"

var (
	ld  *loader.Loader
	cfg *tree.Entry
)

// initConfig finds the configuration file.
func initConfig() {
	if configFile != "" || configText != "" {
		return
	}

	var err error
	configFile, err = configPaths.ConfigFile(configFileName)
	if err != nil {
		V("%v\n", err)
		return
	}

	V("config file is %q\n", configFile)
}

func parseConfig(cmd *cobra.Command, args []string) error {
	if err := initLogger(); err != nil {
		return err
	}

	opts := []loader.Option{
		loader.WithLogger(log),
		loader.WithOverwrite(!noOverwrite),
	}

	name := configFile
	switch {
	case configText != "":
		name = configText
		opts = append(opts, loader.WithSourceType(config.SourceString))
	case configFile == "":
		return errors.New("no config file found, use --config to specify one")
	default:
		V("load config file %q\n", configFile)
	}

	ld = loader.New(name, opts...)

	root, err := ld.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	cfg = root

	V("read %d file(s), %d diagnostic(s)\n", len(ld.Files()), len(ld.Diagnostics()))
	return nil
}
