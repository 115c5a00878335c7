package config

import (
	flag "github.com/spf13/pflag"
)

var CliArgs *CliConfig

type CliConfig struct {
	ConfigFile string
	Debug      bool
	Help       bool
	Version    bool
}

func ParseArgs() {
	if CliArgs != nil {
		panic("already defined")
	}
	CliArgs = &CliConfig{}
	flag.StringVarP(&CliArgs.ConfigFile, "config", "c", "", "Path to the config file")
	flag.BoolVarP(&CliArgs.Debug, "debug", "d", false, "Enable debug mode")
	flag.BoolVarP(&CliArgs.Help, "help", "h", false, "Print usage and exit")
	flag.BoolVarP(&CliArgs.Version, "version", "v", false, "Print version and exit")
	flag.Parse()
}
