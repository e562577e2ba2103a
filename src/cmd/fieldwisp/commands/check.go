// FILE: fieldwisp/src/cmd/fieldwisp/commands/check.go
package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"fieldwisp/src/internal/config"
)

// CheckCommand validates the effective configuration without starting pipelines
type CheckCommand struct {
	output io.Writer
}

func NewCheckCommand() *CheckCommand {
	return &CheckCommand{output: os.Stdout}
}

var checkFlags = map[string]bool{
	"c":      false,
	"config": false,
	"save":   false,
}

func (c *CheckCommand) Execute(args []string) error {
	flagArgs, overrides := SplitArgs(args, checkFlags)

	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var configFile, savePath string
	fs.StringVar(&configFile, "config", "", "")
	fs.StringVar(&configFile, "c", "", "")
	fs.StringVar(&savePath, "save", "", "")
	if err := fs.Parse(flagArgs); err != nil {
		return err
	}

	if configFile != "" {
		os.Setenv("FIELDWISP_CONFIG_FILE", configFile)
	}

	cfg, err := config.LoadWithCLI(overrides)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Fprintf(c.output, "Configuration OK (%s)\n", config.GetConfigPath())
	for _, p := range cfg.Pipelines {
		rewrite := "on"
		if p.Transform != nil && p.Transform.Disabled {
			rewrite = "off"
		}
		fmt.Fprintf(c.output, "  pipeline %-16s sources=%d filters=%d sinks=%d format=%s rewrite=%s\n",
			p.Name, len(p.Sources), len(p.Filters), len(p.Sinks), p.Format.Type, rewrite)
	}

	if savePath != "" {
		if err := cfg.SaveToFile(savePath); err != nil {
			return err
		}
		fmt.Fprintf(c.output, "Effective configuration written to %s\n", savePath)
	}
	return nil
}

func (c *CheckCommand) Description() string {
	return "Validate configuration and optionally save the effective settings"
}

func (c *CheckCommand) Help() string {
	return `Check Command - Validate fieldwisp configuration

Usage:
  fieldwisp check [options] [--<config.key>=<value> ...]

Options:
  -c, --config <path>   Configuration file to validate
      --save <path>     Write the merged configuration (defaults, file,
                        environment and overrides) as TOML
`
}
