// FILE: fieldwisp/src/cmd/fieldwisp/commands/help.go
package commands

import (
	"fmt"
	"strings"
)

const generalHelpTemplate = `fieldwisp: promotes Google Cloud Logging special fields out of structured log records.

Usage:
  fieldwisp [command] [options]
  fieldwisp [options] [--<config.key>=<value> ...]

Commands:
%s

Application Options:
  -c, --config <path>        Path to configuration file (default: ~/.config/fieldwisp.toml)
  -h, --help                 Display this help message and exit
  -v, --version              Display version information and exit
  -q, --quiet                Suppress all console output, including errors
      --log-level <level>    Log level: debug, info, warn, error (overrides config)
      --log-output <mode>    Log output: file, stdout, stderr, both, none (overrides config)
      --disable-status-reporter  Disable the periodic status reporter

Any other --key=value argument overrides the configuration tree, e.g.
  --pipelines.0.format.type=msgpack

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  - CLI arguments override all other settings
  - FIELDWISP_* environment variables override file settings
  - TOML configuration file is the primary method

Signals:
  SIGINT, SIGTERM            Drain queued records and exit
  SIGUSR1                    Log a status report immediately

Examples:
  # Rewrite JSON lines from a pipe
  producer | fieldwisp > promoted.log

  # Validate a config and write out the effective settings
  fieldwisp check -c /etc/fieldwisp.toml --save /tmp/effective.toml
`

// HelpCommand handles the display of general or command-specific help messages.
type HelpCommand struct {
	router *CommandRouter
}

func NewHelpCommand(router *CommandRouter) *HelpCommand {
	return &HelpCommand{router: router}
}

func (c *HelpCommand) Execute(args []string) error {
	if len(args) > 0 && args[0] != "" {
		if handler, exists := c.router.GetCommand(args[0]); exists {
			fmt.Print(handler.Help())
			return nil
		}
		return fmt.Errorf("unknown command: %s", args[0])
	}

	fmt.Printf(generalHelpTemplate, c.formatCommandList())
	return nil
}

func (c *HelpCommand) Description() string {
	return "Display help information"
}

func (c *HelpCommand) Help() string {
	return `Help Command - Display help information

Usage:
  fieldwisp help [command]
`
}

func (c *HelpCommand) formatCommandList() string {
	names := c.router.names()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		handler, _ := c.router.GetCommand(name)
		lines = append(lines, fmt.Sprintf("  %-10s %s", name, handler.Description()))
	}
	return strings.Join(lines, "\n")
}
