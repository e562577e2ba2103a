// FILE: fieldwisp/src/cmd/fieldwisp/commands/router.go
package commands

import (
	"fmt"
	"os"
	"sort"
)

// Handler defines the interface required for all subcommands.
type Handler interface {
	Execute(args []string) error
	Description() string
	Help() string
}

// CommandRouter handles the routing of CLI arguments to the appropriate subcommand handler.
type CommandRouter struct {
	commands map[string]Handler
}

// NewCommandRouter creates and initializes the command router with all available commands.
func NewCommandRouter() *CommandRouter {
	router := &CommandRouter{
		commands: make(map[string]Handler),
	}

	router.commands["check"] = NewCheckCommand()
	router.commands["version"] = NewVersionCommand()
	router.commands["help"] = NewHelpCommand(router)

	return router
}

// Route checks for and executes a subcommand based on the provided CLI arguments.
// The returned bool is true when a command handled the invocation.
func (r *CommandRouter) Route(args []string) (bool, error) {
	if len(args) < 2 {
		return false, nil
	}

	cmdName := args[1]

	// Help flag at any position
	for _, arg := range args[1:] {
		if arg == "-h" || arg == "--help" {
			if handler, exists := r.commands[cmdName]; exists && cmdName != "help" {
				fmt.Print(handler.Help())
				return true, nil
			}
			return true, r.commands["help"].Execute(nil)
		}
	}

	handler, exists := r.commands[cmdName]
	if !exists {
		if cmdName != "" && cmdName[0] != '-' {
			return false, fmt.Errorf("unknown command: %s\n\nRun 'fieldwisp help' for usage", cmdName)
		}
		// A flag, the main app handles it
		return false, nil
	}

	return true, handler.Execute(args[2:])
}

// GetCommand returns a specific command handler by its name.
func (r *CommandRouter) GetCommand(name string) (Handler, bool) {
	cmd, exists := r.commands[name]
	return cmd, exists
}

// names returns the registered command names in sorted order
func (r *CommandRouter) names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShowCommands displays a list of available subcommands to stderr.
func (r *CommandRouter) ShowCommands() {
	for _, name := range r.names() {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, r.commands[name].Description())
	}
	fmt.Fprintln(os.Stderr, "\nUse 'fieldwisp <command> --help' for command-specific help")
}
