// FILE: fieldwisp/src/cmd/fieldwisp/commands/args.go
package commands

import "strings"

// SplitArgs separates the arguments a FlagSet knows from configuration
// overrides. known maps a flag name to whether it is boolean; non-boolean
// flags given as "--name value" take the following argument with them.
func SplitArgs(args []string, known map[string]bool) (flagArgs, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
			rest = append(rest, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		hasValue := false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
			hasValue = true
		}

		isBool, ok := known[name]
		if !ok {
			rest = append(rest, arg)
			continue
		}

		flagArgs = append(flagArgs, arg)
		if !isBool && !hasValue && i+1 < len(args) {
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}
	return flagArgs, rest
}
