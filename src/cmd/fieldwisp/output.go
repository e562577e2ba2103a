// FILE: fieldwisp/src/cmd/fieldwisp/output.go
package main

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Manages application console output respecting quiet mode. Record output
// from console sinks does not go through here.
type OutputHandler struct {
	quiet  bool
	mu     sync.RWMutex
	stderr io.Writer
}

// Global output handler instance
var output *OutputHandler

func InitOutputHandler(quiet bool) {
	output = &OutputHandler{
		quiet:  quiet,
		stderr: os.Stderr,
	}
}

// Writes to stderr if not in quiet mode
func (o *OutputHandler) Error(format string, args ...any) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !o.quiet {
		fmt.Fprintf(o.stderr, format, args...)
	}
}

// Writes to stderr and exits (respects quiet mode)
func (o *OutputHandler) FatalError(code int, format string, args ...any) {
	o.Error(format, args...)
	os.Exit(code)
}

func Error(format string, args ...any) {
	if output != nil {
		output.Error(format, args...)
	}
}

func FatalError(code int, format string, args ...any) {
	if output != nil {
		output.FatalError(code, format, args...)
	} else {
		fmt.Fprintf(os.Stderr, format, args...)
		os.Exit(code)
	}
}
