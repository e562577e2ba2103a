// FILE: fieldwisp/src/cmd/fieldwisp/signal.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/log"
)

// Manages OS signals
type SignalHandler struct {
	logger  *log.Logger
	sigChan chan os.Signal
	report  func()
}

// NewSignalHandler registers for termination signals and SIGUSR1, which
// triggers report without interrupting the pipelines.
func NewSignalHandler(logger *log.Logger, report func()) *SignalHandler {
	sh := &SignalHandler{
		logger:  logger,
		sigChan: make(chan os.Signal, 1),
		report:  report,
	}

	signal.Notify(sh.sigChan,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGUSR1,
	)

	return sh
}

// Handle blocks until a termination signal arrives, done is closed or ctx ends.
// It returns the signal, or nil when it did not stop on one.
func (sh *SignalHandler) Handle(ctx context.Context, done <-chan struct{}) os.Signal {
	for {
		select {
		case sig := <-sh.sigChan:
			if sig == syscall.SIGUSR1 {
				sh.logger.Info("msg", "Status report requested", "signal", sig)
				if sh.report != nil {
					sh.report()
				}
				continue
			}
			return sig
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (sh *SignalHandler) Stop() {
	signal.Stop(sh.sigChan)
}
