// FILE: fieldwisp/src/internal/source/source.go
package source

import (
	"sync"
	"sync/atomic"
	"time"

	"fieldwisp/src/internal/core"

	"github.com/lixenwraith/log"
)

// Source represents an input data stream
type Source interface {
	// Subscribe returns a channel that receives log entries
	Subscribe() <-chan core.LogEntry

	// Start begins reading from the source
	Start() error

	// Stop gracefully shuts down the source and closes subscriber channels
	Stop()

	// GetStats returns source statistics
	GetStats() SourceStats
}

// SourceStats contains statistics about a source
type SourceStats struct {
	Type           string
	TotalEntries   uint64
	DroppedEntries uint64
	InvalidEntries uint64
	StartTime      time.Time
	LastEntryTime  time.Time
	Details        map[string]any
}

// fanout delivers entries to every subscriber without blocking the reader
type fanout struct {
	component   string
	bufferSize  int64
	subscribers []chan core.LogEntry
	mu          sync.RWMutex
	closed      bool
	logger      *log.Logger

	totalEntries   atomic.Uint64
	droppedEntries atomic.Uint64
	invalidEntries atomic.Uint64
	startTime      time.Time
	lastEntryTime  atomic.Value // time.Time
}

func newFanout(component string, bufferSize int64, logger *log.Logger) *fanout {
	if bufferSize <= 0 {
		bufferSize = core.DefaultSourceBufferSize
	}
	f := &fanout{
		component:  component,
		bufferSize: bufferSize,
		logger:     logger,
		startTime:  time.Now(),
	}
	f.lastEntryTime.Store(time.Time{})
	return f
}

func (f *fanout) Subscribe() <-chan core.LogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan core.LogEntry, f.bufferSize)
	f.subscribers = append(f.subscribers, ch)
	return ch
}

func (f *fanout) publish(entry core.LogEntry) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return
	}

	f.totalEntries.Add(1)
	f.lastEntryTime.Store(entry.Time)

	for _, ch := range f.subscribers {
		select {
		case ch <- entry:
		default:
			f.droppedEntries.Add(1)
			f.logger.Debug("msg", "Dropped log entry - subscriber buffer full",
				"component", f.component)
		}
	}
}

// publishWait delivers entry to every subscriber, waiting for buffer space.
// It gives up and returns false once stop is closed.
func (f *fanout) publishWait(entry core.LogEntry, stop <-chan struct{}) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return false
	}

	f.totalEntries.Add(1)
	f.lastEntryTime.Store(entry.Time)

	for _, ch := range f.subscribers {
		select {
		case ch <- entry:
		case <-stop:
			f.droppedEntries.Add(1)
			return false
		}
	}
	return true
}

func (f *fanout) invalid(err error) {
	f.invalidEntries.Add(1)
	f.logger.Warn("msg", "Discarding undecodable record",
		"component", f.component,
		"error", err)
}

func (f *fanout) closeSubscribers() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for _, ch := range f.subscribers {
		close(ch)
	}
}

func (f *fanout) stats(typ string, details map[string]any) SourceStats {
	lastEntry, _ := f.lastEntryTime.Load().(time.Time)
	return SourceStats{
		Type:           typ,
		TotalEntries:   f.totalEntries.Load(),
		DroppedEntries: f.droppedEntries.Load(),
		InvalidEntries: f.invalidEntries.Load(),
		StartTime:      f.startTime,
		LastEntryTime:  lastEntry,
		Details:        details,
	}
}
