// FILE: fieldwisp/src/internal/core/const.go
package core

// EventTime is the fluent forward protocol timestamp extension
const (
	EventTimeExtType = 0
	EventTimeExtLen  = 8
)

// Channel sizes shared by sources and sinks
const (
	DefaultSourceBufferSize = 1000
	DefaultSinkBufferSize   = 1000
)

// Max accepted single record size for line-oriented inputs
const MaxRecordSize = 10 * 1024 * 1024 // 10 MB
