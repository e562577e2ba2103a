// FILE: fieldwisp/src/internal/special/rewriter.go
package special

import (
	"fmt"

	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/value"
)

// Options selects which special fields the rewriter handles
type Options struct {
	InsertID       bool
	Operation      bool
	SourceLocation bool
	HTTPRequest    bool
	Timestamp      bool
}

func DefaultOptions() Options {
	return Options{
		InsertID:       true,
		Operation:      true,
		SourceLocation: true,
		HTTPRequest:    true,
		Timestamp:      true,
	}
}

// OptionsWithSkip returns DefaultOptions with the named fields disabled.
func OptionsWithSkip(skip []string) (Options, error) {
	opts := DefaultOptions()
	for _, name := range skip {
		switch name {
		case FieldInsertID:
			opts.InsertID = false
		case FieldOperation:
			opts.Operation = false
		case FieldSourceLocation:
			opts.SourceLocation = false
		case FieldHTTPRequest:
			opts.HTTPRequest = false
		case FieldTimestamp:
			opts.Timestamp = false
		default:
			return opts, fmt.Errorf("unknown special field '%s'", name)
		}
	}
	return opts, nil
}

// Report carries the per-field extraction outcome of one record
type Report struct {
	InsertID       InsertID
	Operation      Operation
	SourceLocation SourceLocation
	HTTPRequest    HTTPRequest
	Timestamp      Timestamp
}

// Changed reports whether any field was consumed or the time overridden.
func (r Report) Changed() bool {
	return r.InsertID.Valid() ||
		r.Operation.Found ||
		r.SourceLocation.Found ||
		r.HTTPRequest.Found ||
		len(r.Timestamp.ConsumedKeys()) > 0
}

// Rewriter promotes special fields out of a record payload. It holds no
// mutable state and is safe for concurrent use.
type Rewriter struct {
	opts Options
}

func NewRewriter(opts Options) *Rewriter {
	return &Rewriter{opts: opts}
}

// Extract runs every enabled extractor against the same payload. The payload
// is not modified.
func (r *Rewriter) Extract(payload *value.Map) Report {
	var rep Report
	if r.opts.InsertID {
		rep.InsertID = ExtractInsertID(payload)
	}
	if r.opts.Operation {
		rep.Operation = ExtractOperation(payload)
	}
	if r.opts.SourceLocation {
		rep.SourceLocation = ExtractSourceLocation(payload)
	}
	if r.opts.HTTPRequest {
		rep.HTTPRequest = ExtractHTTPRequest(payload)
	}
	if r.opts.Timestamp {
		rep.Timestamp = ExtractTimestamp(payload)
	}
	return rep
}

// Rewrite returns a copy of entry with special fields promoted. The input
// entry's maps are left untouched.
func (r *Rewriter) Rewrite(entry core.LogEntry) (core.LogEntry, Report) {
	rep := r.Extract(entry.Payload)
	if !rep.Changed() {
		return entry, rep
	}

	out := entry
	promoted := entry.Promoted.Clone()
	if rep.InsertID.Valid() {
		promoted.Set(PromotedInsertID, value.String(rep.InsertID.Value))
	}
	if rep.Operation.Found {
		promoted.Set(PromotedOperation, rep.Operation.Value())
	}
	if rep.SourceLocation.Found {
		promoted.Set(PromotedSourceLocation, rep.SourceLocation.Value())
	}
	if rep.HTTPRequest.Found {
		promoted.Set(PromotedHTTPRequest, rep.HTTPRequest.Value())
	}

	actions := map[string]Subfields{
		OperationKey:      rep.Operation.Subfields,
		SourceLocationKey: rep.SourceLocation.Subfields,
		HTTPRequestKey:    rep.HTTPRequest.Subfields,
	}
	consumed := make(map[string]struct{}, 2)
	for _, k := range rep.Timestamp.ConsumedKeys() {
		consumed[k] = struct{}{}
	}
	if rep.InsertID.Valid() {
		consumed[InsertIDKey] = struct{}{}
	}

	payload := value.NewMap(entry.Payload.Len())
	entry.Payload.Range(func(k string, v value.Value) bool {
		if sf, ok := actions[k]; ok {
			switch sf.Action() {
			case ActionRemove:
				return true
			case ActionRepack:
				payload.Set(k, sf.Repacked())
				return true
			}
		}
		if _, ok := consumed[k]; ok {
			if k == TimestampKey && rep.Timestamp.Status == TimestampObject && rep.Timestamp.Extras.Len() > 0 {
				payload.Set(k, value.FromMap(rep.Timestamp.Extras.Clone()))
			}
			return true
		}
		if promoted.Has(k) {
			return true
		}
		payload.Set(k, v)
		return true
	})

	if t, ok := rep.Timestamp.Time(); ok {
		out.Time = t
	}
	out.Payload = payload
	out.Promoted = promoted
	return out, rep
}
