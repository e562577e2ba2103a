// FILE: fieldwisp/src/internal/special/stats.go
package special

import (
	"sync/atomic"
)

// Stats accumulates extraction outcomes across records
type Stats struct {
	records          atomic.Uint64
	rewritten        atomic.Uint64
	insertIDs        atomic.Uint64
	insertIDsEmpty   atomic.Uint64
	operations       atomic.Uint64
	operationInvalid atomic.Uint64
	sourceLocations  atomic.Uint64
	httpRequests     atomic.Uint64
	latencyRejected  atomic.Uint64
	extraSubfields   atomic.Uint64
	timestamps       [TimestampInvalidTime + 1]atomic.Uint64
}

func (s *Stats) Record(rep Report) {
	s.records.Add(1)
	if rep.Changed() {
		s.rewritten.Add(1)
	}

	if rep.InsertID.Valid() {
		s.insertIDs.Add(1)
	} else if rep.InsertID.Found {
		s.insertIDsEmpty.Add(1)
	}

	if rep.Operation.Found {
		s.operations.Add(1)
		if !rep.Operation.Valid() {
			s.operationInvalid.Add(1)
		}
	}
	if rep.SourceLocation.Found {
		s.sourceLocations.Add(1)
	}
	if rep.HTTPRequest.Found {
		s.httpRequests.Add(1)
	}
	if rep.HTTPRequest.LatencyRejected {
		s.latencyRejected.Add(1)
	}

	extras := rep.Operation.ExtraCount + rep.SourceLocation.ExtraCount + rep.HTTPRequest.ExtraCount +
		rep.Timestamp.Extras.Len()
	if extras > 0 {
		s.extraSubfields.Add(uint64(extras))
	}

	if st := rep.Timestamp.Status; st >= 0 && int(st) < len(s.timestamps) {
		s.timestamps[st].Add(1)
	}
}

func (s *Stats) GetStats() map[string]any {
	timestamps := make(map[string]uint64, len(s.timestamps))
	for i := range s.timestamps {
		timestamps[TimestampStatus(i).String()] = s.timestamps[i].Load()
	}

	return map[string]any{
		"records":                 s.records.Load(),
		"rewritten":               s.rewritten.Load(),
		"insert_ids":              s.insertIDs.Load(),
		"insert_ids_empty":        s.insertIDsEmpty.Load(),
		"operations":              s.operations.Load(),
		"operations_invalid":      s.operationInvalid.Load(),
		"source_locations":        s.sourceLocations.Load(),
		"http_requests":           s.httpRequests.Load(),
		"latency_rejected":        s.latencyRejected.Load(),
		"extra_subfields":         s.extraSubfields.Load(),
		"timestamp_status_counts": timestamps,
	}
}
