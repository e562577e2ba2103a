// FILE: fieldwisp/src/internal/special/extract_test.go
package special

import (
	"testing"

	"fieldwisp/src/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePayload(t *testing.T, js string) *value.Map {
	t.Helper()
	v, err := value.ParseJSON([]byte(js))
	require.NoError(t, err)
	m, ok := v.AsMap()
	require.True(t, ok, "payload must be an object")
	return m
}

func jsonOf(v value.Value) string {
	return string(value.AppendJSON(nil, v))
}

func TestExtractOperation(t *testing.T) {
	t.Run("CommonCase", func(t *testing.T) {
		op := ExtractOperation(parsePayload(t, `{"logging.googleapis.com/operation":{"id":"test_id","producer":"test_producer","first":true,"last":true}}`))
		assert.True(t, op.Found)
		assert.True(t, op.Valid())
		assert.Equal(t, "test_id", op.ID)
		assert.Equal(t, "test_producer", op.Producer)
		assert.True(t, op.First)
		assert.True(t, op.Last)
		assert.Equal(t, 0, op.ExtraCount)
		assert.Equal(t, ActionRemove, op.Action())
	})

	t.Run("EmptyOperation", func(t *testing.T) {
		op := ExtractOperation(parsePayload(t, `{"logging.googleapis.com/operation":{}}`))
		assert.True(t, op.Found)
		assert.False(t, op.Valid())
		assert.Equal(t, ActionRemove, op.Action())
		assert.Equal(t, `{"id":"","producer":"","first":false,"last":false}`, jsonOf(op.Value()))
	})

	t.Run("OperationInString", func(t *testing.T) {
		op := ExtractOperation(parsePayload(t, `{"logging.googleapis.com/operation":"some string"}`))
		assert.False(t, op.Found)
		assert.Equal(t, ActionLeave, op.Action())
	})

	t.Run("EmptySubfields", func(t *testing.T) {
		op := ExtractOperation(parsePayload(t, `{"logging.googleapis.com/operation":{"id":"","producer":"","first":false,"last":false}}`))
		assert.True(t, op.Found)
		assert.False(t, op.Valid())
		assert.Equal(t, 0, op.ExtraCount)
	})

	t.Run("SubfieldsInIncorrectType", func(t *testing.T) {
		op := ExtractOperation(parsePayload(t, `{"logging.googleapis.com/operation":{"id":123,"producer":true,"first":"some string","last":123}}`))
		assert.True(t, op.Found)
		assert.Equal(t, "", op.ID)
		assert.Equal(t, "", op.Producer)
		assert.False(t, op.First)
		assert.False(t, op.Last)
		assert.Equal(t, 0, op.ExtraCount)
		assert.Equal(t, ActionRemove, op.Action())
	})

	t.Run("ExtraSubfieldsExisted", func(t *testing.T) {
		op := ExtractOperation(parsePayload(t, `{"logging.googleapis.com/operation":{"id":"test_id","producer":"test_producer","first":true,"last":true,"extra_key1":"test_id","extra_key2":123,"extra_key3":true}}`))
		assert.True(t, op.Valid())
		assert.Equal(t, 3, op.ExtraCount)
		assert.Equal(t, ActionRepack, op.Action())
		assert.Equal(t, `{"extra_key1":"test_id","extra_key2":123,"extra_key3":true}`, jsonOf(op.Repacked()))
	})

	t.Run("MissingID", func(t *testing.T) {
		op := ExtractOperation(parsePayload(t, `{"logging.googleapis.com/operation":{"producer":"PRODUCER1","first":true,"last":false}}`))
		assert.True(t, op.Found)
		assert.False(t, op.Valid())
	})

	t.Run("Absent", func(t *testing.T) {
		op := ExtractOperation(parsePayload(t, `{"key_0":false,"END_KEY":"JSON_END"}`))
		assert.False(t, op.Found)
	})
}

func TestExtractSourceLocation(t *testing.T) {
	t.Run("LineAsInteger", func(t *testing.T) {
		loc := ExtractSourceLocation(parsePayload(t, `{"logging.googleapis.com/sourceLocation":{"file":"main.go","line":123,"function":"main"}}`))
		assert.True(t, loc.Found)
		assert.Equal(t, int64(123), loc.Line)
		assert.Equal(t, `{"file":"main.go","line":123,"function":"main"}`, jsonOf(loc.Value()))
	})

	t.Run("LineAsString", func(t *testing.T) {
		loc := ExtractSourceLocation(parsePayload(t, `{"logging.googleapis.com/sourceLocation":{"line":"123"}}`))
		assert.True(t, loc.Found)
		assert.Equal(t, int64(123), loc.Line)
		assert.Equal(t, "", loc.File)
	})

	t.Run("IncorrectTypes", func(t *testing.T) {
		loc := ExtractSourceLocation(parsePayload(t, `{"logging.googleapis.com/sourceLocation":{"file":1,"line":"12a","function":false}}`))
		assert.True(t, loc.Found)
		assert.Equal(t, int64(0), loc.Line)
		assert.Equal(t, 0, loc.ExtraCount)
	})

	t.Run("Extras", func(t *testing.T) {
		loc := ExtractSourceLocation(parsePayload(t, `{"logging.googleapis.com/sourceLocation":{"file":"a.go","column":7}}`))
		assert.Equal(t, 1, loc.ExtraCount)
		assert.Equal(t, ActionRepack, loc.Action())
	})

	t.Run("NotAMap", func(t *testing.T) {
		loc := ExtractSourceLocation(parsePayload(t, `{"logging.googleapis.com/sourceLocation":[1,2]}`))
		assert.False(t, loc.Found)
	})
}

func TestExtractHTTPRequest(t *testing.T) {
	const common = `{"logging.googleapis.com/http_request":{"requestMethod":"test_requestMethod","requestUrl":"test_requestUrl","userAgent":"test_userAgent","remoteIp":"test_remoteIp","serverIp":"test_serverIp","referer":"test_referer","latency":"0s","protocol":"test_protocol","requestSize":123,"responseSize":123,"status":200,"cacheFillBytes":123,"cacheLookup":true,"cacheHit":true,"cacheValidatedWithOriginServer":true}}`

	t.Run("CommonCase", func(t *testing.T) {
		req := ExtractHTTPRequest(parsePayload(t, common))
		assert.True(t, req.Found)
		assert.Equal(t, 0, req.ExtraCount)
		assert.Equal(t, "0s", req.Latency)
		assert.Equal(t, int64(200), req.Status)
		assert.True(t, req.CacheHit)

		m, ok := req.Value().AsMap()
		require.True(t, ok)
		assert.Equal(t, 15, m.Len())
		assert.Equal(t, "latency", m.Keys()[0])
		assert.Equal(t,
			`{"latency":"0s","requestMethod":"test_requestMethod","requestUrl":"test_requestUrl","userAgent":"test_userAgent","remoteIp":"test_remoteIp","serverIp":"test_serverIp","referer":"test_referer","protocol":"test_protocol","requestSize":123,"responseSize":123,"status":200,"cacheFillBytes":123,"cacheLookup":true,"cacheHit":true,"cacheValidatedWithOriginServer":true}`,
			jsonOf(req.Value()))
	})

	t.Run("EmptyHTTPRequest", func(t *testing.T) {
		req := ExtractHTTPRequest(parsePayload(t, `{"logging.googleapis.com/http_request":{}}`))
		assert.True(t, req.Found)
		m, _ := req.Value().AsMap()
		assert.Equal(t, 14, m.Len())
		assert.False(t, m.Has("latency"))
	})

	t.Run("HTTPRequestInString", func(t *testing.T) {
		req := ExtractHTTPRequest(parsePayload(t, `{"logging.googleapis.com/http_request":"some string"}`))
		assert.False(t, req.Found)
	})

	t.Run("Partial", func(t *testing.T) {
		req := ExtractHTTPRequest(parsePayload(t, `{"logging.googleapis.com/http_request":{"cacheLookup":true,"cacheHit":true,"cacheValidatedWithOriginServer":true}}`))
		assert.True(t, req.CacheLookup)
		assert.True(t, req.CacheHit)
		assert.True(t, req.CacheValidatedWithOriginServer)
		assert.Equal(t, "", req.RequestMethod)
	})

	t.Run("CacheHitIndependentOfCacheLookup", func(t *testing.T) {
		req := ExtractHTTPRequest(parsePayload(t, `{"logging.googleapis.com/http_request":{"cacheLookup":true,"cacheHit":false}}`))
		m, _ := req.Value().AsMap()
		hit, _ := m.Get("cacheHit")
		assert.True(t, hit.Equal(value.Bool(false)))
	})

	t.Run("SubfieldsInIncorrectType", func(t *testing.T) {
		req := ExtractHTTPRequest(parsePayload(t, `{"logging.googleapis.com/http_request":{"requestMethod":123,"requestUrl":123,"userAgent":123,"remoteIp":123,"serverIp":true,"referer":true,"latency":false,"protocol":false,"requestSize":"some string","responseSize":true,"status":false,"cacheFillBytes":false,"cacheLookup":"some string","cacheHit":123,"cacheValidatedWithOriginServer":123}}`))
		assert.True(t, req.Found)
		assert.Equal(t, 0, req.ExtraCount)
		assert.Equal(t, HTTPRequest{Subfields: Subfields{Found: true}}, req)
	})

	t.Run("ExtraSubfieldsExisted", func(t *testing.T) {
		req := ExtractHTTPRequest(parsePayload(t, `{"logging.googleapis.com/http_request":{"status":200,"extra_key1":"extra_val1","extra_key2":123,"extra_key3":true}}`))
		assert.Equal(t, 3, req.ExtraCount)
		assert.Equal(t, `{"extra_key1":"extra_val1","extra_key2":123,"extra_key3":true}`, jsonOf(req.Repacked()))
	})

	t.Run("StatusAsDigitString", func(t *testing.T) {
		req := ExtractHTTPRequest(parsePayload(t, `{"logging.googleapis.com/http_request":{"status":"404"}}`))
		assert.Equal(t, int64(404), req.Status)
	})

	latencyCases := []struct {
		name     string
		input    string
		expected string
		rejected bool
	}{
		{"CommonCase", "  100.00  s  ", "100.00s", false},
		{"Max", "315576000000.999999999s", "315576000000.999999999s", false},
		{"SecondsOverflow", "315576000001s", "315576000001s", false},
		{"NanosOverflow", "0.1000000000s", "0.1000000000s", false},
		{"MissingUnit", "100", "", true},
		{"Letters", "1ms", "", true},
	}
	for _, tc := range latencyCases {
		t.Run("Latency"+tc.name, func(t *testing.T) {
			payload := value.MapOf(value.KV{
				Key:   HTTPRequestKey,
				Value: value.FromMap(value.MapOf(value.KV{Key: "latency", Value: value.String(tc.input)})),
			})
			req := ExtractHTTPRequest(payload)
			assert.Equal(t, tc.expected, req.Latency)
			assert.Equal(t, tc.rejected, req.LatencyRejected)
			assert.Equal(t, 0, req.ExtraCount)
		})
	}
}

func TestExtractInsertID(t *testing.T) {
	id := ExtractInsertID(parsePayload(t, `{"a":1,"insertId":"abc"}`))
	assert.True(t, id.Valid())
	assert.Equal(t, "abc", id.Value)

	id = ExtractInsertID(parsePayload(t, `{"insertId":""}`))
	assert.True(t, id.Found)
	assert.False(t, id.Valid())

	id = ExtractInsertID(parsePayload(t, `{"insertId":42}`))
	assert.False(t, id.Found)

	id = ExtractInsertID(parsePayload(t, `{"insertid":"abc"}`))
	assert.False(t, id.Found)
}

func TestExtractTimestamp(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		status  TimestampStatus
		seconds int64
		nanos   int64
		applies bool
	}{
		{"ObjectCommonCase", `{"timestamp":{"seconds":"1595349642","nanos":"12345"}}`, TimestampObject, 1595349642, 12345, true},
		{"ObjectNativeIntegers", `{"timestamp":{"seconds":1595349642,"nanos":0}}`, TimestampObject, 1595349642, 0, true},
		{"ObjectNotAMap", `{"timestamp":"string"}`, TimestampNotPresent, 0, 0, false},
		{"ObjectMissingSubfield", `{"timestamp":{"nanos":"12345"}}`, TimestampNotPresent, 0, 0, false},
		{"ObjectIncorrectTypeSubfields", `{"timestamp":{"seconds":"string","nanos":true}}`, TimestampObject, 0, 0, false},
		{"DuoFields", `{"timestampSeconds":1595349642,"timestampNanos":"12345"}`, TimestampDuoFields, 1595349642, 12345, true},
		{"DuoFieldsPartial", `{"timestampSeconds":1595349642}`, TimestampNotPresent, 0, 0, false},
		{"TimeString", `{"time":"2020-07-21T16:40:42.000012345Z"}`, TimestampTime, 1595349642, 12345, true},
		{"TimeWithOffset", `{"time":"2020-07-21T18:40:42+02:00"}`, TimestampTime, 1595349642, 0, true},
		{"TimeMalformed", `{"time":"2020-07-21 16:40:42"}`, TimestampInvalidTime, 0, 0, false},
		{"TimeOutOfRange", `{"time":"2020-13-45T99:00:00Z"}`, TimestampInvalidTime, 0, 0, false},
		{"TimeNotString", `{"time":1595349642}`, TimestampInvalidTime, 0, 0, false},
		{"TimeEpoch", `{"time":"1970-01-01T00:00:00Z"}`, TimestampTime, 0, 0, false},
		{"ObjectBeatsTime", `{"time":"2001-01-01T00:00:00Z","timestamp":{"seconds":1595349642,"nanos":12345}}`, TimestampObject, 1595349642, 12345, true},
		{"ObjectBeatsDuo", `{"timestampSeconds":1,"timestampNanos":1,"timestamp":{"seconds":1595349642,"nanos":12345}}`, TimestampObject, 1595349642, 12345, true},
		{"NotPresent", `{"msg":"x"}`, TimestampNotPresent, 0, 0, false},
		{"SecondsBeyondEventTime", `{"timestampSeconds":"8589934592","timestampNanos":0}`, TimestampDuoFields, 8589934592, 0, false},
		{"NanosNotBelowOneSecond", `{"timestampSeconds":1,"timestampNanos":"5000000000"}`, TimestampDuoFields, 1, 5000000000, false},
		{"TimeBeforeEpoch", `{"time":"1969-12-31T23:59:58.5Z"}`, TimestampTime, -2, 500000000, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := ExtractTimestamp(parsePayload(t, tc.payload))
			assert.Equal(t, tc.status, ts.Status, "got %s", ts.Status)
			assert.Equal(t, tc.seconds, ts.Seconds)
			assert.Equal(t, tc.nanos, ts.Nanos)

			when, ok := ts.Time()
			assert.Equal(t, tc.applies, ok)
			if ok {
				assert.Equal(t, tc.seconds, when.Unix())
				assert.Equal(t, tc.nanos, int64(when.Nanosecond()))
			}
		})
	}
}

func TestTimestampStatusString(t *testing.T) {
	assert.Equal(t, "FORMAT_TIMESTAMP_OBJECT", TimestampObject.String())
	assert.Equal(t, "FORMAT_TIMESTAMP_DUO_FIELDS", TimestampDuoFields.String())
	assert.Equal(t, "FORMAT_TIME", TimestampTime.String())
	assert.Equal(t, "NOT_PRESENT", TimestampNotPresent.String())
	assert.Equal(t, "INVALID_FORMAT_TIME", TimestampInvalidTime.String())
}
