// FILE: fieldwisp/src/internal/format/json_test.go
package format

import (
	"strings"
	"testing"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() core.LogEntry {
	return core.LogEntry{
		Time:   time.Date(2020, 7, 21, 16, 40, 42, 12345, time.UTC),
		Source: "test-app",
		Payload: value.MapOf(
			value.KV{Key: "message", Value: value.String("hello")},
			value.KV{Key: "insertId", Value: value.String("shadowed")},
			value.KV{Key: "count", Value: value.Int(3)},
		),
		Promoted: value.MapOf(
			value.KV{Key: "insertId", Value: value.String("abc")},
		),
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	logger := newTestLogger()

	t.Run("BasicFormatting", func(t *testing.T) {
		f, err := NewJSONFormatter(nil, logger)
		require.NoError(t, err)

		out, err := f.Format(testEntry())
		require.NoError(t, err)
		assert.Equal(t, `["2020-07-21T16:40:42.000012345Z",{"insertId":"abc","message":"hello","count":3}]`+"\n", string(out))
	})

	t.Run("TimeAsNumber", func(t *testing.T) {
		f, err := NewJSONFormatter(&config.FormatConfig{Type: "json", TimeAsNumber: true}, logger)
		require.NoError(t, err)

		out, err := f.Format(testEntry())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(out), `[1595349642.000012345,{`), string(out))

		entry := testEntry()
		entry.Time = time.Unix(1595349642, 0)
		out, err = f.Format(entry)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(out), `[1595349642,{`), string(out))
	})

	t.Run("EpochBeforeUnixZero", func(t *testing.T) {
		testCases := []struct {
			when     time.Time
			expected string
		}{
			{time.Unix(-2, 500000000), "-1.500000000"},
			{time.Unix(-1, 500000000), "-0.500000000"},
			{time.Unix(-1, 999999999), "-0.000000001"},
			{time.Unix(-3, 0), "-3"},
			{time.Unix(0, 1), "0.000000001"},
		}

		for _, tc := range testCases {
			assert.Equal(t, tc.expected, string(appendEpoch(nil, tc.when)))
		}
	})

	t.Run("OutputParsesBack", func(t *testing.T) {
		f, err := NewJSONFormatter(nil, logger)
		require.NoError(t, err)

		out, err := f.Format(testEntry())
		require.NoError(t, err)

		v, err := value.ParseJSON(out)
		require.NoError(t, err)
		back, err := core.NewEntryFromRecord(v, "replay", time.Now(), int64(len(out)))
		require.NoError(t, err)
		assert.True(t, testEntry().Time.Equal(back.Time))
		assert.Equal(t, []string{"insertId", "message", "count"}, back.Payload.Keys())
	})

	t.Run("EmptyEntry", func(t *testing.T) {
		f, err := NewJSONFormatter(nil, logger)
		require.NoError(t, err)

		out, err := f.Format(core.LogEntry{Time: time.Unix(0, 0)})
		require.NoError(t, err)
		assert.Equal(t, `["1970-01-01T00:00:00Z",{}]`+"\n", string(out))
	})
}

func TestJSONFormatter_FormatBatch(t *testing.T) {
	f, err := NewJSONFormatter(nil, newTestLogger())
	require.NoError(t, err)

	e := core.LogEntry{Time: time.Unix(0, 0), Payload: value.MapOf(value.KV{Key: "a", Value: value.Int(1)})}
	out, err := f.FormatBatch([]core.LogEntry{e, e})
	require.NoError(t, err)
	assert.Equal(t, `[["1970-01-01T00:00:00Z",{"a":1}],["1970-01-01T00:00:00Z",{"a":1}]]`, string(out))

	out, err = f.FormatBatch(nil)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))
}
