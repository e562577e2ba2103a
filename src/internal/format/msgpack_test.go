// FILE: fieldwisp/src/internal/format/msgpack_test.go
package format

import (
	"testing"
	"time"

	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMsgpackFormatter_Format(t *testing.T) {
	f, err := NewMsgpackFormatter(nil, newTestLogger())
	require.NoError(t, err)

	out, err := f.Format(testEntry())
	require.NoError(t, err)

	// fixarray(2) followed by fixext8 type 0
	require.Greater(t, len(out), 12)
	assert.Equal(t, byte(0x92), out[0])
	assert.Equal(t, byte(0xd7), out[1])
	assert.Equal(t, byte(0x00), out[2])

	v, err := value.UnmarshalMsgpack(out)
	require.NoError(t, err)

	back, err := core.NewEntryFromRecord(v, "replay", time.Now(), int64(len(out)))
	require.NoError(t, err)
	assert.True(t, testEntry().Time.Equal(back.Time))

	msg, ok := back.Payload.Get("message")
	require.True(t, ok)
	assert.True(t, msg.Equal(value.String("hello")))

	id, ok := back.Payload.Get("insertId")
	require.True(t, ok)
	assert.True(t, id.Equal(value.String("abc")))
	assert.Equal(t, 3, back.Payload.Len())
}

func TestMsgpackFormatter_RejectsUnrepresentableTime(t *testing.T) {
	f, err := NewMsgpackFormatter(nil, newTestLogger())
	require.NoError(t, err)

	for _, when := range []time.Time{
		time.Unix(-1, 500000000),
		time.Unix(8589934592, 0),
	} {
		entry := testEntry()
		entry.Time = when
		_, err := f.Format(entry)
		require.Error(t, err, when.String())
		assert.Contains(t, err.Error(), "EventTime range")
	}
}
