package cache

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecordLayout(t *testing.T) {
	created := time.Unix(1_700_000_123, 999_000_000)
	data := encodeRecord(2, 90*time.Second, created, []byte("payload"))

	require.Len(t, data, headerSize+len("payload"))
	assert.Equal(t, byte(2), data[0])
	assert.Equal(t, 90.0, math.Float64frombits(binary.LittleEndian.Uint64(data[1:9])))
	assert.Equal(t, 1_700_000_123.0, math.Float64frombits(binary.LittleEndian.Uint64(data[9:17])))
	assert.Equal(t, []byte("payload"), data[headerSize:])
}

func TestDecodeRecordRoundTrip(t *testing.T) {
	created := time.Unix(1_700_000_000, 0)
	record, err := decodeRecord(encodeRecord(FormatVersion, 1500*time.Millisecond, created, []byte{0, 1, 2}))
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, record.Version)
	assert.Equal(t, 1500*time.Millisecond, record.Expiration)
	assert.True(t, record.CreatedAt.Equal(created))
	assert.Equal(t, []byte{0, 1, 2}, record.Content)
	assert.True(t, record.ExpiresAt().Equal(created.Add(time.Second)))
}

func TestDecodeRecordRejectsShortHeader(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("42"), make([]byte, headerSize-1)} {
		_, err := decodeRecord(data)
		assert.ErrorIs(t, err, errCorruptHeader)
	}
}

func TestDecodeRecordRejectsNaN(t *testing.T) {
	data := encodeRecord(FormatVersion, time.Minute, time.Unix(0, 0), nil)
	binary.LittleEndian.PutUint64(data[9:17], math.Float64bits(math.NaN()))

	_, err := decodeRecord(data)
	assert.ErrorIs(t, err, errCorruptHeader)
}

func TestNegativeVersionByte(t *testing.T) {
	data := encodeRecord(-1, time.Minute, time.Unix(0, 0), nil)
	assert.Equal(t, byte(0xff), data[0])

	record, err := decodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, int8(-1), record.Version)
}
