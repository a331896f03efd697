package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteVarInt_KnownEncodings(t *testing.T) {
	cases := []struct {
		value    int32
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{2, []byte{0x02}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{25565, []byte{0xdd, 0xc7, 0x01}},
		{2097151, []byte{0xff, 0xff, 0x7f}},
		{2147483647, []byte{0xff, 0xff, 0xff, 0xff, 0x07}},
		{-1, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
		{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		WriteVarInt(&buf, tc.value)
		assert.Equal(t, tc.expected, buf.Bytes(), "encoding of %d", tc.value)
	}
}

func TestVarInt_RoundTrip(t *testing.T) {
	values := []int32{
		0, 1, 2, 47, 127, 128, 255, 300, 25565, 32767, 65535,
		2097151, 2097152, 268435455, 268435456, 2147483647,
		-1, -47, -128, -25565, -2147483648,
	}

	for _, value := range values {
		var buf bytes.Buffer
		WriteVarInt(&buf, value)
		require.GreaterOrEqual(t, buf.Len(), 1, "value %d", value)
		require.LessOrEqual(t, buf.Len(), 5, "value %d", value)

		decoded, err := ReadVarInt(&buf)
		require.NoError(t, err, "value %d", value)
		assert.Equal(t, value, decoded)
		assert.Zero(t, buf.Len(), "decoder should consume the whole encoding")
	}
}

func TestReadVarInt_TooLong(t *testing.T) {
	// Six continuation bytes: the decoder must give up at five.
	_, err := ReadVarInt(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80}))
	assert.ErrorIs(t, err, ErrVarIntTooLong)
}

func TestReadVarInt_EOF(t *testing.T) {
	_, err := ReadVarInt(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	// Continuation bit set, then the stream ends.
	_, err = ReadVarInt(bytes.NewReader([]byte{0x80}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteString(t *testing.T) {
	var buf bytes.Buffer
	WriteString(&buf, "play.example.com")

	length, err := ReadVarInt(&buf)
	require.NoError(t, err)
	assert.Equal(t, int32(16), length)
	assert.Equal(t, "play.example.com", buf.String())
}
