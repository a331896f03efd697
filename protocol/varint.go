package protocol

import (
	"bytes"
	"errors"
	"io"
)

// maxVarIntBytes is the longest legal encoding of a 32-bit VarInt.
const maxVarIntBytes = 5

// ErrVarIntTooLong is returned when a VarInt keeps its continuation bit set
// past the fifth byte.
var ErrVarIntTooLong = errors.New("varint exceeds five bytes")

// WriteVarInt appends value to buf in Minecraft's VarInt encoding:
// little-endian 7-bit groups with the high bit as a continuation flag.
// Negative values encode via their unsigned 32-bit bit pattern, so every
// value takes between one and five bytes.
func WriteVarInt(buf *bytes.Buffer, value int32) {
	v := uint32(value)
	for {
		if v&^0x7F == 0 {
			buf.WriteByte(byte(v))
			return
		}
		buf.WriteByte(byte(v&0x7F | 0x80))
		v >>= 7
	}
}

// ReadVarInt decodes a VarInt from r one byte at a time, returning the raw
// 32-bit bit pattern as a signed value. EOF mid-value surfaces as
// io.ErrUnexpectedEOF.
func ReadVarInt(r io.Reader) (int32, error) {
	var result uint32
	var b [1]byte
	for i := 0; i < maxVarIntBytes; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, unexpectedEOF(err)
		}
		result |= uint32(b[0]&0x7F) << (7 * i)
		if b[0]&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, ErrVarIntTooLong
}

// WriteString appends a length-prefixed UTF-8 string (an MCString) to buf.
func WriteString(buf *bytes.Buffer, s string) {
	WriteVarInt(buf, int32(len(s)))
	buf.WriteString(s)
}

// unexpectedEOF normalizes a bare EOF into io.ErrUnexpectedEOF so callers see
// a single truncated-stream error regardless of where the stream was cut.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
