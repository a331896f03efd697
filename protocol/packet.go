package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// MaxPacketLen bounds the declared length of an inbound packet. Anything
// larger fails before allocation so a hostile server cannot make us buffer
// arbitrary amounts of data.
const MaxPacketLen = 2 << 20 // 2 MiB

// ErrPacketTooLarge is returned when a packet's length prefix exceeds
// MaxPacketLen.
var ErrPacketTooLarge = errors.New("packet exceeds maximum length")

// WritePacket frames and writes one packet:
// VarInt(length) | VarInt(id) | payload, where length covers id and payload.
func WritePacket(w io.Writer, id int32, payload []byte) error {
	var body bytes.Buffer
	WriteVarInt(&body, id)
	body.Write(payload)

	var frame bytes.Buffer
	WriteVarInt(&frame, int32(body.Len()))
	frame.Write(body.Bytes())

	_, err := w.Write(frame.Bytes())
	return err
}

// ReadPacket reads one framed packet from r and returns its id and payload.
// The payload is not interpreted.
func ReadPacket(r io.Reader) (int32, []byte, error) {
	length, err := ReadVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	if length < 0 || length > MaxPacketLen {
		return 0, nil, fmt.Errorf("%w: declared %d bytes", ErrPacketTooLarge, length)
	}

	cr := &countingReader{r: r}
	id, err := ReadVarInt(cr)
	if err != nil {
		return 0, nil, err
	}
	if int(length) < cr.n {
		return 0, nil, fmt.Errorf("packet length %d shorter than its id field", length)
	}

	payload := make([]byte, int(length)-cr.n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, unexpectedEOF(err)
	}
	return id, payload, nil
}

// countingReader tracks how many bytes the id VarInt consumed so the payload
// size can be derived from the declared packet length.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
