package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	// DefaultPort is the Minecraft Java Edition default server port.
	DefaultPort = 25565

	// HandshakeProtocolVersion is the protocol version written into the
	// status handshake. Any value is accepted during the status phase; 47
	// is compatible with every post-1.7 server.
	HandshakeProtocolVersion = 47

	// DefaultStepTimeout bounds each individual read or write of the
	// exchange.
	DefaultStepTimeout = 5 * time.Second

	handshakePacketID = 0x00
	statusPacketID    = 0x00
	pingPacketID      = 0x01

	statusNextState = 1
)

var (
	// ErrUnexpectedPacketID is returned when the server answers with a
	// packet id other than the one the exchange is waiting for.
	ErrUnexpectedPacketID = errors.New("unexpected packet id")

	// ErrBadStatusJSON is returned when the status payload does not decode
	// as the expected JSON document.
	ErrBadStatusJSON = errors.New("malformed status json")
)

// statusRequest is the complete status-request packet: length 1, id 0x00.
var statusRequest = []byte{0x01, 0x00}

// Exchange drives a full handshake → status → ping conversation on an
// already-connected stream and returns the decoded status plus the measured
// ping round trip.
//
// host must be the user-supplied hostname, not a resolved IP: virtual-hosting
// proxies such as BungeeCord route on the handshake's address field. port must
// be the port conn actually reached, which may differ from the configured one
// when SRV redirected it.
//
// Each read and write runs under stepTimeout (DefaultStepTimeout when zero).
// The exchange is fail-fast: the first violation aborts with no retries.
func Exchange(conn net.Conn, host string, port uint16, stepTimeout time.Duration) (*Status, time.Duration, error) {
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	step := func() error {
		return conn.SetDeadline(time.Now().Add(stepTimeout))
	}

	// Handshake: protocol version, original hostname, effective port,
	// next state = status.
	var handshake bytes.Buffer
	WriteVarInt(&handshake, HandshakeProtocolVersion)
	WriteString(&handshake, host)
	handshake.WriteByte(byte(port >> 8))
	handshake.WriteByte(byte(port))
	WriteVarInt(&handshake, statusNextState)

	if err := step(); err != nil {
		return nil, 0, err
	}
	if err := WritePacket(conn, handshakePacketID, handshake.Bytes()); err != nil {
		return nil, 0, fmt.Errorf("write handshake: %w", err)
	}

	if err := step(); err != nil {
		return nil, 0, err
	}
	if _, err := conn.Write(statusRequest); err != nil {
		return nil, 0, fmt.Errorf("write status request: %w", err)
	}

	if err := step(); err != nil {
		return nil, 0, err
	}
	id, payload, err := ReadPacket(conn)
	if err != nil {
		return nil, 0, fmt.Errorf("read status response: %w", err)
	}
	if id != statusPacketID {
		return nil, 0, fmt.Errorf("%w: expected 0x%02x, got 0x%02x", ErrUnexpectedPacketID, statusPacketID, id)
	}

	status, err := decodeStatusPayload(payload)
	if err != nil {
		return nil, 0, err
	}

	// Ping: 8-byte big-endian payload, value arbitrary. The server echoes
	// it; only the elapsed wall clock matters.
	var ping bytes.Buffer
	binary.Write(&ping, binary.BigEndian, int64(0))

	if err := step(); err != nil {
		return nil, 0, err
	}
	pingStart := time.Now()
	if err := WritePacket(conn, pingPacketID, ping.Bytes()); err != nil {
		return nil, 0, fmt.Errorf("write ping: %w", err)
	}

	if err := step(); err != nil {
		return nil, 0, err
	}
	pongID, pong, err := ReadPacket(conn)
	if err != nil {
		return nil, 0, fmt.Errorf("read pong: %w", err)
	}
	rtt := time.Since(pingStart)
	if pongID != pingPacketID {
		return nil, 0, fmt.Errorf("%w: expected 0x%02x, got 0x%02x", ErrUnexpectedPacketID, pingPacketID, pongID)
	}
	if len(pong) < 8 {
		return nil, 0, fmt.Errorf("pong payload too short: %d bytes", len(pong))
	}

	return status, rtt, nil
}

// decodeStatusPayload unpacks VarInt(json length) | utf-8 bytes and decodes
// the JSON document.
func decodeStatusPayload(payload []byte) (*Status, error) {
	r := bytes.NewReader(payload)
	jsonLen, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read status json length: %w", err)
	}
	if jsonLen < 0 || int(jsonLen) > r.Len() {
		return nil, fmt.Errorf("status json length %d exceeds payload (%d bytes left)", jsonLen, r.Len())
	}

	raw := make([]byte, jsonLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, unexpectedEOF(err)
	}

	var status Status
	if err := json.Unmarshal(raw, &status); err != nil {
		// Keep the raw text so the caller can log what the server sent.
		return nil, fmt.Errorf("%w: %v: %s", ErrBadStatusJSON, err, truncate(string(raw), 256))
	}
	return &status, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
