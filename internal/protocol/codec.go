package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameBytes bounds a single frame's payload to guard against a
// malicious or broken peer claiming an unbounded length prefix.
const MaxFrameBytes = 1 << 20 // 1 MiB

// WriteFrame writes a 4-byte big-endian length prefix followed by the JSON
// encoding of v, per spec §6 ("length-prefixed JSON records").
func WriteFrame(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("protocol: marshal frame: %w", err)
	}
	return WriteRawFrame(w, payload)
}

// WriteRawFrame writes a pre-encoded payload with its length prefix. Used by
// the broadcaster to serialise a State snapshot once and reuse the encoded
// bytes across every session's writer.
func WriteRawFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameBytes {
		return fmt.Errorf("protocol: frame too large: %d bytes", len(payload))
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("protocol: write length prefix: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("protocol: write payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed JSON frame from r and returns the raw
// payload bytes for the caller to unmarshal (first into Envelope, then into
// the concrete type once Type is known).
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(prefix[:])
	if n > MaxFrameBytes {
		return nil, fmt.Errorf("protocol: frame exceeds %d bytes (got %d)", MaxFrameBytes, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("protocol: read payload: %w", err)
	}
	return payload, nil
}

// DecodeEnvelope extracts the "type" discriminator from a raw frame.
func DecodeEnvelope(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return env, fmt.Errorf("protocol: decode envelope: %w", err)
	}
	return env, nil
}
