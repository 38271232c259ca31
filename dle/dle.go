package dle

import (
	"bytes"
	"errors"
)

const (
	// DLE is both the frame start marker and the escape byte.
	DLE = 0x10
	// ETX follows an unescaped DLE to mark the end of a frame.
	ETX = 0x03
	// MinFrameLength is the shortest possible frame: start marker, id, one
	// payload byte and the end marker pair.
	MinFrameLength = 5
)

var (
	// UnpairedEscape is the error that is returned when an escaped payload
	// contains a DLE that is not doubled.
	UnpairedEscape = errors.New("Unpaired DLE in payload")
)

// Stuff writes payload into an output buffer, doubling every DLE so that the
// result can never be mistaken for a frame marker.
func Stuff(payload []byte, buf *bytes.Buffer) {
	for {
		i := bytes.IndexByte(payload, DLE)
		if i == -1 {
			buf.Write(payload)
			return
		}
		buf.Write(payload[:i+1])
		buf.WriteByte(DLE)
		payload = payload[i+1:]
	}
}

// Unstuff reverses Stuff, appending the original payload to buf.  A DLE that
// is followed by anything other than a second DLE makes the payload malformed,
// and we return UnpairedEscape.  (A DLE at the very end of escaped is accepted;
// inside a frame the end marker always follows it.)
func Unstuff(escaped []byte, buf *bytes.Buffer) error {
	pending := false
	for _, b := range escaped {
		switch {
		case b != DLE && pending:
			return UnpairedEscape
		case b != DLE:
			buf.WriteByte(b)
		case pending:
			pending = false
		default:
			buf.WriteByte(b)
			pending = true
		}
	}
	return nil
}

// EncodeFrame writes a complete frame, including the start marker, the id,
// the stuffed payload and the end marker pair, into an output buffer.  payload
// must not be empty, or the frame is too short to be recognized.
func EncodeFrame(id byte, payload []byte, buf *bytes.Buffer) {
	buf.WriteByte(DLE)
	buf.WriteByte(id)
	Stuff(payload, buf)
	buf.WriteByte(DLE)
	buf.WriteByte(ETX)
}
