package dle

import "bytes"

// Packet is the result of decoding one frame.  ID, Data and Raw only carry
// meaning when Valid is true; an invalid packet has a zero ID and no data.
// Every Handler sees the same Packet, so handlers must not modify Data or Raw.
type Packet struct {
	Valid bool
	ID    byte
	// Data is the unstuffed payload.
	Data []byte
	// Raw is the complete frame as it was received, stuffing included.
	Raw []byte
}

// Decode turns a raw frame, as returned by Assembler.Feed, into a Packet.
// Decode never fails; a frame whose payload is malformed yields an invalid
// Packet, and the frame itself is not kept.
func Decode(frame []byte) Packet {
	n := len(frame)
	if n < MinFrameLength || frame[0] != DLE || frame[n-2] != DLE || frame[n-1] != ETX {
		return Packet{}
	}

	var data bytes.Buffer
	if err := Unstuff(frame[2:n-2], &data); err != nil {
		return Packet{}
	}
	return Packet{
		Valid: true,
		ID:    frame[1],
		Data:  data.Bytes(),
		Raw:   append([]byte(nil), frame...),
	}
}
