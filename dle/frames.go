package dle

import (
	"bytes"
)

// FrameBuilder accumulates packets and stuffs them into wire frames.  Write a
// packet's unstuffed payload into the embedded bytes.Buffer, then call
// FinishFrame with its id to close the packet.  Encode frames every finished
// packet, in order, with the start marker, the id and the DLE ETX trailer.
type FrameBuilder struct {
	bytes.Buffer
	start  int
	frames []frameIndex
}

type frameIndex struct {
	id         byte
	start, end int
}

// FinishFrame indicates that you have finished constructing the payload of an
// individual frame.  We don't actually stuff the payload until you call
// Encode.
func (fb *FrameBuilder) FinishFrame(id byte) {
	end := fb.Len()
	fb.frames = append(fb.frames, frameIndex{id, fb.start, end})
	fb.start = end
}

// Frames returns the number of finished frames.
func (fb *FrameBuilder) Frames() int {
	return len(fb.frames)
}

// Encode encodes all of the frames in this builder into an output buffer.
// Frames with an empty payload are shorter than MinFrameLength and will never
// be recognized by an Assembler; it is your responsibility not to finish one.
func (fb *FrameBuilder) Encode(dest *bytes.Buffer) {
	payloads := fb.Bytes()
	for _, f := range fb.frames {
		EncodeFrame(f.id, payloads[f.start:f.end], dest)
	}
}
