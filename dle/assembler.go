package dle

import "errors"

var (
	// FrameTooLong is the error that Feed returns when a partial frame grows
	// past the assembler's MaxFrameLength.  The partial frame is dropped.
	FrameTooLong = errors.New("Frame exceeds maximum length")
)

// State is the framing state of an Assembler.
type State int

const (
	// Idle means we are between frames, waiting for a start marker.
	Idle State = iota
	// InFrame means a start marker has been seen and bytes are accumulating.
	InFrame
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFrame:
		return "in-frame"
	default:
		return "unknown"
	}
}

// Assembler finds frame boundaries in a byte stream.  Feed it bytes in the
// order they were received; it hands back each raw frame as soon as the byte
// that completes it arrives.  The zero value is an idle assembler with no
// length limit.
//
// An Assembler is not safe for concurrent use.
type Assembler struct {
	// MaxFrameLength bounds the size of a frame, in raw (stuffed) bytes.  Zero
	// means no bound, in which case a stream that never terminates its frame
	// accumulates forever.
	MaxFrameLength int

	buf   []byte
	state State
	// run counts the DLEs at the tail of buf, ignoring the start marker and
	// the id byte.
	run int
}

// State returns the current framing state.
func (a *Assembler) State() State {
	return a.state
}

// Buffered returns the number of bytes accumulated for the current frame.
func (a *Assembler) Buffered() int {
	return len(a.buf)
}

// Reset drops any partial frame and returns to Idle.
func (a *Assembler) Reset() {
	a.buf = nil
	a.state = Idle
	a.run = 0
}

// Feed consumes one byte.  If that byte completes a frame, we return the
// entire raw frame, from the start marker through the trailing ETX; the
// returned slice is owned by the caller.  Otherwise we return nil.  The only
// error is FrameTooLong, after which the assembler is Idle again, or InFrame if
// the overflowing byte was a DLE.
func (a *Assembler) Feed(b byte) ([]byte, error) {
	if a.state == Idle {
		if b == DLE {
			a.buf = append(make([]byte, 0, 64), b)
			a.state = InFrame
		}
		return nil, nil
	}

	if a.MaxFrameLength > 0 && len(a.buf) >= a.MaxFrameLength {
		// The overflowing byte may itself be the start of the next frame.
		a.Reset()
		_, _ = a.Feed(b)
		return nil, FrameTooLong
	}

	a.buf = append(a.buf, b)
	if b == ETX && len(a.buf) >= MinFrameLength && a.run%2 == 1 {
		// An odd run means the last DLE is not half of a doubled pair, so
		// this ETX is the end marker.
		frame := a.buf
		a.Reset()
		return frame, nil
	}

	if b == DLE && len(a.buf) > 2 {
		a.run++
	} else {
		a.run = 0
	}
	return nil, nil
}
