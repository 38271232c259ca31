package dle_test

import (
	"testing"

	"github.com/dcreager/dle-frames-go/dle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedAll feeds input one byte at a time and returns every completed frame.
func feedAll(t require.TestingT, a *dle.Assembler, input []byte) [][]byte {
	var frames [][]byte
	for _, b := range input {
		frame, err := a.Feed(b)
		require.NoError(t, err)
		if frame != nil {
			frames = append(frames, frame)
		}
	}
	return frames
}

func TestAssemblerCompletesFrame(t *testing.T) {
	var a dle.Assembler
	input := []byte{0x10, 0x01, 0x41, 0x10, 0x03}
	for i, b := range input[:len(input)-1] {
		frame, err := a.Feed(b)
		require.NoError(t, err)
		assert.Nil(t, frame, "byte %d", i)
		assert.Equal(t, dle.InFrame, a.State())
	}
	frame, err := a.Feed(dle.ETX)
	require.NoError(t, err)
	assert.Equal(t, input, frame)
	assert.Equal(t, dle.Idle, a.State())
	assert.Equal(t, 0, a.Buffered())
}

func TestAssemblerDiscardsBytesOutsideFrame(t *testing.T) {
	var a dle.Assembler
	frames := feedAll(t, &a, []byte{0x00, 0x03, 0xff, 0x41})
	assert.Empty(t, frames)
	assert.Equal(t, dle.Idle, a.State())
	assert.Equal(t, 0, a.Buffered())

	frames = feedAll(t, &a, []byte{0x03, 0x10, 0x01, 0x41, 0x10, 0x03, 0x03, 0x00})
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x10, 0x01, 0x41, 0x10, 0x03}, frames[0])
}

func TestAssemblerShortFramesNeverComplete(t *testing.T) {
	inputs := [][]byte{
		{0x10, 0x03},
		{0x10, 0x10, 0x03},
		{0x10, 0x01, 0x10, 0x03},
		{0x10, 0x03, 0x10, 0x03},
	}
	for _, input := range inputs {
		var a dle.Assembler
		assert.Empty(t, feedAll(t, &a, input), "% x", input)
		assert.Equal(t, dle.InFrame, a.State())
		assert.Equal(t, len(input), a.Buffered())
	}
}

func TestAssemblerEscapedETXIsPayload(t *testing.T) {
	var a dle.Assembler
	// DLE DLE ETX: even run, so the ETX is data.
	frames := feedAll(t, &a, []byte{0x10, 0x01, 0x41, 0x10, 0x10, 0x03})
	assert.Empty(t, frames)
	assert.Equal(t, dle.InFrame, a.State())

	// DLE ETX after it: odd run, so this one terminates.
	frames = feedAll(t, &a, []byte{0x10, 0x03})
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x10, 0x01, 0x41, 0x10, 0x10, 0x03, 0x10, 0x03}, frames[0])
}

func TestAssemblerParityExcludesIDByte(t *testing.T) {
	var a dle.Assembler
	// The id is DLE; only the three DLEs after it count, which is odd.
	frames := feedAll(t, &a, []byte{0x10, 0x10, 0x10, 0x10, 0x10, 0x03})
	require.Len(t, frames, 1)

	// Counting the id DLE would make this run odd.
	frames = feedAll(t, &a, []byte{0x10, 0x10, 0x10, 0x10, 0x03})
	assert.Empty(t, frames)
	assert.Equal(t, dle.InFrame, a.State())
}

func TestAssemblerETXWithoutDLEIsPayload(t *testing.T) {
	var a dle.Assembler
	frames := feedAll(t, &a, []byte{0x10, 0x01, 0x10, 0x10, 0x10, 0x41, 0x03})
	assert.Empty(t, frames)
	assert.Equal(t, dle.InFrame, a.State())
}

func TestAssemblerReturnsOwnedFrames(t *testing.T) {
	var a dle.Assembler
	frames := feedAll(t, &a, []byte{
		0x10, 0x01, 0x41, 0x10, 0x03,
		0x10, 0x02, 0x42, 0x10, 0x03,
	})
	require.Len(t, frames, 2)
	assert.Equal(t, []byte{0x10, 0x01, 0x41, 0x10, 0x03}, frames[0])
	assert.Equal(t, []byte{0x10, 0x02, 0x42, 0x10, 0x03}, frames[1])
}

func TestAssemblerMaxFrameLength(t *testing.T) {
	a := dle.Assembler{MaxFrameLength: 5}
	for _, b := range []byte{0x10, 0x01, 0x41, 0x42, 0x43} {
		frame, err := a.Feed(b)
		require.NoError(t, err)
		require.Nil(t, frame)
	}
	frame, err := a.Feed(0x44)
	assert.Equal(t, dle.FrameTooLong, err)
	assert.Nil(t, frame)
	assert.Equal(t, dle.Idle, a.State())
	assert.Equal(t, 0, a.Buffered())

	// A frame of exactly the maximum length still gets through.
	frames := feedAll(t, &a, []byte{0x10, 0x01, 0x41, 0x10, 0x03})
	require.Len(t, frames, 1)
}

func TestAssemblerOverflowingDLEStartsNextFrame(t *testing.T) {
	a := dle.Assembler{MaxFrameLength: 6}
	feedAll(t, &a, []byte{0x10, 0x01, 0x41, 0x42, 0x43, 0x44})

	frame, err := a.Feed(dle.DLE)
	assert.Equal(t, dle.FrameTooLong, err)
	assert.Nil(t, frame)
	assert.Equal(t, dle.InFrame, a.State())
	assert.Equal(t, 1, a.Buffered())

	frames := feedAll(t, &a, []byte{0x05, 0x46, 0x10, 0x03})
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x10, 0x05, 0x46, 0x10, 0x03}, frames[0])
}

func TestAssemblerReset(t *testing.T) {
	var a dle.Assembler
	feedAll(t, &a, []byte{0x10, 0x01, 0x10, 0x10})
	a.Reset()
	assert.Equal(t, dle.Idle, a.State())
	assert.Equal(t, 0, a.Buffered())

	frames := feedAll(t, &a, []byte{0x10, 0x01, 0x41, 0x10, 0x03})
	require.Len(t, frames, 1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", dle.Idle.String())
	assert.Equal(t, "in-frame", dle.InFrame.String())
	assert.Equal(t, "unknown", dle.State(7).String())
}
