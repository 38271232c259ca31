package dle

import (
	"encoding/hex"
	"io"

	"github.com/rs/zerolog"
)

// Handler receives every packet a Dispatcher decodes, valid or not.
type Handler func(Packet)

// Stats counts what a Dispatcher has seen so far.
type Stats struct {
	// Frames is the number of completed frames, valid or invalid.
	Frames uint64
	Valid  uint64
	// Invalid frames had a malformed escape sequence in their payload.
	Invalid uint64
	// TooLong frames were dropped for exceeding the maximum frame length.
	TooLong uint64
	// Discarded counts bytes that arrived outside of any frame.
	Discarded     uint64
	HandlerPanics uint64
}

// Dispatcher feeds bytes through an Assembler, decodes each completed frame
// and delivers the resulting Packet to every subscribed Handler, in
// subscription order.  Packets are delivered in the order their frames
// complete.
//
// A Dispatcher is not safe for concurrent use; if bytes arrive on several
// goroutines, serialize the calls to WriteByte, Write and ReadFrom.
type Dispatcher struct {
	asm      Assembler
	handlers []Handler
	log      zerolog.Logger
	bufSize  int
	stats    Stats
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxFrameLength drops frames longer than n raw bytes.  Zero or a negative
// n leaves frames unbounded.
func WithMaxFrameLength(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.asm.MaxFrameLength = n
		}
	}
}

// WithLogger reports framing anomalies to logger.  Decoded packets are never
// logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = logger
	}
}

// WithHandler subscribes h at construction time.
func WithHandler(h Handler) Option {
	return func(d *Dispatcher) {
		d.Subscribe(h)
	}
}

// WithReadBuffer sets the chunk size ReadFrom reads with.
func WithReadBuffer(size int) Option {
	return func(d *Dispatcher) {
		if size > 0 {
			d.bufSize = size
		}
	}
}

// NewDispatcher returns an idle Dispatcher with no handlers, no frame length
// limit and logging disabled, then applies opts.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:     zerolog.Nop(),
		bufSize: 4 * 1024,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe registers h to receive every packet decoded from now on.  A nil h
// is ignored.
func (d *Dispatcher) Subscribe(h Handler) {
	if h != nil {
		d.handlers = append(d.handlers, h)
	}
}

// Stats returns a snapshot of the dispatcher's counters.
func (d *Dispatcher) Stats() Stats {
	return d.stats
}

// State returns the framing state of the underlying assembler.
func (d *Dispatcher) State() State {
	return d.asm.State()
}

// WriteByte feeds a single byte.  It never returns an error; malformed input
// shows up as invalid packets and in Stats.
func (d *Dispatcher) WriteByte(b byte) error {
	if d.asm.State() == Idle && b != DLE {
		d.stats.Discarded++
		return nil
	}

	frame, err := d.asm.Feed(b)
	if err == FrameTooLong {
		d.stats.TooLong++
		d.log.Warn().
			Int("max", d.asm.MaxFrameLength).
			Msg("dropping oversized frame")
		return nil
	}
	if frame == nil {
		return nil
	}

	pkt := Decode(frame)
	d.stats.Frames++
	if pkt.Valid {
		d.stats.Valid++
	} else {
		d.stats.Invalid++
		d.log.Debug().
			Int("len", len(frame)).
			Str("raw", hex.EncodeToString(frame)).
			Msg("malformed escape in frame payload")
	}
	d.deliver(pkt)
	return nil
}

// Write feeds every byte of p, in order.  It always consumes all of p.
func (d *Dispatcher) Write(p []byte) (int, error) {
	for _, b := range p {
		_ = d.WriteByte(b)
	}
	return len(p), nil
}

// ReadFrom pumps r into the dispatcher until r returns io.EOF or another
// error.  We return the number of bytes fed, and any error other than io.EOF.
// A partial frame left at the end of r stays buffered, so a later call can
// complete it.
func (d *Dispatcher) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, d.bufSize)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = d.Write(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

func (d *Dispatcher) deliver(pkt Packet) {
	for i, h := range d.handlers {
		d.call(i, h, pkt)
	}
}

func (d *Dispatcher) call(i int, h Handler, pkt Packet) {
	defer func() {
		if r := recover(); r != nil {
			d.stats.HandlerPanics++
			d.log.Error().
				Int("handler", i).
				Uint8("id", pkt.ID).
				Interface("panic", r).
				Msg("packet handler panicked")
		}
	}()
	h(pkt)
}
