// Package monitor decodes the firmware's framed trace stream.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"quasar/core"
	"quasar/protocol"
)

const streamSize = 512

// Archive receives decoded traffic. tracedb.DB implements it.
type Archive interface {
	Begin(ctx context.Context, device, preset string) (string, error)
	SetPreset(ctx context.Context, session, preset string) error
	Append(ctx context.Context, session string, events ...core.Event) error
}

// Monitor turns bytes from a port into events.
type Monitor struct {
	device  string
	in      *protocol.StreamBuffer
	dec     *protocol.Decoder
	out     io.Writer
	log     *slog.Logger
	archive Archive
	session string

	hello   *core.Hello
	renamed bool
	pending []core.Event
	events  int
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithOutput prints one line per message to w.
func WithOutput(w io.Writer) Option {
	return func(m *Monitor) { m.out = w }
}

// WithArchive stores every event in a new archive session.
func WithArchive(a Archive) Option {
	return func(m *Monitor) { m.archive = a }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// New returns a monitor for the named device.
func New(device string, opts ...Option) *Monitor {
	m := &Monitor{
		device: device,
		in:     protocol.NewStreamBuffer(streamSize),
		out:    io.Discard,
		log:    slog.Default(),
	}
	m.dec = protocol.NewDecoder(m.handle)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Hello returns the last announcement seen, if any.
func (m *Monitor) Hello() *core.Hello { return m.hello }

// Events returns the number of events decoded.
func (m *Monitor) Events() int { return m.events }

// Stats returns the link counters.
func (m *Monitor) Stats() protocol.DecoderStats { return m.dec.Stats() }

// Session returns the archive session id, empty before the first event
// or without an archive.
func (m *Monitor) Session() string { return m.session }

// Feed decodes data and flushes decoded events to the archive.
func (m *Monitor) Feed(ctx context.Context, data []byte) error {
	for len(data) > 0 {
		n := m.in.Write(data)
		data = data[n:]
		m.dec.Receive(m.in)
		if n == 0 && m.in.Free() == 0 {
			// A full buffer the decoder cannot consume is garbage.
			m.in.Reset()
			m.dec.Reset()
		}
	}
	return m.flush(ctx)
}

// Run reads r until it is exhausted or ctx is done. Read timeouts that
// return no data are retried.
func (m *Monitor) Run(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := r.Read(buf)
		if n > 0 {
			if ferr := m.Feed(ctx, buf[:n]); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", m.device, err)
		}
	}
}

func (m *Monitor) handle(f protocol.Frame) {
	msg, err := core.DecodeMessage(f.Payload)
	if err != nil {
		m.log.Warn("undecodable frame", "seq", f.Sequence&protocol.MessageSeqMask, "error", err)
		return
	}
	switch v := msg.(type) {
	case *core.Hello:
		m.hello = v
		m.renamed = true
		m.log.Info("device hello", "version", v.Version, "preset", v.Preset, "slots", v.Slots)
		fmt.Fprintf(m.out, "hello %s preset=%s slots=%d\n", v.Version, v.Preset, v.Slots)
	case *core.Event:
		m.events++
		m.log.Debug("event", "kind", v.Kind.String(), "tick", v.Tick, "a", v.A, "b", v.B)
		fmt.Fprintf(m.out, "%s\n", v)
		m.pending = append(m.pending, *v)
	}
}

func (m *Monitor) flush(ctx context.Context) error {
	if m.archive == nil || (len(m.pending) == 0 && !m.renamed) {
		m.pending = m.pending[:0]
		return nil
	}
	if m.session == "" {
		id, err := m.archive.Begin(ctx, m.device, m.preset())
		if err != nil {
			return err
		}
		m.session = id
	} else if m.renamed {
		if err := m.archive.SetPreset(ctx, m.session, m.preset()); err != nil {
			return err
		}
	}
	m.renamed = false
	if len(m.pending) > 0 {
		if err := m.archive.Append(ctx, m.session, m.pending...); err != nil {
			return err
		}
	}
	m.pending = m.pending[:0]
	return nil
}

func (m *Monitor) preset() string {
	if m.hello == nil {
		return ""
	}
	return m.hello.Preset
}
