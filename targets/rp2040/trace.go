//go:build rp2040

package main

import (
	"github.com/jangala-dev/tinygo-uartx/uartx"

	"quasar/core"
)

// traceUART carries either framed trace events or plain debug lines.
type traceUART struct {
	uart *uartx.UART
	link *core.TraceLink
}

func newTraceUART() *traceUART {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: traceBaud,
		TX:       pinTraceTX,
		RX:       pinTraceRX,
	})
	t := &traceUART{uart: u}
	t.link = core.NewTraceLink(t.write)
	return t
}

func (t *traceUART) write(b []byte) {
	_, _ = t.uart.Write(b)
}

// Sink returns the trace sink that frames each event.
func (t *traceUART) Sink() func(core.Event) {
	return t.link.Send
}

// Hello announces the running profile.
func (t *traceUART) Hello(cfg *core.Config) {
	t.link.Hello(cfg)
}

// DebugLine writes one unframed text line.
func (t *traceUART) DebugLine(s string) {
	t.write([]byte(s))
	t.write([]byte("\r\n"))
}
