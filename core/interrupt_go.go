//go:build !tinygo

package core

import "sync/atomic"

// irqState is the saved interrupt mask on regular Go.
type irqState uintptr

// maskDepth counts open critical sections so host tests can observe them.
var maskDepth atomic.Int32

func disableInterrupts() irqState {
	maskDepth.Add(1)
	return 0
}

func restoreInterrupts(state irqState) {
	maskDepth.Add(-1)
}

// InterruptsMasked reports whether a critical section is open.
func InterruptsMasked() bool {
	return maskDepth.Load() > 0
}
