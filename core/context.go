package core

// Context is the session state shared between the main path and the
// tick handler. Fields touched by both are accessed with interrupts
// masked.
type Context struct {
	// Ticks since boot, saturating at 255.
	Ticks uint8
	// Elapsed ticks since boot, not saturating.
	Elapsed uint32

	Group  uint8
	Mode   uint8
	Clicks uint8

	// Locked is set once the activation has been confirmed.
	Locked bool
}

// Snapshot copies the context with interrupts masked.
func (c *Context) Snapshot() Context {
	var s Context
	Critical(func() { s = *c })
	return s
}

// Critical runs fn with interrupts masked. Sections nest.
func Critical(fn func()) {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	fn()
}
