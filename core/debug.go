package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// EventKind identifies a trace event.
type EventKind uint8

// Event kinds. A and B are kind specific.
const (
	EvtBoot        EventKind = 1  // A=strategy
	EvtLoad        EventKind = 2  // A=group<<4|mode, B=found
	EvtShortClick  EventKind = 3  // A=mode, B=clicks
	EvtLongBoot    EventKind = 4  // A=mode
	EvtSave        EventKind = 5  // A=slot, B=group<<4|mode
	EvtSaveFailed  EventKind = 6  // A=slot
	EvtLockIn      EventKind = 7  // A=group<<4|mode
	EvtBattCheck   EventKind = 8  // A=sample, B=blinks
	EvtGroupChange EventKind = 9  // A=step, B=group
	EvtDerate      EventKind = 10 // A=old level, B=new level
	EvtTurboStep   EventKind = 11 // A=old level, B=new level
	EvtPattern     EventKind = 12 // A=pattern
	EvtPowerLost   EventKind = 13
	EvtRun         EventKind = 14 // A=level
	EvtOutputFault EventKind = 15
)

var eventNames = [...]string{
	EvtBoot:        "BOOT",
	EvtLoad:        "LOAD",
	EvtShortClick:  "SHORT_CLICK",
	EvtLongBoot:    "LONG_BOOT",
	EvtSave:        "SAVE",
	EvtSaveFailed:  "SAVE_FAILED!",
	EvtLockIn:      "LOCK_IN",
	EvtBattCheck:   "BATTCHECK",
	EvtGroupChange: "GROUP_CHANGE",
	EvtDerate:      "DERATE",
	EvtTurboStep:   "TURBO_STEP",
	EvtPattern:     "PATTERN",
	EvtPowerLost:   "POWER_LOST",
	EvtRun:         "RUN",
	EvtOutputFault: "OUTPUT_FAULT!",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) && eventNames[k] != "" {
		return eventNames[k]
	}
	return "UNKNOWN"
}

// Event is one entry of the trace ring.
type Event struct {
	Kind EventKind
	Tick uint32 // Elapsed ticks since boot
	A    int32
	B    int32
}

// String formats the event without fmt.
func (e Event) String() string {
	return e.Kind.String() +
		" tick=" + utoa(e.Tick) +
		" a=" + itoa(int(e.A)) +
		" b=" + itoa(int(e.B))
}

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// Trace keeps the last TraceRingSize events and forwards each one to an
// optional sink as it is recorded. Recording never blocks.
type Trace struct {
	ring  [TraceRingSize]Event
	head  uint8 // Next write position
	count uint8
	sink  func(Event)
}

// NewTrace returns a trace ring. sink may be nil.
func NewTrace(sink func(Event)) *Trace {
	return &Trace{sink: sink}
}

// SetSink replaces the sink.
func (t *Trace) SetSink(sink func(Event)) {
	t.sink = sink
}

// Record appends an event. A nil Trace drops it.
func (t *Trace) Record(kind EventKind, tick uint32, a, b int32) {
	if t == nil {
		return
	}
	evt := Event{Kind: kind, Tick: tick, A: a, B: b}
	t.ring[t.head] = evt
	t.head = wrapNext(t.head, TraceRingSize)
	if t.count < TraceRingSize {
		t.count++
	}
	if t.sink != nil {
		t.sink(evt)
	}
	if debugEnabled {
		DebugPrintln("[TRACE] " + evt.String())
	}
}

// Events returns the ring contents, oldest first.
func (t *Trace) Events() []Event {
	out := make([]Event, 0, t.count)
	start := t.head + TraceRingSize - t.count
	for i := uint8(0); i < t.count; i++ {
		out = append(out, t.ring[(start+i)%TraceRingSize])
	}
	return out
}

// Count returns how many of the ring entries are in use.
func (t *Trace) Count() int { return int(t.count) }

// Dump outputs the ring through the debug writer, oldest first.
func (t *Trace) Dump() {
	if debugPrintln == nil {
		return
	}
	debugPrintln("[TRACE] === Trace Ring Dump ===")
	for _, evt := range t.Events() {
		debugPrintln("[TRACE] " + evt.String())
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// Clear empties the ring.
func (t *Trace) Clear() {
	for i := range t.ring {
		t.ring[i] = Event{}
	}
	t.head = 0
	t.count = 0
}
