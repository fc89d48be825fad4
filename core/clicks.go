package core

// MemoryPolicy picks the mode restored after a confirmed activation.
type MemoryPolicy uint8

const (
	// MemLast keeps the mode that was active.
	MemLast MemoryPolicy = iota
	// MemFirst returns to mode 0 of the group.
	MemFirst
	// MemNext pre-advances so the next power-up lands past this mode.
	MemNext
)

// Apply returns the mode to persist for (group, mode) under p.
func (p MemoryPolicy) Apply(t *ModeTable, group, mode uint8) uint8 {
	switch p {
	case MemFirst:
		return 0
	case MemNext:
		return t.NextMode(group, mode)
	default:
		return mode
	}
}

func (p MemoryPolicy) String() string {
	switch p {
	case MemLast:
		return "last"
	case MemFirst:
		return "first"
	case MemNext:
		return "next"
	}
	return "unknown"
}

// ParseMemoryPolicy maps "last", "first" or "next" to a policy.
func ParseMemoryPolicy(s string) (MemoryPolicy, bool) {
	switch s {
	case "last":
		return MemLast, true
	case "first":
		return MemFirst, true
	case "next":
		return MemNext, true
	}
	return MemLast, false
}

// ClickDetector decides once per boot whether the previous power
// interruption was a quick click.
type ClickDetector interface {
	// Prime readies the detector before the ledger is read.
	Prime()

	// IsShortClick classifies this boot from the loaded record.
	IsShortClick(rec PersistedRecord, found bool) bool

	// Rearm runs after the optimistic save.
	Rearm()

	// LongBootMode returns the mode to use after a confirmed boot.
	LongBootMode(t *ModeTable, group, mode uint8) uint8

	// ConfirmedMode returns the mode written when an activation is
	// confirmed while powered (lock-in, end of group change).
	ConfirmedMode(t *ModeTable, group, mode uint8) uint8

	// OnTick is called with the saturated tick count once per period.
	// It returns true exactly once when the activation locks in.
	OnTick(ticks uint8) bool

	// Speculative reports whether the optimistic record carries the
	// click marker.
	Speculative() bool
}

// TickLock measures on-time. The record written at boot is marked
// speculative; if power survives LockTime ticks the active mode is
// rewritten as confirmed. A boot that finds the marker still set was
// preceded by a quick click.
type TickLock struct {
	LockTime uint8
	Policy   MemoryPolicy

	fired bool
}

func (d *TickLock) Prime() { d.fired = false }

func (d *TickLock) IsShortClick(rec PersistedRecord, found bool) bool {
	return found && rec.Speculative
}

func (d *TickLock) Rearm() {}

// LongBootMode is the identity: the lock-in already applied the policy.
func (d *TickLock) LongBootMode(t *ModeTable, group, mode uint8) uint8 {
	return mode
}

func (d *TickLock) ConfirmedMode(t *ModeTable, group, mode uint8) uint8 {
	return d.Policy.Apply(t, group, mode)
}

func (d *TickLock) OnTick(ticks uint8) bool {
	if d.fired || ticks != d.LockTime {
		return false
	}
	d.fired = true
	return true
}

func (d *TickLock) Speculative() bool { return true }

// CapacitorCharge measures off-time with a capacitor that is charged
// while powered and discharges while the switch is off. A high sample at
// boot means the switch was off only briefly.
type CapacitorCharge struct {
	ADC       ADCDriver
	GPIO      GPIODriver
	Channel   ADCChannelID
	ChargePin GPIOPin
	// Threshold: samples strictly above it are quick clicks.
	Threshold ADCValue
	Policy    MemoryPolicy
}

// Prime leaves the charge pin floating so the sample sees the residual
// charge.
func (d *CapacitorCharge) Prime() {
	_ = d.GPIO.ConfigureInput(d.ChargePin)
	_ = d.ADC.ConfigureChannel(d.Channel)
}

// IsShortClick samples the capacitor. The first conversion after the
// channel switch is discarded. A failed sample counts as a long boot.
func (d *CapacitorCharge) IsShortClick(rec PersistedRecord, found bool) bool {
	if !found {
		return false
	}
	if _, err := d.ADC.ReadRaw(d.Channel); err != nil {
		return false
	}
	v, err := d.ADC.ReadRaw(d.Channel)
	if err != nil {
		return false
	}
	return v > d.Threshold
}

// Rearm charges the capacitor for the next power cycle.
func (d *CapacitorCharge) Rearm() {
	if err := d.GPIO.ConfigureOutput(d.ChargePin); err != nil {
		return
	}
	_ = d.GPIO.SetPin(d.ChargePin, true)
}

func (d *CapacitorCharge) LongBootMode(t *ModeTable, group, mode uint8) uint8 {
	return d.Policy.Apply(t, group, mode)
}

// ConfirmedMode is the identity; the policy runs at the next load.
func (d *CapacitorCharge) ConfirmedMode(t *ModeTable, group, mode uint8) uint8 {
	return mode
}

func (d *CapacitorCharge) OnTick(uint8) bool { return false }

func (d *CapacitorCharge) Speculative() bool { return false }
