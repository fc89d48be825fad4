// Package sim runs the firmware core against simulated hardware across
// power cycles.
package sim

import (
	"errors"
	"fmt"
	"math"

	"quasar/core"
)

// CapacitorFull is the ADC reading of a fully charged off-time capacitor.
const CapacitorFull core.ADCValue = 255

// DefaultCapacitorTau is the discharge time constant in ticks. With the
// a17ddl threshold of 190 an off time below about 17 ticks reads as a
// quick click.
const DefaultCapacitorTau = 60.0

// DefaultBattery is a healthy cell reading.
const DefaultBattery core.ADCValue = 200

// Device is a flashlight on the bench: the EEPROM, ADC and GPIO survive
// power cycles, RAM does not.
type Device struct {
	Config core.Config
	Store  *core.MemStore
	ADC    *core.SimADC
	GPIO   *core.SimPin

	// CapacitorTau overrides DefaultCapacitorTau when non-zero.
	CapacitorTau float64

	clock  core.SimClock
	charge float64
	cycles int
}

// Cycle is the outcome of one powered interval.
type Cycle struct {
	Index   int
	On      int
	Events  []core.Event
	Context core.Context
	State   core.SessionState
	Level   core.Code
	PWM     *core.RecordingPWM
	Err     error
}

// NewDevice validates cfg and returns a device with an erased store.
func NewDevice(cfg core.Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	size := int(cfg.Ledger.Base) + int(cfg.Ledger.Size())
	d := &Device{
		Config: cfg,
		Store:  core.NewMemStore(size),
		ADC:    core.NewSimADC(),
		GPIO:   core.NewSimPin(),
	}
	d.SetBattery(DefaultBattery)
	return d, nil
}

// SetBattery fixes the battery channel reading.
func (d *Device) SetBattery(v core.ADCValue) {
	d.ADC.Set(core.BatteryChannel, v)
}

// Cycles returns the number of powered intervals run so far.
func (d *Device) Cycles() int { return d.cycles }

// PowerOn boots fresh firmware and keeps it powered for ticks tick
// periods. The session always ends in power loss; any other error is a
// firmware fault.
func (d *Device) PowerOn(ticks int) (*Cycle, error) {
	d.cycles++
	cy := &Cycle{Index: d.cycles, On: ticks, PWM: &core.RecordingPWM{}}
	trace := core.NewTrace(func(e core.Event) { cy.Events = append(cy.Events, e) })

	d.ADC.Set(core.CapacitorChannel, d.capReading())
	d.clock.PowerFor(ticks)
	c, err := core.NewController(&d.Config, core.Board{
		Store: d.Store,
		ADC:   d.ADC,
		PWM:   cy.PWM,
		GPIO:  d.GPIO,
		Clock: &d.clock,
		Trace: trace,
	})
	if err != nil {
		return nil, fmt.Errorf("sim: cycle %d: %w", d.cycles, err)
	}

	err = c.Boot()
	d.Store.Restore()
	cy.Context = c.Context()
	cy.State = c.State()
	cy.Level = c.Level()
	if !errors.Is(err, core.ErrPowerLost) {
		cy.Err = err
		return cy, fmt.Errorf("sim: cycle %d ended without power loss: %w", d.cycles, err)
	}
	if d.charging() {
		d.charge = float64(CapacitorFull)
	}
	return cy, nil
}

// PowerOff leaves the switch off for ticks tick periods, discharging the
// off-time capacitor.
func (d *Device) PowerOff(ticks int) {
	tau := d.CapacitorTau
	if tau <= 0 {
		tau = DefaultCapacitorTau
	}
	d.charge *= math.Exp(-float64(ticks) / tau)
	d.GPIO.Level[d.Config.ChargePin] = false
}

// CutPowerAfterWrites drops the supply after n more store operations of
// the next PowerOn.
func (d *Device) CutPowerAfterWrites(n int) {
	d.Store.CutPowerAfter(n)
}

// Stored reads the persisted record without touching the store.
func (d *Device) Stored() (core.PersistedRecord, bool) {
	return core.NewLedger(d.Store, d.Config.Ledger, d.Config.Table).Load()
}

func (d *Device) charging() bool {
	pin := d.Config.ChargePin
	return d.Config.Strategy == core.StrategyCapacitor && d.GPIO.Output[pin] && d.GPIO.Level[pin]
}

func (d *Device) capReading() core.ADCValue {
	v := math.Round(d.charge)
	if v > float64(CapacitorFull) {
		v = float64(CapacitorFull)
	}
	return core.ADCValue(v)
}
