package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quasar/core"
)

func newDevice(t *testing.T, name string) *Device {
	t.Helper()
	cfg, ok := core.Preset(name)
	require.True(t, ok)
	d, err := NewDevice(cfg)
	require.NoError(t, err)
	return d
}

func click(t *testing.T, d *Device, on, off int) *Cycle {
	t.Helper()
	cy, err := d.PowerOn(on)
	require.NoError(t, err)
	d.PowerOff(off)
	return cy
}

func TestDeviceQuickClickAdvancesMode(t *testing.T) {
	d := newDevice(t, "nanjg105d")

	first := click(t, d, 5, 10)
	assert.Equal(t, uint8(0), first.Context.Mode)

	second := click(t, d, 5, 10)
	assert.Equal(t, uint8(1), second.Context.Mode)
	assert.Equal(t, 2, d.Cycles())

	rec, found := d.Stored()
	require.True(t, found)
	assert.True(t, rec.Speculative)
	assert.Equal(t, uint8(1), rec.Mode)
}

func TestDeviceHoldLocksIn(t *testing.T) {
	d := newDevice(t, "nanjg105d")
	click(t, d, 5, 10)
	cy := click(t, d, 60, 10)

	assert.True(t, cy.Context.Locked)
	assert.Equal(t, core.StateRun, cy.State)
	assert.Equal(t, core.Code(32), cy.Level)

	rec, found := d.Stored()
	require.True(t, found)
	assert.Equal(t, core.PersistedRecord{Group: 0, Mode: 1}, rec)

	// A long boot keeps the remembered mode.
	cy = click(t, d, 5, 10)
	assert.Equal(t, uint8(1), cy.Context.Mode)
}

func TestDeviceCapacitorOffTime(t *testing.T) {
	d := newDevice(t, "a17ddl")

	click(t, d, 5, 5)
	assert.False(t, d.GPIO.Level[d.Config.ChargePin])

	cy := click(t, d, 5, 100)
	assert.Equal(t, uint8(1), cy.Context.Mode, "short off time is a click")

	cy = click(t, d, 5, 5)
	assert.Equal(t, uint8(1), cy.Context.Mode, "long off time keeps the mode")

	cy = click(t, d, 5, 5)
	assert.Equal(t, uint8(2), cy.Context.Mode)
}

func TestDeviceCapacitorNotRecharged(t *testing.T) {
	d := newDevice(t, "a17ddl")
	click(t, d, 5, 5)

	// Power dies before the optimistic save commits, so the charge pin
	// is never driven and the capacitor keeps decaying.
	d.CutPowerAfterWrites(0)
	cy := click(t, d, 5, 5)
	assert.Equal(t, uint8(1), cy.Context.Mode)
	assert.Less(t, d.capReading(), core.ADCValue(255))
}

func TestDevicePowerCutDuringFirstSave(t *testing.T) {
	d := newDevice(t, "nanjg105d")
	d.CutPowerAfterWrites(1)

	cy, err := d.PowerOn(100)
	require.NoError(t, err)
	assert.NotEmpty(t, cy.Events)
	assert.Equal(t, core.EvtPowerLost, cy.Events[len(cy.Events)-1].Kind)

	_, found := d.Stored()
	assert.False(t, found, "a torn first save leaves the store blank")

	cy = click(t, d, 5, 5)
	assert.Equal(t, uint8(0), cy.Context.Mode)
}

func TestDeviceLowBatteryDerates(t *testing.T) {
	d := newDevice(t, "nanjg105d")
	d.Store.Poke(1, 0x03)
	d.Store.Poke(0, 0x00)
	d.SetBattery(100)

	cy := click(t, d, 200, 5)
	var derates int
	for _, e := range cy.Events {
		if e.Kind == core.EvtDerate {
			derates++
		}
	}
	assert.Positive(t, derates)
	assert.Less(t, int(cy.Level), 255)
}

func TestNewDeviceRejectsBadConfig(t *testing.T) {
	cfg := core.Nanjg105D()
	cfg.LockTime = 2
	_, err := NewDevice(cfg)
	assert.ErrorIs(t, err, core.ErrLockTime)
}
