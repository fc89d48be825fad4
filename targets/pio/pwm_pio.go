//go:build rp2040

package pio

// PIO PWM for outputs that have no free hardware PWM slice.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// pwmProgram counts Y down from the period and raises the side-set pin
// once it meets the level in X. A new level is pulled without blocking at
// the start of every period.
//
//	.side_set 1 opt
//	    pull noblock    side 0
//	    mov x, osr
//	    mov y, isr
//	countloop:
//	    jmp x!=y noset
//	    jmp skip        side 1
//	noset:
//	    nop
//	skip:
//	    jmp y-- countloop
var pwmProgram = []uint16{
	0x9080, // 0: pull noblock side 0
	0xa027, // 1: mov x, osr
	0xa046, // 2: mov y, isr
	0x00a5, // 3: jmp x!=y, 5
	0x1806, // 4: jmp 6 side 1
	0xa042, // 5: nop
	0x0083, // 6: jmp y--, 3
}

// Jump targets are absolute, so the program is pinned to address 0.
const pwmOrigin = 0

// PWM drives one pin from a claimed state machine.
type PWM struct {
	sm     rp2pio.StateMachine
	pin    machine.Pin
	period uint32
	level  uint32
}

// NewPWM loads the program on hw and starts a PWM on pin. period is the
// top count; the output frequency is the system clock / clkDiv / 2 /
// (period+1).
func NewPWM(hw *rp2pio.PIO, pin machine.Pin, period uint32, clkDiv uint16) (*PWM, error) {
	sm, err := hw.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	offset, err := hw.AddProgram(pwmProgram, pwmOrigin)
	if err != nil {
		return nil, err
	}

	pin.Configure(machine.PinConfig{Mode: hw.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetWrap(offset+uint8(len(pwmProgram))-1, offset)
	cfg.SetSidesetParams(2, true, false)
	cfg.SetSidesetPins(pin)
	cfg.SetClkDivIntFrac(clkDiv, 0)

	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(pin, 1, true)

	p := &PWM{sm: sm, pin: pin}
	p.SetPeriod(period)
	sm.SetEnabled(true)
	p.Set(0)
	return p, nil
}

// SetPeriod loads the top count into ISR. The state machine must be
// stopped; NewPWM calls it before enabling.
func (p *PWM) SetPeriod(period uint32) {
	p.period = period
	p.sm.TxPut(period)
	p.sm.Exec(rp2pio.EncodePull(false, false))
	p.sm.Exec(rp2pio.EncodeOut(rp2pio.SrcDestISR, 32))
}

// Top returns the period.
func (p *PWM) Top() uint32 { return p.period }

// Level returns the last level queued.
func (p *PWM) Level() uint32 { return p.level }

// Set queues a level in 0..Top. It takes effect at the next period.
func (p *PWM) Set(level uint32) {
	if level > p.period {
		level = p.period
	}
	p.level = level
	for p.sm.IsTxFIFOFull() {
	}
	p.sm.TxPut(level)
}

// Stop parks the pin low.
func (p *PWM) Stop() {
	p.sm.SetEnabled(false)
	p.sm.ClearFIFOs()
	p.sm.Restart()
	p.sm.SetPinsConsecutive(p.pin, 1, false)
}
