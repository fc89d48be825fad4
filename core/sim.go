//go:build !tinygo

package core

import "errors"

// Simulated backends for host builds and tests.

var ErrStoreRange = errors.New("store address out of range")

// MemStore is an in-memory NVStore. It can cut power after a number of
// mutating operations and counts writes per address.
type MemStore struct {
	cells  []byte
	writes []uint32
	erases []uint32

	// opsLeft mutating operations succeed before power is cut; -1 never.
	opsLeft int
	ops     int
}

// NewMemStore returns a fully erased store of size bytes.
func NewMemStore(size int) *MemStore {
	s := &MemStore{
		cells:   make([]byte, size),
		writes:  make([]uint32, size),
		erases:  make([]uint32, size),
		opsLeft: -1,
	}
	for i := range s.cells {
		s.cells[i] = ErasedByte
	}
	return s
}

func (s *MemStore) Read(addr uint16) (byte, error) {
	if int(addr) >= len(s.cells) {
		return 0, ErrStoreRange
	}
	return s.cells[addr], nil
}

func (s *MemStore) Write(addr uint16, v byte) error {
	if err := s.step(addr); err != nil {
		return err
	}
	s.cells[addr] = v
	s.writes[addr]++
	return nil
}

func (s *MemStore) Erase(addr uint16) error {
	if err := s.step(addr); err != nil {
		return err
	}
	s.cells[addr] = ErasedByte
	s.erases[addr]++
	return nil
}

func (s *MemStore) step(addr uint16) error {
	if int(addr) >= len(s.cells) {
		return ErrStoreRange
	}
	if s.opsLeft == 0 {
		return ErrPowerLost
	}
	if s.opsLeft > 0 {
		s.opsLeft--
	}
	s.ops++
	return nil
}

// CutPowerAfter lets n more mutating operations succeed; the rest fail
// with ErrPowerLost. n < 0 disarms the cut.
func (s *MemStore) CutPowerAfter(n int) { s.opsLeft = n }

// Restore disarms a pending power cut.
func (s *MemStore) Restore() { s.opsLeft = -1 }

// Ops returns the number of successful mutating operations.
func (s *MemStore) Ops() int { return s.ops }

// Bytes returns a copy of the store contents.
func (s *MemStore) Bytes() []byte {
	return append([]byte(nil), s.cells...)
}

// Poke sets a byte directly, bypassing the counters.
func (s *MemStore) Poke(addr uint16, v byte) { s.cells[addr] = v }

// Writes returns the program count of addr.
func (s *MemStore) Writes(addr uint16) uint32 { return s.writes[addr] }

// Erases returns the erase count of addr.
func (s *MemStore) Erases(addr uint16) uint32 { return s.erases[addr] }

// SimClock reports power for a fixed number of tick periods.
type SimClock struct {
	left    int
	elapsed uint32
}

// PowerFor arms the clock for n more powered ticks.
func (c *SimClock) PowerFor(n int) { c.left = n }

// Wait consumes one powered tick. It returns false once power is gone.
func (c *SimClock) Wait() bool {
	if c.left <= 0 {
		return false
	}
	c.left--
	c.elapsed++
	return true
}

// Elapsed returns the number of ticks waited in total.
func (c *SimClock) Elapsed() uint32 { return c.elapsed }

// SimADC returns queued samples per channel, then a steady value.
type SimADC struct {
	queue  map[ADCChannelID][]ADCValue
	steady map[ADCChannelID]ADCValue
	fail   map[ADCChannelID]bool
	reads  map[ADCChannelID]int
}

// NewSimADC returns an ADC reading 0 on every channel.
func NewSimADC() *SimADC {
	return &SimADC{
		queue:  make(map[ADCChannelID][]ADCValue),
		steady: make(map[ADCChannelID]ADCValue),
		fail:   make(map[ADCChannelID]bool),
		reads:  make(map[ADCChannelID]int),
	}
}

// Set fixes the value ch returns once its queue is empty.
func (a *SimADC) Set(ch ADCChannelID, v ADCValue) { a.steady[ch] = v }

// Queue appends one-shot samples for ch.
func (a *SimADC) Queue(ch ADCChannelID, vs ...ADCValue) {
	a.queue[ch] = append(a.queue[ch], vs...)
}

// Fail makes reads of ch return an error.
func (a *SimADC) Fail(ch ADCChannelID, fail bool) { a.fail[ch] = fail }

// Reads returns how many samples ch has produced.
func (a *SimADC) Reads(ch ADCChannelID) int { return a.reads[ch] }

func (a *SimADC) ConfigureChannel(ch ADCChannelID) error { return nil }

func (a *SimADC) ReadRaw(ch ADCChannelID) (ADCValue, error) {
	if a.fail[ch] {
		return 0, errors.New("adc: conversion failed")
	}
	a.reads[ch]++
	if q := a.queue[ch]; len(q) > 0 {
		a.queue[ch] = q[1:]
		return q[0], nil
	}
	return a.steady[ch], nil
}

// RecordingPWM keeps the current duty of each channel and a history of
// changes.
type RecordingPWM struct {
	Max     uint32
	duty    [2]PWMValue
	History []DutyChange
}

// DutyChange is one SetDutyCycle call that changed the output.
type DutyChange struct {
	Channel PWMChannel
	Value   PWMValue
}

func (p *RecordingPWM) ConfigureChannel(ch PWMChannel) error {
	if int(ch) >= len(p.duty) {
		return errors.New("pwm: no such channel")
	}
	p.duty[ch] = 0
	return nil
}

func (p *RecordingPWM) SetDutyCycle(ch PWMChannel, v PWMValue) error {
	if int(ch) >= len(p.duty) {
		return errors.New("pwm: no such channel")
	}
	if p.duty[ch] != v {
		p.History = append(p.History, DutyChange{Channel: ch, Value: v})
	}
	p.duty[ch] = v
	return nil
}

func (p *RecordingPWM) GetMaxValue() uint32 {
	if p.Max == 0 {
		return 255
	}
	return p.Max
}

// Duty returns the current duty of ch.
func (p *RecordingPWM) Duty(ch PWMChannel) PWMValue { return p.duty[ch] }

// SimPin records GPIO state.
type SimPin struct {
	Output map[GPIOPin]bool
	Level  map[GPIOPin]bool
	Sets   int
}

// NewSimPin returns GPIO with every pin an input.
func NewSimPin() *SimPin {
	return &SimPin{Output: make(map[GPIOPin]bool), Level: make(map[GPIOPin]bool)}
}

func (p *SimPin) ConfigureOutput(pin GPIOPin) error {
	p.Output[pin] = true
	return nil
}

func (p *SimPin) ConfigureInput(pin GPIOPin) error {
	p.Output[pin] = false
	p.Level[pin] = false
	return nil
}

func (p *SimPin) SetPin(pin GPIOPin, v bool) error {
	if !p.Output[pin] {
		return errors.New("gpio: pin is not an output")
	}
	p.Level[pin] = v
	p.Sets++
	return nil
}
