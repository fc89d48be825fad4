//go:build rp2040

package main

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/at24cx"

	"quasar/core"
)

// AT24C32 geometry.
const (
	eepromPageSize = 32
	eepromSize     = 4096
	// ackPollMax bounds the write cycle wait; each poll is one address
	// transfer, about 25 µs at 400 kHz.
	ackPollMax = 400
)

var errEEPROMBusy = errors.New("eeprom: write cycle did not finish")

// eepromStore implements core.NVStore on an I2C EEPROM. Erase programs
// ErasedByte. Writes poll for the device ACK instead of sleeping, since
// the ledger runs them with interrupts masked.
type eepromStore struct {
	bus  drivers.I2C
	dev  at24cx.Device
	addr uint16
}

// newEEPROMStore always returns a usable store; a bus error is reported
// alongside it.
func newEEPROMStore(bus *machine.I2C) (*eepromStore, error) {
	err := bus.Configure(machine.I2CConfig{
		SDA:       pinEEPROMSDA,
		SCL:       pinEEPROMSCL,
		Frequency: eepromHz,
	})
	dev := at24cx.New(bus)
	dev.Configure(at24cx.Config{
		PageSize:        eepromPageSize,
		StartRAMAddress: 0,
		EndRAMAddress:   eepromSize,
	})
	return &eepromStore{bus: bus, dev: dev, addr: dev.Address}, err
}

func (s *eepromStore) Read(addr uint16) (byte, error) {
	if addr >= eepromSize {
		return 0, errors.New("eeprom: address out of range")
	}
	return s.dev.ReadByte(addr)
}

func (s *eepromStore) Write(addr uint16, v byte) error {
	if addr >= eepromSize {
		return errors.New("eeprom: address out of range")
	}
	if err := s.dev.WriteByte(addr, v); err != nil {
		return err
	}
	return s.waitReady()
}

func (s *eepromStore) Erase(addr uint16) error {
	return s.Write(addr, core.ErasedByte)
}

// waitReady polls until the device acknowledges its address again.
func (s *eepromStore) waitReady() error {
	for i := 0; i < ackPollMax; i++ {
		if s.bus.Tx(s.addr, []byte{}, nil) == nil {
			return nil
		}
	}
	return errEEPROMBusy
}
