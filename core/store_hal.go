package core

// ErasedByte is the value of an erased non-volatile cell.
const ErasedByte = 0xFF

// NVStore is the abstract byte-erasable non-volatile memory the ledger
// lives in. Platform backends poll each operation to completion before
// returning; the ledger never issues overlapping operations.
type NVStore interface {
	// Read returns the byte at addr.
	Read(addr uint16) (byte, error)

	// Write programs the byte at addr.
	Write(addr uint16, v byte) error

	// Erase resets the byte at addr to ErasedByte.
	Erase(addr uint16) error
}
