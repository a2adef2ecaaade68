package account

import (
	"encoding/binary"
	"fmt"

	"rollupstate/internal/felt"
)

// NewDummyID builds a valid ID with the given type and storage mode from arbitrary bytes,
// for tests and fixtures. The metadata byte and the epoch are overwritten, bit 32 of the
// prefix is cleared so the prefix is always a field element, and the suffix is shaped
// with anchor epoch 0.
func NewDummyID(b [IDSize]byte, accountType AccountType, mode StorageMode) ID {
	b[7] = uint8(mode)<<storageModeShift | uint8(accountType)<<typeShift | uint8(Version0)
	b[3] &= 0b1111_1110

	prefix := binary.BigEndian.Uint64(b[:8])

	var suffixBytes [8]byte
	copy(suffixBytes[:7], b[8:])
	suffix, err := shapeSuffix(felt.Reduce(binary.BigEndian.Uint64(suffixBytes[:])).Uint64(), 0)
	if err != nil {
		panic(err)
	}

	id, err := NewIDFromRaw(prefix, suffix)
	if err != nil {
		panic(fmt.Sprintf("dummy id construction produced an invalid id: %v", err))
	}
	return id
}

// DummyID spreads random over an otherwise zero ID with the given metadata:
//
//	prefix: [random byte 3 | 5 zero bytes | random byte 2 | metadata]
//	suffix: [2 zero bytes (epoch) | random byte 1 | 3 zero bytes | random byte 0 | 0]
func DummyID(accountType AccountType, mode StorageMode, random uint32) ID {
	prefix := uint64(mode)<<storageModeShift | uint64(accountType)<<typeShift
	prefix |= uint64(random&0xff00_0000) << 32
	prefix |= uint64(random&0x00ff_0000) >> 8

	suffix := uint64(random&0x0000_ff00) << 32
	suffix |= uint64(random&0x0000_00ff) << 8

	id, err := NewIDFromRaw(prefix, suffix)
	if err != nil {
		panic(fmt.Sprintf("dummy id construction produced an invalid id: %v", err))
	}
	return id
}
