// code.go - Account code: the procedures an account exports.

package account

import (
	"fmt"
	"slices"

	"rollupstate/internal/felt"
)

// MaxProcedures is the largest number of procedures an account may export.
const MaxProcedures = 256

// Procedure is an exported procedure and the window of storage slots it may touch.
type Procedure struct {
	Root          felt.Digest
	StorageOffset uint8
	StorageSize   uint8
}

// AccountCode is the ordered list of an account's procedures.
type AccountCode struct {
	procedures []Procedure
}

// NewAccountCode validates the procedure count, that roots are unique, and that each
// storage window fits within MaxStorageSlots.
func NewAccountCode(procedures []Procedure) (*AccountCode, error) {
	if len(procedures) == 0 || len(procedures) > MaxProcedures {
		return nil, &ProcedureCountError{Count: len(procedures)}
	}
	seen := make(map[felt.Digest]struct{}, len(procedures))
	for _, p := range procedures {
		if _, dup := seen[p.Root]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProcedure, p.Root)
		}
		seen[p.Root] = struct{}{}
		if int(p.StorageOffset)+int(p.StorageSize) > MaxStorageSlots {
			return nil, fmt.Errorf("%w: procedure %s offset %d size %d", ErrInvalidProcedureRange, p.Root, p.StorageOffset, p.StorageSize)
		}
	}
	return &AccountCode{procedures: slices.Clone(procedures)}, nil
}

// Procedures returns a copy of the procedure list.
func (c *AccountCode) Procedures() []Procedure {
	return slices.Clone(c.procedures)
}

// Len returns the number of procedures.
func (c *AccountCode) Len() int {
	return len(c.procedures)
}

// HasProcedure reports whether root is exported.
func (c *AccountCode) HasProcedure(root felt.Digest) bool {
	return slices.ContainsFunc(c.procedures, func(p Procedure) bool { return p.Root == root })
}

// Commitment hashes, for each procedure in order, [root(4), offset, size, 0, 0].
func (c *AccountCode) Commitment() felt.Digest {
	elems := make([]felt.Felt, 0, len(c.procedures)*2*felt.WordSize)
	for _, p := range c.procedures {
		elems = append(elems, p.Root[:]...)
		elems = append(elems, felt.Felt(p.StorageOffset), felt.Felt(p.StorageSize), felt.Zero, felt.Zero)
	}
	return felt.HashElements(elems)
}
