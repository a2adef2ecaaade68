// errors.go - Error taxonomy for account identifiers and account state.
//
// Encoding failures are sentinels. State failures are struct types that carry context
// and unwrap to a sentinel, so callers can use either errors.Is or errors.As.

package account

import (
	"errors"
	"fmt"

	"rollupstate/internal/felt"
)

// Identifier encoding errors.
var (
	ErrUnknownVersion       = errors.New("account id: unknown version")
	ErrUnknownStorageMode   = errors.New("account id: unknown storage mode")
	ErrInvalidPrefixElement = errors.New("account id: prefix is not a valid field element")
	ErrInvalidSuffixElement = errors.New("account id: suffix is not a valid field element")
	ErrSuffixLowByteNonZero = errors.New("account id: least significant byte of suffix must be zero")
	ErrAnchorEpochReserved  = errors.New("account id: anchor epoch must not be 0xffff")
	ErrInvalidIDLength      = errors.New("account id: encoding must be 15 bytes")
	ErrIDIntegerTooWide     = errors.New("account id: integer form exceeds 128 bits")
	ErrNotEpochBlock        = errors.New("account id: anchor block is not the first block of an epoch")
	ErrSeedNotFound         = errors.New("account id: no seed found within the attempt budget")
)

// State errors.
var (
	ErrNonMonotonicNonce        = errors.New("account: nonce must increase monotonically")
	ErrVaultUpdate              = errors.New("account: vault update failed")
	ErrStorageUpdate            = errors.New("account: storage update failed")
	ErrUnsupportedComponent     = errors.New("account: component does not support account type")
	ErrDuplicateProcedure       = errors.New("account: procedure exported more than once")
	ErrSlotCountExceeded        = errors.New("account: too many storage slots")
	ErrProcedureCountOutOfRange = errors.New("account: procedure count out of range")
	ErrInconsistentNonceUpdate  = errors.New("account: state changed without a nonce update")
	ErrNilDelta                 = errors.New("account: nil delta")
)

// Vault and storage failure reasons, carried inside VaultUpdateError and StorageUpdateError.
var (
	ErrFungibleOverflow      = errors.New("fungible amount overflow")
	ErrFungibleUnderflow     = errors.New("fungible amount underflow")
	ErrAmountTooLarge        = errors.New("fungible amount exceeds maximum")
	ErrInvalidAssetKind      = errors.New("asset issued by a faucet of the wrong type")
	ErrAssetNotFound         = errors.New("asset not in vault")
	ErrDuplicateNonFungible  = errors.New("non-fungible asset already in vault")
	ErrSlotIndexOutOfRange   = errors.New("storage slot index out of range")
	ErrSlotTypeMismatch      = errors.New("storage slot type mismatch")
	ErrDuplicateSlotUpdate   = errors.New("storage slot updated as both value and map")
	ErrInvalidProcedureRange = errors.New("procedure storage window exceeds slot limit")
)

// NonMonotonicNonceError reports a delta whose nonce does not exceed the current one.
type NonMonotonicNonceError struct {
	Current felt.Felt
	New     felt.Felt
}

func (e *NonMonotonicNonceError) Error() string {
	return fmt.Sprintf("account: nonce must increase monotonically: current %d, new %d", e.Current, e.New)
}

func (e *NonMonotonicNonceError) Unwrap() error { return ErrNonMonotonicNonce }

// VaultUpdateError wraps the reason a vault sub-delta could not be applied.
type VaultUpdateError struct {
	Err error
}

func (e *VaultUpdateError) Error() string {
	return fmt.Sprintf("%v: %v", ErrVaultUpdate, e.Err)
}

func (e *VaultUpdateError) Unwrap() []error { return []error{ErrVaultUpdate, e.Err} }

// StorageUpdateError wraps the reason a storage sub-delta could not be applied.
type StorageUpdateError struct {
	Err error
}

func (e *StorageUpdateError) Error() string {
	return fmt.Sprintf("%v: %v", ErrStorageUpdate, e.Err)
}

func (e *StorageUpdateError) Unwrap() []error { return []error{ErrStorageUpdate, e.Err} }

// UnsupportedComponentError names the first component that does not support the
// requested account type.
type UnsupportedComponentError struct {
	AccountType    AccountType
	ComponentIndex int
}

func (e *UnsupportedComponentError) Error() string {
	return fmt.Sprintf("account: component %d does not support account type %s", e.ComponentIndex, e.AccountType)
}

func (e *UnsupportedComponentError) Unwrap() error { return ErrUnsupportedComponent }

// DuplicateProcedureError reports a procedure root exported by two components.
type DuplicateProcedureError struct {
	Root   felt.Digest
	First  int
	Second int
}

func (e *DuplicateProcedureError) Error() string {
	return fmt.Sprintf("account: procedure %s exported by components %d and %d", e.Root.Hex(), e.First, e.Second)
}

func (e *DuplicateProcedureError) Unwrap() error { return ErrDuplicateProcedure }

// SlotCountExceededError reports a storage layout with more than MaxStorageSlots slots.
type SlotCountExceededError struct {
	Count int
}

func (e *SlotCountExceededError) Error() string {
	return fmt.Sprintf("account: %d storage slots exceeds maximum of %d", e.Count, MaxStorageSlots)
}

func (e *SlotCountExceededError) Unwrap() error { return ErrSlotCountExceeded }

// ProcedureCountError reports a code object with zero or too many procedures.
type ProcedureCountError struct {
	Count int
}

func (e *ProcedureCountError) Error() string {
	return fmt.Sprintf("account: %d procedures is outside (0, %d]", e.Count, MaxProcedures)
}

func (e *ProcedureCountError) Unwrap() error { return ErrProcedureCountOutOfRange }
