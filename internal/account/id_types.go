package account

import (
	"fmt"
	"strings"
)

// AccountType is the 2-bit account type stored in bits 4..5 of the ID prefix.
// Bit 1 of the type marks faucets.
type AccountType uint8

const (
	RegularAccountImmutableCode AccountType = 0b00
	RegularAccountUpdatableCode AccountType = 0b01
	FungibleFaucet              AccountType = 0b10
	NonFungibleFaucet           AccountType = 0b11
)

// AllAccountTypes lists every account type in encoding order.
var AllAccountTypes = [...]AccountType{
	RegularAccountImmutableCode,
	RegularAccountUpdatableCode,
	FungibleFaucet,
	NonFungibleFaucet,
}

// IsFaucet reports whether accounts of this type can issue assets.
func (t AccountType) IsFaucet() bool {
	return t&0b10 != 0
}

// IsRegularAccount reports whether t is one of the two regular account types.
func (t AccountType) IsRegularAccount() bool {
	return !t.IsFaucet()
}

func (t AccountType) String() string {
	switch t {
	case RegularAccountImmutableCode:
		return "regular-immutable"
	case RegularAccountUpdatableCode:
		return "regular-updatable"
	case FungibleFaucet:
		return "fungible-faucet"
	case NonFungibleFaucet:
		return "non-fungible-faucet"
	default:
		return fmt.Sprintf("AccountType(%d)", uint8(t))
	}
}

// ParseAccountType parses the names produced by AccountType.String.
func ParseAccountType(s string) (AccountType, error) {
	for _, t := range AllAccountTypes {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown account type %q", s)
}

// StorageMode is the 2-bit storage mode stored in bits 6..7 of the ID prefix.
// Only two of the four bit patterns are assigned.
type StorageMode uint8

const (
	StoragePublic  StorageMode = 0b00
	StoragePrivate StorageMode = 0b10
)

func (m StorageMode) valid() bool {
	return m == StoragePublic || m == StoragePrivate
}

func (m StorageMode) String() string {
	switch m {
	case StoragePublic:
		return "public"
	case StoragePrivate:
		return "private"
	default:
		return fmt.Sprintf("StorageMode(%#b)", uint8(m))
	}
}

// ParseStorageMode parses "public" or "private".
func ParseStorageMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "public":
		return StoragePublic, nil
	case "private":
		return StoragePrivate, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStorageMode, s)
}

// Version is the 4-bit ID layout version stored in the low nibble of the prefix.
type Version uint8

const Version0 Version = 0

func (v Version) known() bool {
	return v == Version0
}

func (v Version) String() string {
	return fmt.Sprintf("v%d", uint8(v))
}
