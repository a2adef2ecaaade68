// asset.go - Fungible and non-fungible assets held in account vaults.

package account

import (
	"fmt"

	"rollupstate/internal/felt"
)

// MaxFungibleAmount is the largest amount a fungible asset may carry: 2^63 - 2^31.
const MaxFungibleAmount uint64 = 1<<63 - 1<<31

// Asset is either a FungibleAsset or a NonFungibleAsset.
type Asset interface {
	// Faucet returns the ID of the issuing faucet.
	Faucet() ID
	// VaultKey identifies the asset's slot in a vault.
	VaultKey() felt.Word
	// Word is the asset's value in the vault commitment.
	Word() felt.Word
	IsFungible() bool
}

// FungibleAsset is an amount of a fungible token.
type FungibleAsset struct {
	faucet ID
	amount uint64
}

// NewFungibleAsset checks that faucet is a fungible faucet and amount is in range.
func NewFungibleAsset(faucet ID, amount uint64) (FungibleAsset, error) {
	a := FungibleAsset{faucet: faucet, amount: amount}
	if err := a.validate(); err != nil {
		return FungibleAsset{}, err
	}
	return a, nil
}

func (a FungibleAsset) validate() error {
	if a.faucet.AccountType() != FungibleFaucet {
		return fmt.Errorf("%w: fungible asset issued by %s account %s", ErrInvalidAssetKind, a.faucet.AccountType(), a.faucet)
	}
	if a.amount > MaxFungibleAmount {
		return fmt.Errorf("%w: %d", ErrAmountTooLarge, a.amount)
	}
	return nil
}

func (a FungibleAsset) Faucet() ID     { return a.faucet }
func (a FungibleAsset) Amount() uint64 { return a.amount }
func (a FungibleAsset) IsFungible() bool {
	return true
}

// VaultKey is [0, 0, faucet suffix, faucet prefix]; all amounts of one faucet share a key.
func (a FungibleAsset) VaultKey() felt.Word {
	return felt.Word{felt.Zero, felt.Zero, a.faucet.Suffix(), a.faucet.Prefix()}
}

// Word is [amount, 0, faucet suffix, faucet prefix].
func (a FungibleAsset) Word() felt.Word {
	return felt.Word{felt.Felt(a.amount), felt.Zero, a.faucet.Suffix(), a.faucet.Prefix()}
}

func (a FungibleAsset) String() string {
	return fmt.Sprintf("%d@%s", a.amount, a.faucet)
}

// NonFungibleAsset is a unique item identified by the hash of its data.
type NonFungibleAsset struct {
	faucet ID
	data   felt.Digest
}

// NewNonFungibleAsset checks that faucet is a non-fungible faucet.
func NewNonFungibleAsset(faucet ID, data felt.Digest) (NonFungibleAsset, error) {
	a := NonFungibleAsset{faucet: faucet, data: data}
	if err := a.validate(); err != nil {
		return NonFungibleAsset{}, err
	}
	return a, nil
}

func (a NonFungibleAsset) validate() error {
	if a.faucet.AccountType() != NonFungibleFaucet {
		return fmt.Errorf("%w: non-fungible asset issued by %s account %s", ErrInvalidAssetKind, a.faucet.AccountType(), a.faucet)
	}
	return nil
}

func (a NonFungibleAsset) Faucet() ID        { return a.faucet }
func (a NonFungibleAsset) Data() felt.Digest { return a.data }
func (a NonFungibleAsset) IsFungible() bool {
	return false
}

// VaultKey is the asset word itself; every non-fungible asset has its own key.
func (a NonFungibleAsset) VaultKey() felt.Word {
	return a.Word()
}

// Word binds the data hash to the issuing faucet.
func (a NonFungibleAsset) Word() felt.Word {
	return felt.HashElements([]felt.Felt{
		a.data[0], a.data[1], a.data[2], a.data[3],
		a.faucet.Suffix(), a.faucet.Prefix(),
	}).Word()
}

func (a NonFungibleAsset) String() string {
	return fmt.Sprintf("nft(%s)@%s", a.data, a.faucet)
}

func validateAsset(a Asset) error {
	switch a := a.(type) {
	case FungibleAsset:
		return a.validate()
	case NonFungibleAsset:
		return a.validate()
	default:
		return fmt.Errorf("%w: unknown asset type %T", ErrInvalidAssetKind, a)
	}
}
