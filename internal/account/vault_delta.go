// vault_delta.go - Net changes to an asset vault.

package account

import (
	"fmt"
	"maps"
	"slices"

	"rollupstate/internal/felt"
)

// NonFungibleAction says whether a non-fungible asset enters or leaves the vault.
type NonFungibleAction uint8

const (
	NonFungibleAdd NonFungibleAction = iota
	NonFungibleRemove
)

type nonFungibleChange struct {
	asset  NonFungibleAsset
	action NonFungibleAction
}

// VaultDelta records signed fungible amounts per faucet and add/remove actions for
// non-fungible assets. Opposite changes cancel out.
type VaultDelta struct {
	fungible    map[ID]int64
	nonFungible map[felt.Word]nonFungibleChange
}

// NewVaultDelta returns an empty vault delta.
func NewVaultDelta() *VaultDelta {
	return &VaultDelta{
		fungible:    make(map[ID]int64),
		nonFungible: make(map[felt.Word]nonFungibleChange),
	}
}

// AddAsset records a deposit.
func (d *VaultDelta) AddAsset(a Asset) error {
	return d.record(a, NonFungibleAdd)
}

// RemoveAsset records a withdrawal.
func (d *VaultDelta) RemoveAsset(a Asset) error {
	return d.record(a, NonFungibleRemove)
}

func (d *VaultDelta) record(a Asset, action NonFungibleAction) error {
	if err := validateAsset(a); err != nil {
		return err
	}
	switch a := a.(type) {
	case FungibleAsset:
		amount := int64(a.amount)
		if action == NonFungibleRemove {
			amount = -amount
		}
		// Both operands are within ±MaxFungibleAmount, so the bounds below cannot overflow.
		prev, limit := d.fungible[a.faucet], int64(MaxFungibleAmount)
		if (amount > 0 && prev > limit-amount) || (amount < 0 && prev < -limit-amount) {
			return fmt.Errorf("%w: net change %d%+d for faucet %s", ErrFungibleOverflow, prev, amount, a.faucet)
		}
		net := prev + amount
		if net == 0 {
			delete(d.fungible, a.faucet)
		} else {
			d.fungible[a.faucet] = net
		}
	case NonFungibleAsset:
		key := a.VaultKey()
		prev, ok := d.nonFungible[key]
		switch {
		case !ok:
			d.nonFungible[key] = nonFungibleChange{asset: a, action: action}
		case prev.action != action:
			delete(d.nonFungible, key)
		default:
			return fmt.Errorf("%w: %s recorded twice", ErrDuplicateNonFungible, a)
		}
	}
	return nil
}

// IsEmpty reports whether the delta changes nothing. A nil delta is empty.
func (d *VaultDelta) IsEmpty() bool {
	return d == nil || (len(d.fungible) == 0 && len(d.nonFungible) == 0)
}

// FungibleChange returns the signed net amount recorded for faucet.
func (d *VaultDelta) FungibleChange(faucet ID) int64 {
	return d.fungible[faucet]
}

// NonFungibleChange returns the action recorded for a, if any.
func (d *VaultDelta) NonFungibleChange(a NonFungibleAsset) (NonFungibleAction, bool) {
	c, ok := d.nonFungible[a.VaultKey()]
	return c.action, ok
}

// Merge folds other into d as if other's changes were recorded after d's. On error d
// may hold part of other's changes.
func (d *VaultDelta) Merge(other *VaultDelta) error {
	if other.IsEmpty() {
		return nil
	}
	for _, faucet := range other.fungibleFaucets() {
		amount := other.fungible[faucet]
		action := NonFungibleAdd
		if amount < 0 {
			action, amount = NonFungibleRemove, -amount
		}
		if err := d.record(FungibleAsset{faucet: faucet, amount: uint64(amount)}, action); err != nil {
			return err
		}
	}
	for _, key := range other.nonFungibleKeys() {
		c := other.nonFungible[key]
		if err := d.record(c.asset, c.action); err != nil {
			return err
		}
	}
	return nil
}

func (d *VaultDelta) fungibleFaucets() []ID {
	return slices.SortedFunc(maps.Keys(d.fungible), ID.Compare)
}

func (d *VaultDelta) nonFungibleKeys() []felt.Word {
	return slices.SortedFunc(maps.Keys(d.nonFungible), compareWords)
}

func (d *VaultDelta) clone() *VaultDelta {
	if d == nil {
		return NewVaultDelta()
	}
	return &VaultDelta{fungible: maps.Clone(d.fungible), nonFungible: maps.Clone(d.nonFungible)}
}
