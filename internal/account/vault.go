// vault.go - The asset vault of an account.

package account

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"rollupstate/internal/felt"
	"rollupstate/internal/merkle"
)

// AssetVault holds at most one fungible balance per faucet and any number of distinct
// non-fungible assets.
type AssetVault struct {
	fungible    map[ID]uint64
	nonFungible map[felt.Word]NonFungibleAsset
}

// NewAssetVault returns a vault holding assets.
func NewAssetVault(assets ...Asset) (*AssetVault, error) {
	v := &AssetVault{
		fungible:    make(map[ID]uint64),
		nonFungible: make(map[felt.Word]NonFungibleAsset),
	}
	for _, a := range assets {
		if err := v.Add(a); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Add deposits an asset. Fungible amounts for the same faucet are summed.
func (v *AssetVault) Add(a Asset) error {
	if err := validateAsset(a); err != nil {
		return err
	}
	switch a := a.(type) {
	case FungibleAsset:
		cur := v.fungible[a.faucet]
		if a.amount > MaxFungibleAmount-cur {
			return fmt.Errorf("%w: %d + %d for faucet %s", ErrFungibleOverflow, cur, a.amount, a.faucet)
		}
		if sum := cur + a.amount; sum != 0 {
			v.fungible[a.faucet] = sum
		}
	case NonFungibleAsset:
		key := a.VaultKey()
		if _, ok := v.nonFungible[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNonFungible, a)
		}
		v.nonFungible[key] = a
	}
	return nil
}

// Remove withdraws an asset.
func (v *AssetVault) Remove(a Asset) error {
	if err := validateAsset(a); err != nil {
		return err
	}
	switch a := a.(type) {
	case FungibleAsset:
		cur, ok := v.fungible[a.faucet]
		if !ok && a.amount != 0 {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, a)
		}
		if a.amount > cur {
			return fmt.Errorf("%w: %d - %d for faucet %s", ErrFungibleUnderflow, cur, a.amount, a.faucet)
		}
		if rem := cur - a.amount; rem == 0 {
			delete(v.fungible, a.faucet)
		} else {
			v.fungible[a.faucet] = rem
		}
	case NonFungibleAsset:
		key := a.VaultKey()
		if _, ok := v.nonFungible[key]; !ok {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, a)
		}
		delete(v.nonFungible, key)
	}
	return nil
}

// Balance returns the fungible balance issued by faucet, or zero.
func (v *AssetVault) Balance(faucet ID) uint64 {
	return v.fungible[faucet]
}

// HasNonFungible reports whether the vault holds a.
func (v *AssetVault) HasNonFungible(a NonFungibleAsset) bool {
	_, ok := v.nonFungible[a.VaultKey()]
	return ok
}

// Len returns the number of vault entries.
func (v *AssetVault) Len() int {
	return len(v.fungible) + len(v.nonFungible)
}

// IsEmpty reports whether the vault holds nothing.
func (v *AssetVault) IsEmpty() bool {
	return v.Len() == 0
}

// Assets returns the vault contents ordered by vault key.
func (v *AssetVault) Assets() []Asset {
	out := make([]Asset, 0, v.Len())
	for faucet, amount := range v.fungible {
		out = append(out, FungibleAsset{faucet: faucet, amount: amount})
	}
	for _, a := range v.nonFungible {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Asset) int {
		return compareWords(a.VaultKey(), b.VaultKey())
	})
	return out
}

// Root commits to the vault contents. Each entry becomes the leaf hash(key || value),
// leaves are ordered by key, and the empty vault commits to the zero digest.
func (v *AssetVault) Root() felt.Digest {
	assets := v.Assets()
	leaves := make([]felt.Digest, len(assets))
	for i, a := range assets {
		leaves[i] = felt.HashWords(a.VaultKey(), a.Word())
	}
	return merkle.NewTree(leaves).Root()
}

// Clone returns a deep copy of v.
func (v *AssetVault) Clone() *AssetVault {
	return &AssetVault{fungible: maps.Clone(v.fungible), nonFungible: maps.Clone(v.nonFungible)}
}

// apply executes d against v. On error v may be partially updated; callers apply to a
// clone.
func (v *AssetVault) apply(d *VaultDelta) error {
	for _, faucet := range d.fungibleFaucets() {
		amount := d.fungible[faucet]
		var err error
		if amount > 0 {
			err = v.Add(FungibleAsset{faucet: faucet, amount: uint64(amount)})
		} else {
			err = v.Remove(FungibleAsset{faucet: faucet, amount: uint64(-amount)})
		}
		if err != nil {
			return err
		}
	}
	for _, key := range d.nonFungibleKeys() {
		change := d.nonFungible[key]
		var err error
		if change.action == NonFungibleAdd {
			err = v.Add(change.asset)
		} else {
			err = v.Remove(change.asset)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func compareWords(a, b felt.Word) int {
	for i := range a {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}
