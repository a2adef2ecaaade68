// builder.go - Assembling account code and storage from components, and building new
// accounts with a ground seed.

package account

import (
	"context"
	"fmt"

	"rollupstate/internal/felt"
)

// BuildFromComponents lays out the code and storage of an account of type accountType.
//
// Faucets reserve slot 0 for issuance tracking: an empty value slot for fungible
// faucets, an empty map slot for non-fungible ones. Component slots follow contiguously
// in component order, and every procedure of a component is given that component's
// storage window.
func BuildFromComponents(accountType AccountType, components []*Component) (*AccountCode, *AccountStorage, error) {
	for i, c := range components {
		if !c.SupportsType(accountType) {
			return nil, nil, &UnsupportedComponentError{AccountType: accountType, ComponentIndex: i}
		}
	}

	var slots []StorageSlot
	switch accountType {
	case FungibleFaucet:
		slots = append(slots, EmptyValueSlot())
	case NonFungibleFaucet:
		slots = append(slots, EmptyMapSlot())
	}

	total := len(slots)
	for _, c := range components {
		total += len(c.slots)
	}
	if total > MaxStorageSlots {
		return nil, nil, &SlotCountExceededError{Count: total}
	}

	var procedures []Procedure
	exportedBy := make(map[felt.Digest]int)
	for i, c := range components {
		offset, size := len(slots), len(c.slots)
		for _, root := range c.library.roots {
			if first, dup := exportedBy[root]; dup {
				return nil, nil, &DuplicateProcedureError{Root: root, First: first, Second: i}
			}
			exportedBy[root] = i
			procedures = append(procedures, Procedure{
				Root:          root,
				StorageOffset: uint8(offset),
				StorageSize:   uint8(size),
			})
		}
		slots = append(slots, c.slots...)
	}

	code, err := NewAccountCode(procedures)
	if err != nil {
		return nil, nil, err
	}
	storage, err := NewAccountStorage(slots)
	if err != nil {
		return nil, nil, err
	}
	return code, storage, nil
}

// AccountBuilder builds new accounts. The zero anchor is PreGenesisAnchor.
type AccountBuilder struct {
	initSeed    [32]byte
	anchor      Anchor
	accountType AccountType
	storageMode StorageMode
	components  []*Component
	seedOpts    []SeedOption
}

// NewAccountBuilder returns a builder for a public, immutable regular account whose seed
// search starts from initSeed.
func NewAccountBuilder(initSeed [32]byte) *AccountBuilder {
	return &AccountBuilder{
		initSeed:    initSeed,
		anchor:      PreGenesisAnchor,
		accountType: RegularAccountImmutableCode,
		storageMode: StoragePublic,
	}
}

func (b *AccountBuilder) Anchor(a Anchor) *AccountBuilder {
	b.anchor = a
	return b
}

func (b *AccountBuilder) AccountType(t AccountType) *AccountBuilder {
	b.accountType = t
	return b
}

func (b *AccountBuilder) StorageMode(m StorageMode) *AccountBuilder {
	b.storageMode = m
	return b
}

func (b *AccountBuilder) WithComponent(c *Component) *AccountBuilder {
	b.components = append(b.components, c)
	return b
}

// WithSeedOptions passes options through to ComputeSeed.
func (b *AccountBuilder) WithSeedOptions(opts ...SeedOption) *AccountBuilder {
	b.seedOpts = append(b.seedOpts, opts...)
	return b
}

// Build lays out the account, grinds a seed for it and returns the new account with
// the seed that proves its ID.
func (b *AccountBuilder) Build(ctx context.Context) (*Account, felt.Word, error) {
	code, storage, err := BuildFromComponents(b.accountType, b.components)
	if err != nil {
		return nil, felt.Word{}, err
	}

	seed, err := ComputeSeed(ctx, SeedRequest{
		InitSeed:          b.initSeed,
		AccountType:       b.accountType,
		StorageMode:       b.storageMode,
		Version:           Version0,
		CodeCommitment:    code.Commitment(),
		StorageCommitment: storage.Commitment(),
		AnchorBlockHash:   b.anchor.BlockHash(),
	}, b.seedOpts...)
	if err != nil {
		return nil, felt.Word{}, fmt.Errorf("grind account seed: %w", err)
	}

	acct, err := New(seed, b.anchor, code, storage)
	if err != nil {
		return nil, felt.Word{}, err
	}
	return acct, seed, nil
}
