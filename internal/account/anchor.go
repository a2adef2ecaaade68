package account

import (
	"fmt"

	"rollupstate/internal/felt"
)

// EpochLengthExponent fixes the epoch length at 2^16 blocks.
const EpochLengthExponent = 16

// Anchor binds a new account ID to the first block of an epoch. The epoch is written into
// the ID suffix and the block hash is absorbed into the ID derivation, so an ID cannot be
// reused across a reorganisation of the anchor block.
type Anchor struct {
	epoch     uint16
	blockHash felt.Digest
}

// PreGenesisAnchor is used for accounts created in the genesis block, before any block
// hash exists.
var PreGenesisAnchor = Anchor{}

// NewAnchor returns the anchor for an epoch block. blockNum must be a multiple of the
// epoch length.
func NewAnchor(blockNum uint32, blockHash felt.Digest) (Anchor, error) {
	if blockNum&(1<<EpochLengthExponent-1) != 0 {
		return Anchor{}, fmt.Errorf("%w: block %d", ErrNotEpochBlock, blockNum)
	}
	return Anchor{epoch: uint16(blockNum >> EpochLengthExponent), blockHash: blockHash}, nil
}

// NewAnchorUnchecked builds an anchor from an epoch and hash without any validation.
func NewAnchorUnchecked(epoch uint16, blockHash felt.Digest) Anchor {
	return Anchor{epoch: epoch, blockHash: blockHash}
}

// Epoch returns the anchor epoch.
func (a Anchor) Epoch() uint16 {
	return a.epoch
}

// BlockNum returns the number of the anchor block.
func (a Anchor) BlockNum() uint32 {
	return uint32(a.epoch) << EpochLengthExponent
}

// BlockHash returns the hash of the anchor block.
func (a Anchor) BlockHash() felt.Digest {
	return a.blockHash
}
