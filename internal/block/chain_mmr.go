// chain_mmr.go - A partial view of the chain MMR: its peaks plus a few authenticated
// block headers.

package block

import (
	"fmt"
	"maps"
	"slices"

	"rollupstate/internal/merkle"
)

// TrackedBlock is a block header with its proof of membership in the chain MMR.
type TrackedBlock struct {
	Header Header
	Proof  merkle.Proof
}

// ChainMmr holds the peaks of the chain MMR and the headers of the blocks a block
// proposal needs to reference.
type ChainMmr struct {
	peaks  merkle.Peaks
	blocks map[uint32]TrackedBlock
}

// NewChainMmr verifies every tracked block against peaks.
func NewChainMmr(peaks merkle.Peaks, tracked ...TrackedBlock) (*ChainMmr, error) {
	if err := peaks.Validate(); err != nil {
		return nil, err
	}
	c := &ChainMmr{
		peaks:  merkle.Peaks{Forest: peaks.Forest, Digests: slices.Clone(peaks.Digests)},
		blocks: make(map[uint32]TrackedBlock, len(tracked)),
	}
	for _, tb := range tracked {
		if err := c.Track(tb); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Track adds a block after checking its proof.
func (c *ChainMmr) Track(tb TrackedBlock) error {
	num := tb.Header.BlockNum
	if _, ok := c.blocks[num]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateTracked, num)
	}
	if err := c.Verify(tb.Header, tb.Proof); err != nil {
		return err
	}
	c.blocks[num] = tb
	return nil
}

// Verify checks that header is the block at its number in the chain.
func (c *ChainMmr) Verify(header Header, proof merkle.Proof) error {
	if uint64(header.BlockNum) >= c.peaks.Forest {
		return fmt.Errorf("%w: block %d, chain length %d", ErrBlockNotInChain, header.BlockNum, c.peaks.Forest)
	}
	if proof.Position != uint64(header.BlockNum) {
		return fmt.Errorf("%w: proof for position %d given for block %d", ErrBlockNotInChain, proof.Position, header.BlockNum)
	}
	if err := c.peaks.Verify(proof, header.Hash()); err != nil {
		return fmt.Errorf("block %d: %w", header.BlockNum, err)
	}
	return nil
}

// Peaks returns a copy of the MMR peaks.
func (c *ChainMmr) Peaks() merkle.Peaks {
	return merkle.Peaks{Forest: c.peaks.Forest, Digests: slices.Clone(c.peaks.Digests)}
}

// ChainLength is the number of blocks the MMR commits to.
func (c *ChainMmr) ChainLength() uint32 {
	return uint32(c.peaks.Forest)
}

// ContainsBlock reports whether the header of block num is tracked.
func (c *ChainMmr) ContainsBlock(num uint32) bool {
	_, ok := c.blocks[num]
	return ok
}

// Header returns the tracked header of block num.
func (c *ChainMmr) Header(num uint32) (Header, bool) {
	tb, ok := c.blocks[num]
	return tb.Header, ok
}

// TrackedBlocks returns the tracked blocks in block order.
func (c *ChainMmr) TrackedBlocks() []TrackedBlock {
	out := make([]TrackedBlock, 0, len(c.blocks))
	for _, num := range slices.Sorted(maps.Keys(c.blocks)) {
		out = append(out, c.blocks[num])
	}
	return out
}

// Clone returns a copy of c that shares no maps with it.
func (c *ChainMmr) Clone() *ChainMmr {
	return &ChainMmr{peaks: c.Peaks(), blocks: maps.Clone(c.blocks)}
}
