// inputs.go - The witnesses a block proposal is checked against.

package block

import (
	"maps"

	"rollupstate/internal/account"
)

// BlockInputs gathers, as of the previous block, everything needed to check and prove
// a new block: the previous header, a partial chain MMR, a witness for every account
// the block's batches update, a witness for every nullifier they create, and an
// inclusion proof for every unauthenticated note they consume.
//
// BlockInputs does not check that the witnesses are complete or consistent; that is
// done by Proposer.Propose.
type BlockInputs struct {
	prevHeader Header
	chain      *ChainMmr
	accounts   map[account.ID]AccountWitness
	nullifiers map[Nullifier]NullifierWitness
	notes      map[NoteID]NoteInclusionProof
}

// NewBlockInputs copies its arguments into a new BlockInputs. A nil chain is an empty
// chain MMR.
func NewBlockInputs(
	prevHeader Header,
	chain *ChainMmr,
	accounts map[account.ID]AccountWitness,
	nullifiers map[Nullifier]NullifierWitness,
	notes map[NoteID]NoteInclusionProof,
) *BlockInputs {
	if chain == nil {
		chain = &ChainMmr{blocks: make(map[uint32]TrackedBlock)}
	}
	b := &BlockInputs{
		prevHeader: prevHeader,
		chain:      chain.Clone(),
		accounts:   maps.Clone(accounts),
		nullifiers: maps.Clone(nullifiers),
		notes:      maps.Clone(notes),
	}
	if b.accounts == nil {
		b.accounts = make(map[account.ID]AccountWitness)
	}
	if b.nullifiers == nil {
		b.nullifiers = make(map[Nullifier]NullifierWitness)
	}
	if b.notes == nil {
		b.notes = make(map[NoteID]NoteInclusionProof)
	}
	return b
}

// PrevBlockHeader returns the header of the block the new block builds on.
func (b *BlockInputs) PrevBlockHeader() Header {
	return b.prevHeader
}

// ChainMmr returns a copy of the partial chain MMR.
func (b *BlockInputs) ChainMmr() *ChainMmr {
	return b.chain.Clone()
}

// AccountWitnesses returns a copy of the account witnesses.
func (b *BlockInputs) AccountWitnesses() map[account.ID]AccountWitness {
	return maps.Clone(b.accounts)
}

// AccountWitness returns the witness for id.
func (b *BlockInputs) AccountWitness(id account.ID) (AccountWitness, bool) {
	w, ok := b.accounts[id]
	return w, ok
}

// NullifierWitnesses returns a copy of the nullifier witnesses.
func (b *BlockInputs) NullifierWitnesses() map[Nullifier]NullifierWitness {
	return maps.Clone(b.nullifiers)
}

// NullifierWitness returns the witness for n.
func (b *BlockInputs) NullifierWitness(n Nullifier) (NullifierWitness, bool) {
	w, ok := b.nullifiers[n]
	return w, ok
}

// NoteInclusionProofs returns a copy of the note inclusion proofs.
func (b *BlockInputs) NoteInclusionProofs() map[NoteID]NoteInclusionProof {
	return maps.Clone(b.notes)
}

// NoteInclusionProof returns the inclusion proof for note id.
func (b *BlockInputs) NoteInclusionProof(id NoteID) (NoteInclusionProof, bool) {
	p, ok := b.notes[id]
	return p, ok
}

// IntoParts hands the contents of b to the caller and leaves b empty.
func (b *BlockInputs) IntoParts() (Header, *ChainMmr, map[account.ID]AccountWitness, map[Nullifier]NullifierWitness, map[NoteID]NoteInclusionProof) {
	prev, chain, accounts, nullifiers, notes := b.prevHeader, b.chain, b.accounts, b.nullifiers, b.notes
	*b = BlockInputs{}
	return prev, chain, accounts, nullifiers, notes
}

// MutableView exposes the live state of b. It exists so tests can construct
// inconsistent inputs; nothing in the block pipeline uses it.
func (b *BlockInputs) MutableView() MutableView {
	return MutableView{b: b}
}

// MutableView gives direct access to the internals of a BlockInputs.
type MutableView struct {
	b *BlockInputs
}

func (v MutableView) PrevBlockHeader() *Header { return &v.b.prevHeader }
func (v MutableView) ChainMmr() *ChainMmr      { return v.b.chain }

// TrackedBlocks returns the chain MMR's live block map. Blocks inserted here skip
// proof verification.
func (v MutableView) TrackedBlocks() map[uint32]TrackedBlock {
	return v.b.chain.blocks
}

func (v MutableView) AccountWitnesses() map[account.ID]AccountWitness {
	return v.b.accounts
}

func (v MutableView) NullifierWitnesses() map[Nullifier]NullifierWitness {
	return v.b.nullifiers
}

func (v MutableView) NoteInclusionProofs() map[NoteID]NoteInclusionProof {
	return v.b.notes
}
