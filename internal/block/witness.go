package block

import (
	"rollupstate/internal/account"
	"rollupstate/internal/felt"
	"rollupstate/internal/merkle"
)

// AccountTreeKey is the account tree position of id: its prefix.
func AccountTreeKey(id account.ID) uint64 {
	return id.Prefix().Uint64()
}

// AccountWitness proves the current commitment of an account in the account tree. An
// account absent from the tree has the zero commitment.
type AccountWitness struct {
	ID         account.ID
	Commitment felt.Digest
	Path       merkle.Path
}

// Verify checks the witness against an account tree root.
func (w AccountWitness) Verify(root felt.Digest) bool {
	return w.Path.Depth() == merkle.SparseDepth && w.Path.Verify(AccountTreeKey(w.ID), w.Commitment, root)
}

// NullifierWitness proves whether a nullifier is in the nullifier tree and, if so, the
// block that spent it.
//
// Block numbers double as the spent marker: the genesis block consumes no notes, and
// every proposed block has a number of at least 1, so block 0 never records a spend.
type NullifierWitness struct {
	Nullifier Nullifier
	// SpentIn is the block the nullifier was created in, or zero if unspent.
	SpentIn uint32
	Path    merkle.Path
}

// IsSpent reports whether the witness shows the nullifier as already spent.
func (w NullifierWitness) IsSpent() bool {
	return w.SpentIn != 0
}

// NullifierLeaf is the nullifier tree value recording a spend in block blockNum.
// NullifierLeaf(0) is the empty leaf of an unspent nullifier.
func NullifierLeaf(blockNum uint32) felt.Digest {
	return felt.Digest{felt.Felt(blockNum)}
}

// Verify checks the witness against a nullifier tree root.
func (w NullifierWitness) Verify(root felt.Digest) bool {
	var leaf felt.Digest
	if w.IsSpent() {
		leaf = NullifierLeaf(w.SpentIn)
	}
	return w.Path.Depth() == merkle.SparseDepth && w.Path.Verify(w.Nullifier.Key(), leaf, root)
}
