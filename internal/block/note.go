package block

import (
	"rollupstate/internal/account"
	"rollupstate/internal/felt"
	"rollupstate/internal/merkle"
)

// NoteID identifies a note by the hash of its contents.
type NoteID felt.Digest

func (id NoteID) String() string { return felt.Digest(id).Hex() }

// Nullifier marks a note as consumed.
type Nullifier felt.Digest

func (n Nullifier) String() string { return felt.Digest(n).Hex() }

// Key returns the nullifier's position in the nullifier tree: its most significant
// element.
func (n Nullifier) Key() uint64 {
	return n[3].Uint64()
}

// OutputNote is a note created by a batch.
type OutputNote struct {
	ID     NoteID
	Sender account.ID
}

// InputNote is a note consumed by a batch. An unauthenticated note was not proven to
// exist when the batch was built; the block must either prove its inclusion in an
// earlier block or find it among the block's own output notes.
type InputNote struct {
	Nullifier       Nullifier
	ID              NoteID
	Unauthenticated bool
}

// NoteInclusionProof shows that a note was created in a past block.
type NoteInclusionProof struct {
	BlockNum  uint32
	NoteIndex uint16
	Path      merkle.Path
}

// Verify checks the proof against the note root of the block it names.
func (p NoteInclusionProof) Verify(id NoteID, noteRoot felt.Digest) bool {
	return p.Path.Verify(uint64(p.NoteIndex), felt.Digest(id), noteRoot)
}

// NoteRoot commits to the notes a block creates, in order.
func NoteRoot(notes []OutputNote) felt.Digest {
	return noteTree(notes).Root()
}

func noteTree(notes []OutputNote) *merkle.Tree {
	leaves := make([]felt.Digest, len(notes))
	for i, n := range notes {
		leaves[i] = felt.Digest(n.ID)
	}
	return merkle.NewTree(leaves)
}

// ProveNote opens the inclusion proof for the note at index among the notes created by
// block blockNum.
func ProveNote(blockNum uint32, notes []OutputNote, index uint16) (NoteInclusionProof, error) {
	path, err := noteTree(notes).Open(int(index))
	if err != nil {
		return NoteInclusionProof{}, err
	}
	return NoteInclusionProof{BlockNum: blockNum, NoteIndex: index, Path: path}, nil
}
