package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rollupstate/internal/account"
	"rollupstate/internal/felt"
	"rollupstate/internal/merkle"
)

// chain is a small in-memory chain used to produce consistent block inputs.
type chain struct {
	t          *testing.T
	mmr        *merkle.Mmr
	headers    []Header
	notes      map[uint32][]OutputNote
	accounts   *merkle.SparseTree
	nullifiers *merkle.SparseTree
}

func newChain(t *testing.T) *chain {
	c := &chain{
		t:          t,
		mmr:        merkle.NewMmr(),
		notes:      make(map[uint32][]OutputNote),
		accounts:   merkle.NewSparseTree(),
		nullifiers: merkle.NewSparseTree(),
	}
	c.seal(nil)
	return c
}

// seal appends a block creating notes. The block's hash is added to the MMR only when
// the next block is sealed, matching the chain root convention.
func (c *chain) seal(notes []OutputNote) Header {
	num := uint32(len(c.headers))
	if num > 0 {
		c.mmr.Add(c.headers[num-1].Hash())
	}
	h := Header{
		BlockNum:      num,
		ChainRoot:     c.mmr.Peaks().Hash(),
		AccountRoot:   c.accounts.Root(),
		NullifierRoot: c.nullifiers.Root(),
		NoteRoot:      NoteRoot(notes),
		Timestamp:     1000 + num,
	}
	if num > 0 {
		h.PrevHash = c.headers[num-1].Hash()
	}
	c.headers = append(c.headers, h)
	c.notes[num] = notes
	return h
}

func (c *chain) tip() Header {
	return c.headers[len(c.headers)-1]
}

func (c *chain) setAccount(id account.ID, commitment felt.Digest) {
	c.accounts.Insert(AccountTreeKey(id), commitment)
}

func (c *chain) spend(n Nullifier, blockNum uint32) {
	c.nullifiers.Insert(n.Key(), NullifierLeaf(blockNum))
}

func (c *chain) accountWitness(id account.ID) AccountWitness {
	key := AccountTreeKey(id)
	return AccountWitness{ID: id, Commitment: c.accounts.Get(key), Path: c.accounts.Open(key)}
}

func (c *chain) nullifierWitness(n Nullifier) NullifierWitness {
	leaf := c.nullifiers.Get(n.Key())
	return NullifierWitness{Nullifier: n, SpentIn: uint32(leaf[0]), Path: c.nullifiers.Open(n.Key())}
}

func (c *chain) noteProof(blockNum uint32, index uint16) NoteInclusionProof {
	p, err := ProveNote(blockNum, c.notes[blockNum], index)
	require.NoError(c.t, err)
	return p
}

// chainMmr returns the chain view of the tip, tracking the given blocks.
func (c *chain) chainMmr(tracked ...uint32) *ChainMmr {
	var blocks []TrackedBlock
	for _, num := range tracked {
		proof, err := c.mmr.Open(uint64(num))
		require.NoError(c.t, err)
		blocks = append(blocks, TrackedBlock{Header: c.headers[num], Proof: proof})
	}
	view, err := NewChainMmr(c.mmr.Peaks(), blocks...)
	require.NoError(c.t, err)
	return view
}

func digest(v uint64) felt.Digest {
	return felt.Digest{felt.Felt(v), felt.Felt(v + 1), felt.Felt(v + 2), felt.Felt(v + 3)}
}

func nullifier(v uint64) Nullifier { return Nullifier(digest(v)) }
func noteID(v uint64) NoteID       { return NoteID(digest(v)) }
