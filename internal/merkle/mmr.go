// mmr.go - Merkle mountain range over an append-only sequence of digests.
//
// The chain uses an MMR over block hashes as its historical authentication state: leaf i
// is the hash of block i, and the forest (leaf count) of the MMR held by block n is n.

package merkle

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"

	"rollupstate/internal/felt"
)

var (
	ErrPositionOutOfRange = errors.New("merkle: mmr position out of range")
	ErrForestMismatch     = errors.New("merkle: mmr proof forest does not match peaks")
	ErrInvalidProof       = errors.New("merkle: proof does not match root")
	ErrInvalidPeaks       = errors.New("merkle: peak count does not match forest")
)

// Mmr is an append-only Merkle mountain range. Each set bit h of the forest corresponds
// to one perfect subtree of 2^h leaves, largest first.
type Mmr struct {
	leaves []felt.Digest
}

// NewMmr returns an empty MMR.
func NewMmr() *Mmr {
	return &Mmr{}
}

// Add appends a leaf.
func (m *Mmr) Add(leaf felt.Digest) {
	m.leaves = append(m.leaves, leaf)
}

// Forest returns the number of leaves.
func (m *Mmr) Forest() uint64 {
	return uint64(len(m.leaves))
}

// Peaks returns the current peaks.
func (m *Mmr) Peaks() Peaks {
	forest := m.Forest()
	peaks := make([]felt.Digest, 0, bits.OnesCount64(forest))
	var start uint64
	for h := 63; h >= 0; h-- {
		size := uint64(1) << uint(h)
		if forest&size == 0 {
			continue
		}
		peaks = append(peaks, NewTree(m.leaves[start:start+size]).Root())
		start += size
	}
	return Peaks{Forest: forest, Digests: peaks}
}

// Open returns a membership proof for the leaf at pos.
func (m *Mmr) Open(pos uint64) (Proof, error) {
	forest := m.Forest()
	start, size, _, ok := locate(forest, pos)
	if !ok {
		return Proof{}, fmt.Errorf("%w: %d of %d", ErrPositionOutOfRange, pos, forest)
	}
	path, err := NewTree(m.leaves[start : start+size]).Open(int(pos - start))
	if err != nil {
		return Proof{}, err
	}
	return Proof{Forest: forest, Position: pos, Path: path}, nil
}

// Proof authenticates one leaf against the peaks of a given forest.
type Proof struct {
	Forest   uint64
	Position uint64
	Path     Path
}

// Peaks is the commitment to an MMR: its forest plus one root per perfect subtree.
type Peaks struct {
	Forest  uint64
	Digests []felt.Digest
}

// Hash commits to the forest and all peaks in one digest.
func (p Peaks) Hash() felt.Digest {
	elems := make([]felt.Felt, 0, 1+len(p.Digests)*felt.WordSize)
	elems = append(elems, felt.Reduce(p.Forest))
	for _, d := range p.Digests {
		elems = append(elems, d[:]...)
	}
	return felt.HashElements(elems)
}

// Validate checks that there is one peak per set bit of the forest.
func (p Peaks) Validate() error {
	if want := bits.OnesCount64(p.Forest); len(p.Digests) != want {
		return fmt.Errorf("%w: %d peaks for forest %d, want %d", ErrInvalidPeaks, len(p.Digests), p.Forest, want)
	}
	return nil
}

// Add returns the peaks after appending leaf. Equal-height peaks are merged, oldest on
// the left.
func (p Peaks) Add(leaf felt.Digest) (Peaks, error) {
	if err := p.Validate(); err != nil {
		return Peaks{}, err
	}
	digests := slices.Clone(p.Digests)
	node := leaf
	for h := 0; p.Forest&(1<<uint(h)) != 0; h++ {
		last := digests[len(digests)-1]
		digests = digests[:len(digests)-1]
		node = felt.Merge(last, node)
	}
	return Peaks{Forest: p.Forest + 1, Digests: append(digests, node)}, nil
}

// Verify checks proof for leaf against p.
func (p Peaks) Verify(proof Proof, leaf felt.Digest) error {
	if proof.Forest != p.Forest {
		return fmt.Errorf("%w: proof %d, peaks %d", ErrForestMismatch, proof.Forest, p.Forest)
	}
	start, size, peak, ok := locate(p.Forest, proof.Position)
	if !ok || peak >= len(p.Digests) {
		return fmt.Errorf("%w: %d of %d", ErrPositionOutOfRange, proof.Position, p.Forest)
	}
	if proof.Path.Depth() != bits.TrailingZeros64(size) {
		return fmt.Errorf("merkle: mmr path depth %d, want %d", proof.Path.Depth(), bits.TrailingZeros64(size))
	}
	if !proof.Path.Verify(proof.Position-start, leaf, p.Digests[peak]) {
		return fmt.Errorf("%w: mmr position %d", ErrInvalidProof, proof.Position)
	}
	return nil
}

// locate finds the subtree holding pos: its first leaf, its size, and its peak index.
func locate(forest, pos uint64) (start, size uint64, peak int, ok bool) {
	if pos >= forest {
		return 0, 0, 0, false
	}
	for h := 63; h >= 0; h-- {
		size = uint64(1) << uint(h)
		if forest&size == 0 {
			continue
		}
		if pos < start+size {
			return start, size, peak, true
		}
		start += size
		peak++
	}
	return 0, 0, 0, false
}
