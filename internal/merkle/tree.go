// tree.go - Fixed binary Merkle trees and authentication paths over digests.

package merkle

import (
	"errors"
	"fmt"
	"math/bits"

	"rollupstate/internal/felt"
)

var ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")

// Path is an authentication path ordered from the leaf's sibling up to the child of the root.
type Path []felt.Digest

// ComputeRoot folds leaf up the path, using the bits of index to pick left or right.
func (p Path) ComputeRoot(index uint64, leaf felt.Digest) felt.Digest {
	node := leaf
	for _, sibling := range p {
		if index&1 == 0 {
			node = felt.Merge(node, sibling)
		} else {
			node = felt.Merge(sibling, node)
		}
		index >>= 1
	}
	return node
}

// Verify reports whether leaf sits at index under root.
func (p Path) Verify(index uint64, leaf, root felt.Digest) bool {
	if len(p) < 64 && index>>uint(len(p)) != 0 {
		return false
	}
	return p.ComputeRoot(index, leaf) == root
}

// Depth is the number of levels the path spans.
func (p Path) Depth() int {
	return len(p)
}

// Tree is a complete binary Merkle tree. Leaves are padded with zero digests up to the
// next power of two.
type Tree struct {
	// nodes uses heap layout: nodes[1] is the root, leaves start at nodes[width].
	nodes []felt.Digest
	width int
	count int
}

// NewTree builds a tree over leaves. An empty leaf set yields a single zero leaf.
func NewTree(leaves []felt.Digest) *Tree {
	width := 1
	if len(leaves) > 1 {
		width = 1 << bits.Len(uint(len(leaves)-1))
	}
	t := &Tree{
		nodes: make([]felt.Digest, 2*width),
		width: width,
		count: len(leaves),
	}
	copy(t.nodes[width:], leaves)
	for i := width - 1; i >= 1; i-- {
		t.nodes[i] = felt.Merge(t.nodes[2*i], t.nodes[2*i+1])
	}
	return t
}

// Root returns the tree root. A single-leaf tree's root is the leaf itself.
func (t *Tree) Root() felt.Digest {
	return t.nodes[1]
}

// Depth returns the number of levels between a leaf and the root.
func (t *Tree) Depth() int {
	return bits.TrailingZeros(uint(t.width))
}

// Len returns the number of leaves the tree was built from.
func (t *Tree) Len() int {
	return t.count
}

// Leaf returns the leaf at index.
func (t *Tree) Leaf(index int) (felt.Digest, error) {
	if index < 0 || index >= t.width {
		return felt.Digest{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return t.nodes[t.width+index], nil
}

// Open returns the authentication path for the leaf at index.
func (t *Tree) Open(index int) (Path, error) {
	if index < 0 || index >= t.width {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	path := make(Path, 0, t.Depth())
	for pos := t.width + index; pos > 1; pos >>= 1 {
		path = append(path, t.nodes[pos^1])
	}
	return path, nil
}
