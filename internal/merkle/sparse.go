package merkle

import (
	"rollupstate/internal/felt"
)

// SparseDepth is the depth of a SparseTree; keys are full 64-bit integers.
const SparseDepth = 64

// emptyRoots[d] is the root of an empty subtree whose root sits at depth d.
var emptyRoots = func() [SparseDepth + 1]felt.Digest {
	var roots [SparseDepth + 1]felt.Digest
	for d := SparseDepth - 1; d >= 0; d-- {
		roots[d] = felt.Merge(roots[d+1], roots[d+1])
	}
	return roots
}()

// EmptySparseRoot returns the root of a SparseTree with no leaves.
func EmptySparseRoot() felt.Digest {
	return emptyRoots[0]
}

type nodeKey struct {
	depth uint8
	index uint64
}

// SparseTree is a depth-64 Merkle tree in which absent leaves are zero digests. Only
// nodes that differ from the empty subtree root at their depth are stored.
//
// A SparseTree is not safe for concurrent mutation.
type SparseTree struct {
	leaves map[uint64]felt.Digest
	nodes  map[nodeKey]felt.Digest
}

// NewSparseTree returns an empty tree.
func NewSparseTree() *SparseTree {
	return &SparseTree{
		leaves: make(map[uint64]felt.Digest),
		nodes:  make(map[nodeKey]felt.Digest),
	}
}

// Len returns the number of non-empty leaves.
func (t *SparseTree) Len() int {
	return len(t.leaves)
}

// Get returns the leaf stored under key, or the zero digest.
func (t *SparseTree) Get(key uint64) felt.Digest {
	return t.leaves[key]
}

// Insert stores value under key and returns the previous leaf. Inserting the zero
// digest removes the leaf.
func (t *SparseTree) Insert(key uint64, value felt.Digest) felt.Digest {
	old := t.leaves[key]
	if value.IsZero() {
		delete(t.leaves, key)
	} else {
		t.leaves[key] = value
	}

	for d := SparseDepth - 1; d >= 0; d-- {
		idx := indexAt(key, d)
		node := felt.Merge(t.node(d+1, 2*idx), t.node(d+1, 2*idx+1))
		k := nodeKey{depth: uint8(d), index: idx}
		if node == emptyRoots[d] {
			delete(t.nodes, k)
		} else {
			t.nodes[k] = node
		}
	}
	return old
}

// Root returns the current root.
func (t *SparseTree) Root() felt.Digest {
	return t.node(0, 0)
}

// Open returns the 64-element authentication path for key, whether or not it is set.
func (t *SparseTree) Open(key uint64) Path {
	path := make(Path, 0, SparseDepth)
	for d := SparseDepth; d >= 1; d-- {
		path = append(path, t.node(d, indexAt(key, d)^1))
	}
	return path
}

func (t *SparseTree) node(depth int, index uint64) felt.Digest {
	if depth == SparseDepth {
		return t.leaves[index]
	}
	if n, ok := t.nodes[nodeKey{depth: uint8(depth), index: index}]; ok {
		return n
	}
	return emptyRoots[depth]
}

// indexAt returns the index of key's ancestor at the given depth.
func indexAt(key uint64, depth int) uint64 {
	return key >> uint(SparseDepth-depth)
}
