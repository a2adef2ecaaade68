package account

import (
	"maps"
	"slices"

	"rollupstate/internal/felt"
	"rollupstate/internal/merkle"
)

// StorageMap is a key-value map held in a single storage slot. Absent keys read as the
// empty word, and writing the empty word removes a key.
type StorageMap struct {
	entries map[felt.Digest]felt.Word
}

// NewStorageMap returns a map holding entries. Empty values are dropped.
func NewStorageMap(entries map[felt.Digest]felt.Word) *StorageMap {
	m := &StorageMap{entries: make(map[felt.Digest]felt.Word, len(entries))}
	for k, v := range entries {
		m.Insert(k, v)
	}
	return m
}

// Get returns the value stored under key.
func (m *StorageMap) Get(key felt.Digest) felt.Word {
	return m.entries[key]
}

// Insert stores value under key and returns the previous value.
func (m *StorageMap) Insert(key felt.Digest, value felt.Word) felt.Word {
	old := m.entries[key]
	if value.IsEmpty() {
		delete(m.entries, key)
	} else {
		m.entries[key] = value
	}
	return old
}

// Len returns the number of non-empty entries.
func (m *StorageMap) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the map contents.
func (m *StorageMap) Entries() map[felt.Digest]felt.Word {
	return maps.Clone(m.entries)
}

// Root commits to the map: leaves are hash(key || value) ordered by key.
func (m *StorageMap) Root() felt.Digest {
	keys := slices.SortedFunc(maps.Keys(m.entries), func(a, b felt.Digest) int {
		return compareWords(a.Word(), b.Word())
	})
	leaves := make([]felt.Digest, len(keys))
	for i, k := range keys {
		leaves[i] = felt.HashWords(k.Word(), m.entries[k])
	}
	return merkle.NewTree(leaves).Root()
}

// Clone returns a deep copy of m.
func (m *StorageMap) Clone() *StorageMap {
	return &StorageMap{entries: maps.Clone(m.entries)}
}
