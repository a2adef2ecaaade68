// hash.go - The element hasher behind every digest and commitment.
//
// Elements are absorbed as little-endian 64-bit limbs into BLAKE2b-256; the 32-byte
// output is split into four limbs which are reduced into the field.

package felt

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// HashElements hashes a sequence of field elements into a Digest.
func HashElements(elems []Felt) Digest {
	buf := make([]byte, len(elems)*Size)
	for i, e := range elems {
		binary.LittleEndian.PutUint64(buf[i*Size:], uint64(e))
	}
	return digestFromHash(blake2b.Sum256(buf))
}

// HashWords hashes the concatenation of the given words.
func HashWords(words ...Word) Digest {
	elems := make([]Felt, 0, len(words)*WordSize)
	for _, w := range words {
		elems = append(elems, w[:]...)
	}
	return HashElements(elems)
}

// Merge hashes two digests into their parent node.
func Merge(left, right Digest) Digest {
	var elems [2 * WordSize]Felt
	copy(elems[:WordSize], left[:])
	copy(elems[WordSize:], right[:])
	return HashElements(elems[:])
}

func digestFromHash(sum [blake2b.Size256]byte) Digest {
	var d Digest
	for i := range d {
		d[i] = Reduce(binary.LittleEndian.Uint64(sum[i*Size:]))
	}
	return d
}
