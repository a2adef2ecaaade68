package felt

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// WordSize is the number of field elements in a Word or Digest.
const WordSize = 4

// DigestSize is the byte length of an encoded Digest.
const DigestSize = WordSize * Size

var ErrDigestLength = errors.New("felt: digest must be 32 bytes")

// Word is four field elements, the unit of account storage.
type Word [WordSize]Felt

// Digest is the output of the element hasher.
type Digest [WordSize]Felt

// EmptyWord is the all-zero word.
var EmptyWord Word

// IsEmpty reports whether every element of w is zero.
func (w Word) IsEmpty() bool {
	return w == EmptyWord
}

// Elements returns the elements of w as a slice.
func (w Word) Elements() []Felt {
	return w[:]
}

// IsZero reports whether d is the all-zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Elements returns the elements of d as a slice.
func (d Digest) Elements() []Felt {
	return d[:]
}

// Word reinterprets d as a storage word.
func (d Digest) Word() Word {
	return Word(d)
}

// Bytes encodes d as four little-endian 64-bit limbs.
func (d Digest) Bytes() [DigestSize]byte {
	var out [DigestSize]byte
	for i, e := range d {
		binary.LittleEndian.PutUint64(out[i*Size:], uint64(e))
	}
	return out
}

// Hex returns the 0x-prefixed hex form of Bytes.
func (d Digest) Hex() string {
	b := d.Bytes()
	return hexutil.Encode(b[:])
}

func (d Digest) String() string {
	return d.Hex()
}

// DigestFromBytes decodes the encoding produced by Digest.Bytes.
func DigestFromBytes(b []byte) (Digest, error) {
	if len(b) != DigestSize {
		return Digest{}, fmt.Errorf("%w: got %d", ErrDigestLength, len(b))
	}
	var d Digest
	for i := range d {
		e, err := New(binary.LittleEndian.Uint64(b[i*Size:]))
		if err != nil {
			return Digest{}, fmt.Errorf("digest element %d: %w", i, err)
		}
		d[i] = e
	}
	return d, nil
}

// DigestFromHex parses a 0x-prefixed hex digest.
func DigestFromHex(s string) (Digest, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Digest{}, fmt.Errorf("digest hex: %w", err)
	}
	return DigestFromBytes(b)
}

// NewWord builds a word from raw integers, reducing each into the field.
func NewWord(a, b, c, d uint64) Word {
	return Word{Reduce(a), Reduce(b), Reduce(c), Reduce(d)}
}
