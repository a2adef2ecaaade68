// felt.go - Goldilocks field elements used by every commitment in the rollup.
//
// A Felt is an integer representative strictly below the prime p = 2^64 - 2^32 + 1.
// Not every 64-bit pattern is a valid Felt: values in [p, 2^64) are rejected by New
// and folded back into range by Reduce.

package felt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/field/goldilocks"
)

// Modulus is the Goldilocks prime 2^64 - 2^32 + 1.
const Modulus uint64 = 0xffff_ffff_0000_0001

// Size is the number of bytes in the canonical encoding of a Felt.
const Size = 8

// ErrNotCanonical is returned when a 64-bit value is not below Modulus.
var ErrNotCanonical = errors.New("felt: value is not a canonical field element")

// Felt is a canonical Goldilocks field element.
type Felt uint64

const (
	Zero Felt = 0
	One  Felt = 1
)

// modulusBig returns the field modulus as reported by gnark-crypto.
func modulusBig() *big.Int {
	return goldilocks.Modulus()
}

// IsCanonical reports whether v is a valid field element representative.
func IsCanonical(v uint64) bool {
	return v < Modulus
}

// New returns v as a Felt, or ErrNotCanonical if v >= Modulus.
func New(v uint64) (Felt, error) {
	if !IsCanonical(v) {
		return 0, fmt.Errorf("%w: %#x", ErrNotCanonical, v)
	}
	return Felt(v), nil
}

// MustNew is like New but panics on a non-canonical value. Only use it with constants.
func MustNew(v uint64) Felt {
	f, err := New(v)
	if err != nil {
		panic(err)
	}
	return f
}

// Reduce maps any 64-bit value into the field by modular reduction.
func Reduce(v uint64) Felt {
	var e goldilocks.Element
	e.SetUint64(v)
	return fromElement(&e)
}

// FromBigEndian decodes 8 big-endian bytes, rejecting non-canonical values.
func FromBigEndian(b [Size]byte) (Felt, error) {
	return New(binary.BigEndian.Uint64(b[:]))
}

// Uint64 returns the canonical integer representative.
func (f Felt) Uint64() uint64 {
	return uint64(f)
}

// BigEndian returns the 8-byte big-endian encoding of f.
func (f Felt) BigEndian() [Size]byte {
	var b [Size]byte
	binary.BigEndian.PutUint64(b[:], uint64(f))
	return b
}

// Add returns f + g mod p.
func (f Felt) Add(g Felt) Felt {
	a, b := f.element(), g.element()
	a.Add(&a, &b)
	return fromElement(&a)
}

// Sub returns f - g mod p.
func (f Felt) Sub(g Felt) Felt {
	a, b := f.element(), g.element()
	a.Sub(&a, &b)
	return fromElement(&a)
}

// Mul returns f * g mod p.
func (f Felt) Mul(g Felt) Felt {
	a, b := f.element(), g.element()
	a.Mul(&a, &b)
	return fromElement(&a)
}

func (f Felt) String() string {
	return fmt.Sprintf("%d", uint64(f))
}

func (f Felt) element() goldilocks.Element {
	var e goldilocks.Element
	e.SetUint64(uint64(f))
	return e
}

func fromElement(e *goldilocks.Element) Felt {
	return Felt(e.Bits()[0])
}
