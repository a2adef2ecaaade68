package felt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulusMatchesGoldilocks(t *testing.T) {
	require.True(t, modulusBig().IsUint64())
	assert.Equal(t, Modulus, modulusBig().Uint64())
}

func TestNewRejectsNonCanonical(t *testing.T) {
	_, err := New(Modulus)
	require.ErrorIs(t, err, ErrNotCanonical)
	_, err = New(math.MaxUint64)
	require.ErrorIs(t, err, ErrNotCanonical)

	f, err := New(Modulus - 1)
	require.NoError(t, err)
	assert.Equal(t, Modulus-1, f.Uint64())
}

func TestReduce(t *testing.T) {
	assert.Equal(t, Zero, Reduce(Modulus))
	assert.Equal(t, One, Reduce(Modulus+1))
	assert.Equal(t, Felt(42), Reduce(42))
	assert.Equal(t, Felt(math.MaxUint64-Modulus), Reduce(math.MaxUint64))
}

func TestArithmetic(t *testing.T) {
	a := MustNew(Modulus - 1)
	assert.Equal(t, Zero, a.Add(One))
	assert.Equal(t, a, Zero.Sub(One))
	assert.Equal(t, One, a.Mul(a))
}

func TestBigEndianRoundTrip(t *testing.T) {
	f := MustNew(0x0102_0304_0506_0708)
	got, err := FromBigEndian(f.BigEndian())
	require.NoError(t, err)
	assert.Equal(t, f, got)

	_, err = FromBigEndian([Size]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	require.ErrorIs(t, err, ErrNotCanonical)
}

func TestDigestHex(t *testing.T) {
	d := HashElements([]Felt{1, 2, 3})
	got, err := DigestFromHex(d.Hex())
	require.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = DigestFromHex("0x0102")
	require.ErrorIs(t, err, ErrDigestLength)
}

func TestHashElements(t *testing.T) {
	a := HashElements([]Felt{1, 2, 3, 4})
	b := HashElements([]Felt{1, 2, 3, 4})
	c := HashElements([]Felt{1, 2, 3, 5})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for _, e := range a {
		assert.True(t, IsCanonical(e.Uint64()))
	}

	left, right := HashElements([]Felt{1}), HashElements([]Felt{2})
	assert.Equal(t, HashWords(left.Word(), right.Word()), Merge(left, right))
	assert.NotEqual(t, Merge(left, right), Merge(right, left))
}
