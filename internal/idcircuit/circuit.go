// circuit.go - In-circuit validation of account IDs.
//
// A transaction proof that creates an account must show that the ID it commits to is a
// valid pair of field elements with well-formed metadata. AssertValidID expresses the
// checks of account.NewIDFromRaw as constraints over a native field large enough to hold
// 64-bit values.

package idcircuit

import (
	"github.com/consensys/gnark/frontend"
)

// Circuit proves that (Prefix, Suffix) is a valid account ID.
type Circuit struct {
	Prefix frontend.Variable `gnark:",public"`
	Suffix frontend.Variable `gnark:",public"`
}

// Define implements frontend.Circuit.
func (c *Circuit) Define(api frontend.API) error {
	AssertValidID(api, c.Prefix, c.Suffix)
	return nil
}

// AssertValidID constrains prefix and suffix to form a valid version 0 account ID:
//
//   - both are 64-bit values below the Goldilocks prime
//   - the prefix version nibble is zero
//   - the prefix storage mode is public (0b00) or private (0b10)
//   - the low byte of the suffix is zero
//   - the suffix anchor epoch is not 0xffff
func AssertValidID(api frontend.API, prefix, suffix frontend.Variable) {
	p := api.ToBinary(prefix, 64)
	s := api.ToBinary(suffix, 64)

	assertGoldilocks(api, p)

	for _, b := range p[0:4] {
		api.AssertIsEqual(b, 0)
	}
	// Storage modes 0b01 and 0b11 are the ones with bit 6 set.
	api.AssertIsEqual(p[6], 0)

	for _, b := range s[0:8] {
		api.AssertIsEqual(b, 0)
	}
	// With the top 16 bits not all set the suffix is below the modulus, so the
	// Goldilocks check is implied.
	api.AssertIsEqual(allSet(api, s[48:64]), 0)
}

// assertGoldilocks checks a 64-bit decomposition is below 2^64 - 2^32 + 1: if the high
// 32 bits are all set, the low 32 bits must be zero.
func assertGoldilocks(api frontend.API, bits []frontend.Variable) {
	hiSet := allSet(api, bits[32:64])
	lo := api.FromBinary(bits[0:32]...)
	api.AssertIsEqual(api.Mul(hiSet, lo), 0)
}

// allSet returns 1 if every bit is 1, else 0.
func allSet(api frontend.API, bits []frontend.Variable) frontend.Variable {
	acc := frontend.Variable(1)
	for _, b := range bits {
		acc = api.Mul(acc, b)
	}
	return acc
}
