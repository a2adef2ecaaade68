// id.go - Account identifiers: a pair of field elements with packed metadata.
//
// Layout (bit 0 is least significant):
//
//	prefix: [63..8 random | 7..6 storage mode | 5..4 account type | 3..0 version]
//	suffix: [63..48 anchor epoch | 47..8 random | 7..0 zero]
//
// Both halves must be valid Goldilocks elements (below p = 2^64 - 2^32 + 1). The prefix
// comes straight out of the hasher, so it is canonical by construction; the suffix is
// shaped after hashing, and its validity rests on the reserved anchor epoch below.

package account

import (
	"cmp"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"rollupstate/internal/felt"
)

// IDSize is the length of the compact byte encoding of an ID.
const IDSize = 15

const (
	versionMask uint64 = 0b1111

	typeShift        = 4
	typeMask  uint64 = 0b11 << typeShift

	storageModeShift        = 6
	storageModeMask  uint64 = 0b11 << storageModeShift

	// isFaucetMask selects bit 1 of the type field.
	isFaucetMask uint64 = 0b10 << typeShift

	anchorEpochShift        = 48
	anchorEpochMask  uint64 = 0xffff << anchorEpochShift

	suffixLowByteMask uint64 = 0xff

	// suffixRandomMask keeps bits 8..47 of a hashed suffix; the epoch and the low byte are
	// overwritten when shaping.
	suffixRandomMask uint64 = 0x0000_ffff_ffff_ff00
)

// ReservedAnchorEpoch can never appear in an ID. With the top 16 bits of the suffix not
// all set, the suffix is at most 0xfffe_ffff_ffff_ff00, which is below p for every value
// of the 40 random bits. Allowing 0xffff would let 0xffff_ffff_xxxx_xx00 exceed p.
const ReservedAnchorEpoch uint16 = 0xffff

// ID identifies an account. The zero value is not a meaningful identifier; construct IDs
// with Derive, NewIDFromRaw or one of the decoding functions. IDs are comparable and may
// be used as map keys.
type ID struct {
	prefix felt.Felt
	suffix felt.Felt
}

// Derive computes the ID committed to by seed, the anchor, and the code and storage
// commitments of a new account.
func Derive(seed felt.Word, anchor Anchor, codeCommitment, storageCommitment felt.Digest) (ID, error) {
	digest := seedDigest(seed, codeCommitment, storageCommitment, anchor.BlockHash())

	suffix, err := shapeSuffix(digest[1].Uint64(), anchor.Epoch())
	if err != nil {
		return ID{}, err
	}
	return NewIDFromRaw(digest[0].Uint64(), suffix)
}

// NewIDFromRaw validates and wraps a raw (prefix, suffix) pair.
func NewIDFromRaw(prefix, suffix uint64) (ID, error) {
	if !felt.IsCanonical(prefix) {
		return ID{}, fmt.Errorf("%w: %#016x", ErrInvalidPrefixElement, prefix)
	}
	if !felt.IsCanonical(suffix) {
		return ID{}, fmt.Errorf("%w: %#016x", ErrInvalidSuffixElement, suffix)
	}
	if err := validatePrefix(prefix); err != nil {
		return ID{}, err
	}
	if err := validateSuffix(suffix); err != nil {
		return ID{}, err
	}
	return ID{prefix: felt.Felt(prefix), suffix: felt.Felt(suffix)}, nil
}

// NewID validates a pair of field elements as an ID.
func NewID(prefix, suffix felt.Felt) (ID, error) {
	return NewIDFromRaw(prefix.Uint64(), suffix.Uint64())
}

// IDFromBytes decodes the compact 15-byte form produced by ID.Bytes.
func IDFromBytes(b [IDSize]byte) (ID, error) {
	prefix := binary.BigEndian.Uint64(b[:8])

	var suffixBytes [8]byte
	copy(suffixBytes[:7], b[8:])
	suffix := binary.BigEndian.Uint64(suffixBytes[:])

	return NewIDFromRaw(prefix, suffix)
}

// IDFromSlice is IDFromBytes for a slice whose length has not been checked.
func IDFromSlice(b []byte) (ID, error) {
	if len(b) != IDSize {
		return ID{}, fmt.Errorf("%w: got %d", ErrInvalidIDLength, len(b))
	}
	return IDFromBytes([IDSize]byte(b))
}

// IDFromHex parses the 0x-prefixed hex form produced by ID.Hex.
func IDFromHex(s string) (ID, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return ID{}, fmt.Errorf("account id hex: %w", err)
	}
	return IDFromSlice(b)
}

// IDFromInt decodes the 128-bit integer form produced by ID.Int. Unlike the byte form,
// the integer carries the suffix's low byte, which must be zero.
func IDFromInt(x *uint256.Int) (ID, error) {
	if x[2] != 0 || x[3] != 0 {
		return ID{}, fmt.Errorf("%w: %s", ErrIDIntegerTooWide, x.Hex())
	}
	return NewIDFromRaw(x[1], x[0])
}

// Prefix returns the first field element of the ID.
func (id ID) Prefix() felt.Felt {
	return id.prefix
}

// Suffix returns the second field element of the ID.
func (id ID) Suffix() felt.Felt {
	return id.suffix
}

// Elements returns the ID as [prefix, suffix].
func (id ID) Elements() [2]felt.Felt {
	return [2]felt.Felt{id.prefix, id.suffix}
}

// AccountType returns the type encoded in the prefix.
func (id ID) AccountType() AccountType {
	return AccountType((id.prefix.Uint64() & typeMask) >> typeShift)
}

// IsFaucet reports whether the account can issue assets.
func (id ID) IsFaucet() bool {
	return id.prefix.Uint64()&isFaucetMask != 0
}

// IsRegularAccount reports whether the account is not a faucet.
func (id ID) IsRegularAccount() bool {
	return !id.IsFaucet()
}

// StorageMode returns the storage mode encoded in the prefix.
func (id ID) StorageMode() StorageMode {
	return extractStorageMode(id.prefix.Uint64())
}

// IsPublic reports whether the account's state is stored on chain.
func (id ID) IsPublic() bool {
	return id.StorageMode() == StoragePublic
}

// Version returns the ID layout version.
func (id ID) Version() Version {
	return Version(id.prefix.Uint64() & versionMask)
}

// AnchorEpoch returns the epoch of the block the ID is anchored to.
func (id ID) AnchorEpoch() uint16 {
	return extractAnchorEpoch(id.suffix.Uint64())
}

// Bytes returns the compact form: the 8 big-endian bytes of the prefix followed by the
// 7 high big-endian bytes of the suffix. The suffix's low byte is always zero and is
// dropped.
func (id ID) Bytes() [IDSize]byte {
	var out [IDSize]byte
	binary.BigEndian.PutUint64(out[:8], id.prefix.Uint64())

	var suffix [8]byte
	binary.BigEndian.PutUint64(suffix[:], id.suffix.Uint64())
	copy(out[8:], suffix[:7])
	return out
}

// Int returns the ID as the 128-bit integer prefix<<64 | suffix. Its big-endian bytes,
// minus the final zero byte, equal Bytes, and integer order equals ID order.
func (id ID) Int() *uint256.Int {
	return &uint256.Int{id.suffix.Uint64(), id.prefix.Uint64(), 0, 0}
}

// Hex returns "0x" followed by the 30 hex digits of Bytes.
func (id ID) Hex() string {
	b := id.Bytes()
	return hexutil.Encode(b[:])
}

func (id ID) String() string {
	return id.Hex()
}

// Compare orders IDs by their 128-bit integer form.
func (id ID) Compare(other ID) int {
	if c := cmp.Compare(id.prefix, other.prefix); c != 0 {
		return c
	}
	return cmp.Compare(id.suffix, other.suffix)
}

// Less reports whether id sorts before other.
func (id ID) Less(other ID) bool {
	return id.Compare(other) < 0
}

// MarshalText implements encoding.TextMarshaler using the hex form.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := IDFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// validatePrefix checks that the prefix metadata is known. Every 2-bit type is assigned,
// so only the storage mode and the version can be invalid.
func validatePrefix(prefix uint64) error {
	if mode := extractStorageMode(prefix); !mode.valid() {
		return fmt.Errorf("%w: %#b", ErrUnknownStorageMode, uint8(mode))
	}
	if v := Version(prefix & versionMask); !v.known() {
		return fmt.Errorf("%w: %d", ErrUnknownVersion, uint8(v))
	}
	return nil
}

func validateSuffix(suffix uint64) error {
	if extractAnchorEpoch(suffix) == ReservedAnchorEpoch {
		return ErrAnchorEpochReserved
	}
	if suffix&suffixLowByteMask != 0 {
		return fmt.Errorf("%w: %#016x", ErrSuffixLowByteNonZero, suffix)
	}
	return nil
}

func extractStorageMode(prefix uint64) StorageMode {
	return StorageMode((prefix & storageModeMask) >> storageModeShift)
}

func extractAnchorEpoch(suffix uint64) uint16 {
	return uint16((suffix & anchorEpochMask) >> anchorEpochShift)
}

// shapeSuffix overwrites the epoch bits of a hashed suffix and clears its low byte.
func shapeSuffix(suffix uint64, anchorEpoch uint16) (uint64, error) {
	if anchorEpoch == ReservedAnchorEpoch {
		return 0, ErrAnchorEpochReserved
	}
	suffix &= suffixRandomMask
	suffix |= uint64(anchorEpoch) << anchorEpochShift
	return suffix, nil
}

// seedDigest hashes seed || code || storage || anchor block hash.
func seedDigest(seed felt.Word, codeCommitment, storageCommitment, anchorBlockHash felt.Digest) felt.Digest {
	elems := make([]felt.Felt, 0, 4*felt.WordSize)
	elems = append(elems, seed[:]...)
	elems = append(elems, codeCommitment[:]...)
	elems = append(elems, storageCommitment[:]...)
	elems = append(elems, anchorBlockHash[:]...)
	return felt.HashElements(elems)
}
