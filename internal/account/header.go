// header.go - Account headers and their binary encoding.

package account

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"rollupstate/internal/felt"
)

// Header is an account reduced to its ID, nonce and component commitments.
type Header struct {
	ID                ID
	Nonce             felt.Felt
	VaultRoot         felt.Digest
	StorageCommitment felt.Digest
	CodeCommitment    felt.Digest
}

// Commitment equals the commitment of the account the header was taken from.
func (h Header) Commitment() felt.Digest {
	return commitment(h.ID, h.Nonce, h.VaultRoot, h.StorageCommitment, h.CodeCommitment)
}

type headerRecord struct {
	ID                []byte `cramberry:"1"`
	Nonce             uint64 `cramberry:"2"`
	VaultRoot         []byte `cramberry:"3"`
	StorageCommitment []byte `cramberry:"4"`
	CodeCommitment    []byte `cramberry:"5"`
}

// MarshalBinary encodes h with cramberry. Digests are written as four little-endian
// limbs and the ID in its 15-byte form.
func (h Header) MarshalBinary() ([]byte, error) {
	id := h.ID.Bytes()
	vault, storage, code := h.VaultRoot.Bytes(), h.StorageCommitment.Bytes(), h.CodeCommitment.Bytes()
	data, err := cramberry.Marshal(&headerRecord{
		ID:                id[:],
		Nonce:             h.Nonce.Uint64(),
		VaultRoot:         vault[:],
		StorageCommitment: storage[:],
		CodeCommitment:    code[:],
	})
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal account header: %w", err)
	}
	return data, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (h *Header) UnmarshalBinary(data []byte) error {
	var rec headerRecord
	if err := cramberry.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("cramberry unmarshal account header: %w", err)
	}
	id, err := IDFromSlice(rec.ID)
	if err != nil {
		return err
	}
	nonce, err := felt.New(rec.Nonce)
	if err != nil {
		return fmt.Errorf("account header nonce: %w", err)
	}
	vault, err := felt.DigestFromBytes(rec.VaultRoot)
	if err != nil {
		return fmt.Errorf("account header vault root: %w", err)
	}
	storage, err := felt.DigestFromBytes(rec.StorageCommitment)
	if err != nil {
		return fmt.Errorf("account header storage commitment: %w", err)
	}
	code, err := felt.DigestFromBytes(rec.CodeCommitment)
	if err != nil {
		return fmt.Errorf("account header code commitment: %w", err)
	}
	*h = Header{ID: id, Nonce: nonce, VaultRoot: vault, StorageCommitment: storage, CodeCommitment: code}
	return nil
}

// UnmarshalHeader decodes a header.
func UnmarshalHeader(data []byte) (Header, error) {
	var h Header
	err := h.UnmarshalBinary(data)
	return h, err
}
