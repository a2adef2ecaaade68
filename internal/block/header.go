// header.go - Block headers.

package block

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"rollupstate/internal/account"
	"rollupstate/internal/felt"
)

// Header commits to the state of the chain after a block.
//
// ChainRoot commits to the chain MMR holding the hashes of every block before this one,
// so its forest equals BlockNum.
type Header struct {
	Version       uint32
	PrevHash      felt.Digest
	BlockNum      uint32
	ChainRoot     felt.Digest
	AccountRoot   felt.Digest
	NullifierRoot felt.Digest
	NoteRoot      felt.Digest
	TxHash        felt.Digest
	KernelRoot    felt.Digest
	ProofHash     felt.Digest
	Timestamp     uint32
}

// Hash commits to every header field.
func (h Header) Hash() felt.Digest {
	elems := make([]felt.Felt, 0, 8*felt.WordSize+4)
	elems = append(elems, h.PrevHash[:]...)
	elems = append(elems, h.ChainRoot[:]...)
	elems = append(elems, h.AccountRoot[:]...)
	elems = append(elems, h.NullifierRoot[:]...)
	elems = append(elems, h.NoteRoot[:]...)
	elems = append(elems, h.TxHash[:]...)
	elems = append(elems, h.KernelRoot[:]...)
	elems = append(elems, h.ProofHash[:]...)
	elems = append(elems, felt.Felt(h.Version), felt.Felt(h.BlockNum), felt.Felt(h.Timestamp), felt.Zero)
	return felt.HashElements(elems)
}

// EpochOf returns the epoch a block number falls in.
func EpochOf(blockNum uint32) uint16 {
	return uint16(blockNum >> account.EpochLengthExponent)
}

// Epoch returns the epoch of the block.
func (h Header) Epoch() uint16 {
	return EpochOf(h.BlockNum)
}

// Anchor returns the account ID anchor for this block. Only the first block of an
// epoch can anchor accounts.
func (h Header) Anchor() (account.Anchor, error) {
	return account.NewAnchor(h.BlockNum, h.Hash())
}

type headerRecord struct {
	Version       uint32 `cramberry:"1"`
	PrevHash      []byte `cramberry:"2"`
	BlockNum      uint32 `cramberry:"3"`
	ChainRoot     []byte `cramberry:"4"`
	AccountRoot   []byte `cramberry:"5"`
	NullifierRoot []byte `cramberry:"6"`
	NoteRoot      []byte `cramberry:"7"`
	TxHash        []byte `cramberry:"8"`
	KernelRoot    []byte `cramberry:"9"`
	ProofHash     []byte `cramberry:"10"`
	Timestamp     uint32 `cramberry:"11"`
}

func digestBytes(d felt.Digest) []byte {
	b := d.Bytes()
	return b[:]
}

// MarshalBinary encodes h with cramberry.
func (h Header) MarshalBinary() ([]byte, error) {
	data, err := cramberry.Marshal(&headerRecord{
		Version:       h.Version,
		PrevHash:      digestBytes(h.PrevHash),
		BlockNum:      h.BlockNum,
		ChainRoot:     digestBytes(h.ChainRoot),
		AccountRoot:   digestBytes(h.AccountRoot),
		NullifierRoot: digestBytes(h.NullifierRoot),
		NoteRoot:      digestBytes(h.NoteRoot),
		TxHash:        digestBytes(h.TxHash),
		KernelRoot:    digestBytes(h.KernelRoot),
		ProofHash:     digestBytes(h.ProofHash),
		Timestamp:     h.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal block header: %w", err)
	}
	return data, nil
}

// UnmarshalHeader decodes data produced by Header.MarshalBinary.
func UnmarshalHeader(data []byte) (Header, error) {
	var rec headerRecord
	if err := cramberry.Unmarshal(data, &rec); err != nil {
		return Header{}, fmt.Errorf("cramberry unmarshal block header: %w", err)
	}
	h := Header{Version: rec.Version, BlockNum: rec.BlockNum, Timestamp: rec.Timestamp}
	fields := []struct {
		name string
		src  []byte
		dst  *felt.Digest
	}{
		{"prev hash", rec.PrevHash, &h.PrevHash},
		{"chain root", rec.ChainRoot, &h.ChainRoot},
		{"account root", rec.AccountRoot, &h.AccountRoot},
		{"nullifier root", rec.NullifierRoot, &h.NullifierRoot},
		{"note root", rec.NoteRoot, &h.NoteRoot},
		{"tx hash", rec.TxHash, &h.TxHash},
		{"kernel root", rec.KernelRoot, &h.KernelRoot},
		{"proof hash", rec.ProofHash, &h.ProofHash},
	}
	for _, f := range fields {
		d, err := felt.DigestFromBytes(f.src)
		if err != nil {
			return Header{}, fmt.Errorf("block header %s: %w", f.name, err)
		}
		*f.dst = d
	}
	return h, nil
}
