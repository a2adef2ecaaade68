package block

import (
	"rollupstate/internal/account"
	"rollupstate/internal/felt"
)

// BatchID identifies a proven batch.
type BatchID felt.Digest

func (id BatchID) String() string { return felt.Digest(id).Hex() }

// AccountUpdate is the net state transition a batch makes to one account.
type AccountUpdate struct {
	AccountID         account.ID
	InitialCommitment felt.Digest
	FinalCommitment   felt.Digest
}

// ProvenBatch is the output of the batch prover as consumed by block proposal.
type ProvenBatch struct {
	ID                 BatchID
	ReferenceBlock     uint32
	ReferenceBlockHash felt.Digest
	AccountUpdates     []AccountUpdate
	InputNotes         []InputNote
	OutputNotes        []OutputNote
}

// NewProvenBatch assembles a batch referencing ref and derives its ID from the account
// updates and the notes it consumes and creates.
func NewProvenBatch(ref Header, updates []AccountUpdate, inputs []InputNote, outputs []OutputNote) *ProvenBatch {
	elems := make([]felt.Felt, 0, 4*felt.WordSize*(len(updates)+len(inputs)+len(outputs))+felt.WordSize)
	refHash := ref.Hash()
	elems = append(elems, refHash[:]...)
	for _, u := range updates {
		id := u.AccountID.Elements()
		elems = append(elems, id[0], id[1], felt.Zero, felt.Zero)
		elems = append(elems, u.InitialCommitment[:]...)
		elems = append(elems, u.FinalCommitment[:]...)
	}
	for _, n := range inputs {
		elems = append(elems, n.Nullifier[:]...)
	}
	for _, n := range outputs {
		elems = append(elems, n.ID[:]...)
	}
	return &ProvenBatch{
		ID:                 BatchID(felt.HashElements(elems)),
		ReferenceBlock:     ref.BlockNum,
		ReferenceBlockHash: refHash,
		AccountUpdates:     updates,
		InputNotes:         inputs,
		OutputNotes:        outputs,
	}
}
