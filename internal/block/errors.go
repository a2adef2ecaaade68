package block

import "errors"

var (
	ErrNoBatches                     = errors.New("block: no batches")
	ErrDuplicateBatch                = errors.New("block: duplicate batch")
	ErrChainMmrMismatch              = errors.New("block: chain mmr does not match previous block header")
	ErrUnknownReferenceBlock         = errors.New("block: batch reference block not in chain")
	ErrMissingAccountWitness         = errors.New("block: missing account witness")
	ErrAccountCommitmentMismatch     = errors.New("block: account witness commitment differs from batch initial state")
	ErrStaleAccountWitness           = errors.New("block: account witness does not match account root")
	ErrMissingNullifierWitness       = errors.New("block: missing nullifier witness")
	ErrNullifierAlreadySpent         = errors.New("block: nullifier already spent")
	ErrStaleNullifierWitness         = errors.New("block: nullifier witness does not match nullifier root")
	ErrDuplicateNullifier            = errors.New("block: nullifier consumed by more than one batch")
	ErrDuplicateOutputNote           = errors.New("block: note created by more than one batch")
	ErrMissingNoteInclusionProof     = errors.New("block: missing inclusion proof for unauthenticated note")
	ErrInvalidNoteInclusionProof     = errors.New("block: note inclusion proof does not match note root")
	ErrInconsistentAccountTransition = errors.New("block: account state transitions do not chain")

	ErrBlockNotInChain  = errors.New("block: block number outside chain mmr")
	ErrDuplicateTracked = errors.New("block: block tracked twice")
)
