// proposer.go - Checking a set of proven batches against block inputs and assembling
// the proposed block.

package block

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/rs/zerolog"

	"rollupstate/internal/account"
	"rollupstate/internal/felt"
)

// ProposedBlock is a block whose batches have been checked against the block inputs
// but which has not been proven yet.
type ProposedBlock struct {
	BlockNum   uint32
	PrevHeader Header
	Batches    []BatchID

	// AccountUpdates holds one merged transition per account, ordered by account ID.
	AccountUpdates []AccountUpdate
	// Nullifiers are the nullifiers the block creates, in digest order.
	Nullifiers []Nullifier
	// OutputNotes are the notes the block creates, minus notes consumed in the same
	// block, in batch order.
	OutputNotes []OutputNote
	// ErasedNotes were created and consumed within the block.
	ErasedNotes []NoteID

	// ChainRoot commits to the chain MMR after adding the previous block.
	ChainRoot felt.Digest
	NoteRoot  felt.Digest
}

// Proposer validates batches against block inputs.
type Proposer struct {
	log zerolog.Logger
}

// ProposerOption configures a Proposer.
type ProposerOption func(*Proposer)

// WithLogger sets the proposer's logger. The default discards everything.
func WithLogger(log zerolog.Logger) ProposerOption {
	return func(p *Proposer) {
		p.log = log
	}
}

// NewProposer returns a Proposer.
func NewProposer(opts ...ProposerOption) *Proposer {
	p := &Proposer{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Propose checks that inputs hold exactly the witnesses batches need and returns the
// resulting block.
//
// Every account updated by a batch needs a witness whose commitment equals the first
// batch's initial commitment for that account. Every nullifier created needs a witness
// showing it unspent. Every unauthenticated input note must either be an output note of
// the same block, in which case both are erased, or have an inclusion proof against a
// block the inputs know.
func (p *Proposer) Propose(batches []*ProvenBatch, inputs *BlockInputs) (*ProposedBlock, error) {
	if len(batches) == 0 {
		return nil, ErrNoBatches
	}
	prev := inputs.prevHeader
	log := p.log.With().Uint32("block", prev.BlockNum+1).Int("batches", len(batches)).Logger()

	if err := checkChain(inputs); err != nil {
		return nil, err
	}

	ids := make([]BatchID, len(batches))
	seen := make(map[BatchID]struct{}, len(batches))
	for i, b := range batches {
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBatch, b.ID)
		}
		seen[b.ID] = struct{}{}
		ids[i] = b.ID
		if err := checkReference(b, inputs); err != nil {
			return nil, err
		}
	}

	outputs, erased, nullifiers, err := p.trackNotes(batches, inputs)
	if err != nil {
		return nil, err
	}
	if err := checkNullifiers(nullifiers, inputs); err != nil {
		return nil, err
	}
	updates, err := mergeAccountUpdates(batches, inputs)
	if err != nil {
		return nil, err
	}

	prevHash := prev.Hash()
	chainPeaks, err := inputs.chain.peaks.Add(prevHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainMmrMismatch, err)
	}
	block := &ProposedBlock{
		BlockNum:       prev.BlockNum + 1,
		PrevHeader:     prev,
		Batches:        ids,
		AccountUpdates: updates,
		Nullifiers:     nullifiers,
		OutputNotes:    outputs,
		ErasedNotes:    erased,
		ChainRoot:      chainPeaks.Hash(),
		NoteRoot:       NoteRoot(outputs),
	}
	log.Debug().
		Int("accounts", len(updates)).
		Int("nullifiers", len(nullifiers)).
		Int("output_notes", len(outputs)).
		Int("erased_notes", len(erased)).
		Msg("proposed block")
	return block, nil
}

// checkChain ties the chain MMR to the previous header: it must commit to every block
// before the previous one.
func checkChain(inputs *BlockInputs) error {
	prev, peaks := inputs.prevHeader, inputs.chain.peaks
	if err := peaks.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrChainMmrMismatch, err)
	}
	if peaks.Forest != uint64(prev.BlockNum) {
		return fmt.Errorf("%w: chain length %d, previous block %d", ErrChainMmrMismatch, peaks.Forest, prev.BlockNum)
	}
	if peaks.Hash() != prev.ChainRoot {
		return fmt.Errorf("%w: peaks hash %s, header chain root %s", ErrChainMmrMismatch, peaks.Hash(), prev.ChainRoot)
	}
	return nil
}

func checkReference(b *ProvenBatch, inputs *BlockInputs) error {
	ref, ok := referenceHeader(b.ReferenceBlock, inputs)
	if !ok || ref.Hash() != b.ReferenceBlockHash {
		return fmt.Errorf("%w: batch %s references block %d", ErrUnknownReferenceBlock, b.ID, b.ReferenceBlock)
	}
	return nil
}

// referenceHeader finds the header of block num among the previous block and the
// tracked chain blocks.
func referenceHeader(num uint32, inputs *BlockInputs) (Header, bool) {
	if num == inputs.prevHeader.BlockNum {
		return inputs.prevHeader, true
	}
	return inputs.chain.Header(num)
}

// trackNotes collects output notes, erases the ones consumed in the same block, checks
// inclusion proofs for the remaining unauthenticated input notes, and returns the
// nullifiers the block creates.
func (p *Proposer) trackNotes(batches []*ProvenBatch, inputs *BlockInputs) ([]OutputNote, []NoteID, []Nullifier, error) {
	created := make(map[NoteID]int)
	for i, b := range batches {
		for _, n := range b.OutputNotes {
			if _, dup := created[n.ID]; dup {
				return nil, nil, nil, fmt.Errorf("%w: %s", ErrDuplicateOutputNote, n.ID)
			}
			created[n.ID] = i
		}
	}

	erasedSet := make(map[NoteID]struct{})
	var erased []NoteID
	consumed := make(map[Nullifier]int)
	spent := make(map[Nullifier]struct{})
	for i, b := range batches {
		for _, n := range b.InputNotes {
			if first, dup := consumed[n.Nullifier]; dup {
				return nil, nil, nil, fmt.Errorf("%w: %s in batches %d and %d", ErrDuplicateNullifier, n.Nullifier, first, i)
			}
			consumed[n.Nullifier] = i
			if !n.Unauthenticated {
				spent[n.Nullifier] = struct{}{}
				continue
			}
			if _, ok := created[n.ID]; ok {
				p.log.Trace().Stringer("note", n.ID).Msg("erasing note created and consumed in block")
				erasedSet[n.ID] = struct{}{}
				erased = append(erased, n.ID)
				continue
			}
			if err := checkInclusion(n.ID, inputs); err != nil {
				return nil, nil, nil, err
			}
			spent[n.Nullifier] = struct{}{}
		}
	}

	var outputs []OutputNote
	for _, b := range batches {
		for _, n := range b.OutputNotes {
			if _, ok := erasedSet[n.ID]; !ok {
				outputs = append(outputs, n)
			}
		}
	}
	nullifiers := slices.SortedFunc(maps.Keys(spent), func(a, b Nullifier) int {
		return compareDigests(felt.Digest(a), felt.Digest(b))
	})
	return outputs, erased, nullifiers, nil
}

func checkInclusion(id NoteID, inputs *BlockInputs) error {
	proof, ok := inputs.notes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingNoteInclusionProof, id)
	}
	header, ok := referenceHeader(proof.BlockNum, inputs)
	if !ok {
		return fmt.Errorf("%w: note %s proven against unknown block %d", ErrUnknownReferenceBlock, id, proof.BlockNum)
	}
	if !proof.Verify(id, header.NoteRoot) {
		return fmt.Errorf("%w: note %s in block %d", ErrInvalidNoteInclusionProof, id, proof.BlockNum)
	}
	return nil
}

func checkNullifiers(nullifiers []Nullifier, inputs *BlockInputs) error {
	root := inputs.prevHeader.NullifierRoot
	for _, n := range nullifiers {
		w, ok := inputs.nullifiers[n]
		if !ok || w.Nullifier != n {
			return fmt.Errorf("%w: %s", ErrMissingNullifierWitness, n)
		}
		if w.IsSpent() {
			return fmt.Errorf("%w: %s in block %d", ErrNullifierAlreadySpent, n, w.SpentIn)
		}
		if !w.Verify(root) {
			return fmt.Errorf("%w: %s", ErrStaleNullifierWitness, n)
		}
	}
	return nil
}

// mergeAccountUpdates folds the per-batch updates of each account into one transition,
// in batch order, and checks the result against the account witnesses.
func mergeAccountUpdates(batches []*ProvenBatch, inputs *BlockInputs) ([]AccountUpdate, error) {
	merged := make(map[account.ID]AccountUpdate)
	for _, b := range batches {
		for _, u := range b.AccountUpdates {
			cur, ok := merged[u.AccountID]
			if !ok {
				merged[u.AccountID] = u
				continue
			}
			if cur.FinalCommitment != u.InitialCommitment {
				return nil, fmt.Errorf("%w: account %s: batch %s starts from %s, previous state %s",
					ErrInconsistentAccountTransition, u.AccountID, b.ID, u.InitialCommitment, cur.FinalCommitment)
			}
			cur.FinalCommitment = u.FinalCommitment
			merged[u.AccountID] = cur
		}
	}

	root := inputs.prevHeader.AccountRoot
	ids := slices.SortedFunc(maps.Keys(merged), account.ID.Compare)
	updates := make([]AccountUpdate, 0, len(ids))
	for _, id := range ids {
		u := merged[id]
		w, ok := inputs.accounts[id]
		if !ok || w.ID != id {
			return nil, fmt.Errorf("%w: %s", ErrMissingAccountWitness, id)
		}
		if w.Commitment != u.InitialCommitment {
			return nil, fmt.Errorf("%w: account %s: witness %s, batch %s", ErrAccountCommitmentMismatch, id, w.Commitment, u.InitialCommitment)
		}
		if !w.Verify(root) {
			return nil, fmt.Errorf("%w: %s", ErrStaleAccountWitness, id)
		}
		updates = append(updates, u)
	}
	return updates, nil
}

func compareDigests(a, b felt.Digest) int {
	for i := range a {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}
