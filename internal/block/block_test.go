package block

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollupstate/internal/account"
	"rollupstate/internal/felt"
	"rollupstate/internal/merkle"
)

var (
	alice = account.DummyID(account.RegularAccountUpdatableCode, account.StoragePublic, 0x0a0a0a0a)
	bob   = account.DummyID(account.RegularAccountImmutableCode, account.StoragePrivate, 0x0b0b0b0b)
)

// scenario is a chain of three blocks: block 1 creates two notes, alice and bob exist,
// and nullifier 900 was spent in block 2. Block inputs are built on top of block 3.
type scenario struct {
	chain   *chain
	batches []*ProvenBatch
	inputs  *BlockInputs
}

func newScenario(t *testing.T) *scenario {
	c := newChain(t)
	c.seal([]OutputNote{{ID: noteID(100), Sender: alice}, {ID: noteID(200), Sender: bob}})
	c.setAccount(alice, digest(10))
	c.setAccount(bob, digest(20))
	c.spend(nullifier(900), 2)
	c.seal(nil)
	c.seal(nil)
	tip := c.tip()

	b1 := NewProvenBatch(tip,
		[]AccountUpdate{{AccountID: alice, InitialCommitment: digest(10), FinalCommitment: digest(11)}},
		[]InputNote{
			{Nullifier: nullifier(1), ID: noteID(100), Unauthenticated: true},
			{Nullifier: nullifier(2), ID: noteID(101)},
		},
		[]OutputNote{{ID: noteID(300), Sender: alice}},
	)
	ref, ok := c.chainMmr(1).Header(1)
	require.True(t, ok)
	b2 := NewProvenBatch(ref,
		[]AccountUpdate{
			{AccountID: alice, InitialCommitment: digest(11), FinalCommitment: digest(12)},
			{AccountID: bob, InitialCommitment: digest(20), FinalCommitment: digest(21)},
		},
		[]InputNote{{Nullifier: nullifier(3), ID: noteID(300), Unauthenticated: true}},
		[]OutputNote{{ID: noteID(400), Sender: bob}},
	)

	inputs := NewBlockInputs(tip, c.chainMmr(1),
		map[account.ID]AccountWitness{alice: c.accountWitness(alice), bob: c.accountWitness(bob)},
		map[Nullifier]NullifierWitness{
			nullifier(1): c.nullifierWitness(nullifier(1)),
			nullifier(2): c.nullifierWitness(nullifier(2)),
		},
		map[NoteID]NoteInclusionProof{noteID(100): c.noteProof(1, 0)},
	)
	return &scenario{chain: c, batches: []*ProvenBatch{b1, b2}, inputs: inputs}
}

func TestProposeValidBlock(t *testing.T) {
	s := newScenario(t)
	var logs bytes.Buffer
	p := NewProposer(WithLogger(zerolog.New(&logs).Level(zerolog.DebugLevel)))

	block, err := p.Propose(s.batches, s.inputs)
	require.NoError(t, err)

	assert.Equal(t, s.chain.tip().BlockNum+1, block.BlockNum)
	assert.Equal(t, []BatchID{s.batches[0].ID, s.batches[1].ID}, block.Batches)

	want := []AccountUpdate{
		{AccountID: alice, InitialCommitment: digest(10), FinalCommitment: digest(12)},
		{AccountID: bob, InitialCommitment: digest(20), FinalCommitment: digest(21)},
	}
	if bob.Less(alice) {
		want[0], want[1] = want[1], want[0]
	}
	assert.Equal(t, want, block.AccountUpdates)

	assert.ElementsMatch(t, []Nullifier{nullifier(1), nullifier(2)}, block.Nullifiers)
	assert.Equal(t, []NoteID{noteID(300)}, block.ErasedNotes)
	assert.Equal(t, []OutputNote{{ID: noteID(400), Sender: bob}}, block.OutputNotes)
	assert.Equal(t, NoteRoot(block.OutputNotes), block.NoteRoot)

	s.chain.seal(nil)
	assert.Equal(t, s.chain.tip().ChainRoot, block.ChainRoot)
	assert.Contains(t, logs.String(), "proposed block")
}

func TestProposeRejectsInconsistentInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, s *scenario)
		want   error
	}{
		{"no batches", func(t *testing.T, s *scenario) { s.batches = nil }, ErrNoBatches},
		{"duplicate batch", func(t *testing.T, s *scenario) {
			s.batches = append(s.batches, s.batches[0])
		}, ErrDuplicateBatch},
		{"missing nullifier witness", func(t *testing.T, s *scenario) {
			delete(s.inputs.MutableView().NullifierWitnesses(), nullifier(2))
		}, ErrMissingNullifierWitness},
		{"spent nullifier", func(t *testing.T, s *scenario) {
			s.batches[0].InputNotes[1].Nullifier = nullifier(900)
			s.inputs.MutableView().NullifierWitnesses()[nullifier(900)] = s.chain.nullifierWitness(nullifier(900))
		}, ErrNullifierAlreadySpent},
		{"stale nullifier witness", func(t *testing.T, s *scenario) {
			w := s.inputs.MutableView().NullifierWitnesses()
			stale := w[nullifier(2)]
			stale.Path = s.chain.nullifierWitness(nullifier(1)).Path
			stale.Path[0] = digest(77)
			w[nullifier(2)] = stale
		}, ErrStaleNullifierWitness},
		{"duplicate nullifier", func(t *testing.T, s *scenario) {
			s.batches[1].InputNotes = append(s.batches[1].InputNotes, InputNote{Nullifier: nullifier(2)})
		}, ErrDuplicateNullifier},
		{"missing account witness", func(t *testing.T, s *scenario) {
			delete(s.inputs.MutableView().AccountWitnesses(), bob)
		}, ErrMissingAccountWitness},
		{"account commitment mismatch", func(t *testing.T, s *scenario) {
			s.batches[0].AccountUpdates[0].InitialCommitment = digest(99)
		}, ErrAccountCommitmentMismatch},
		{"stale account witness", func(t *testing.T, s *scenario) {
			w := s.inputs.MutableView().AccountWitnesses()
			stale := w[alice]
			stale.Path[5] = digest(55)
			w[alice] = stale
		}, ErrStaleAccountWitness},
		{"broken transition chain", func(t *testing.T, s *scenario) {
			s.batches[1].AccountUpdates[0].InitialCommitment = digest(50)
		}, ErrInconsistentAccountTransition},
		{"missing note inclusion proof", func(t *testing.T, s *scenario) {
			delete(s.inputs.MutableView().NoteInclusionProofs(), noteID(100))
		}, ErrMissingNoteInclusionProof},
		{"invalid note inclusion proof", func(t *testing.T, s *scenario) {
			s.inputs.MutableView().NoteInclusionProofs()[noteID(100)] = s.chain.noteProof(1, 1)
		}, ErrInvalidNoteInclusionProof},
		{"unknown reference block", func(t *testing.T, s *scenario) {
			delete(s.inputs.MutableView().TrackedBlocks(), 1)
		}, ErrUnknownReferenceBlock},
		{"duplicate output note", func(t *testing.T, s *scenario) {
			s.batches[1].OutputNotes = append(s.batches[1].OutputNotes, OutputNote{ID: noteID(300)})
		}, ErrDuplicateOutputNote},
		{"chain mmr mismatch", func(t *testing.T, s *scenario) {
			s.inputs.MutableView().PrevBlockHeader().ChainRoot = digest(1)
		}, ErrChainMmrMismatch},
		{"chain mmr missing peaks", func(t *testing.T, s *scenario) {
			cm := s.inputs.MutableView().ChainMmr()
			cm.peaks = merkle.Peaks{Forest: cm.peaks.Forest}
			s.inputs.MutableView().PrevBlockHeader().ChainRoot = cm.peaks.Hash()
		}, merkle.ErrInvalidPeaks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScenario(t)
			tt.mutate(t, s)
			_, err := NewProposer().Propose(s.batches, s.inputs)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBlockInputsAccessorsReturnCopies(t *testing.T) {
	s := newScenario(t)

	accounts := s.inputs.AccountWitnesses()
	delete(accounts, alice)
	_, ok := s.inputs.AccountWitness(alice)
	assert.True(t, ok)

	nullifiers := s.inputs.NullifierWitnesses()
	delete(nullifiers, nullifier(1))
	_, ok = s.inputs.NullifierWitness(nullifier(1))
	assert.True(t, ok)

	notes := s.inputs.NoteInclusionProofs()
	delete(notes, noteID(100))
	_, ok = s.inputs.NoteInclusionProof(noteID(100))
	assert.True(t, ok)

	view := s.inputs.ChainMmr()
	require.NoError(t, view.Track(TrackedBlock{Header: s.chain.headers[2], Proof: mustOpen(t, s.chain, 2)}))
	assert.False(t, s.inputs.ChainMmr().ContainsBlock(2))

	prev, parts, acc, nul, nts := s.inputs.IntoParts()
	assert.Equal(t, s.chain.tip(), prev)
	assert.True(t, parts.ContainsBlock(1))
	assert.Len(t, acc, 2)
	assert.Len(t, nul, 2)
	assert.Len(t, nts, 1)
}

func TestAccountWitnessForNewAccount(t *testing.T) {
	c := newChain(t)
	carol := account.DummyID(account.FungibleFaucet, account.StoragePublic, 0x0c0c0c0c)
	w := c.accountWitness(carol)
	assert.True(t, w.Commitment.IsZero())
	assert.True(t, w.Verify(c.accounts.Root()))

	c.setAccount(carol, digest(5))
	assert.False(t, w.Verify(c.accounts.Root()))
	assert.True(t, c.accountWitness(carol).Verify(c.accounts.Root()))
}

func TestHeaderEncodingRoundTrip(t *testing.T) {
	s := newScenario(t)
	h := s.chain.tip()
	h.TxHash, h.KernelRoot, h.ProofHash, h.Version = digest(1), digest(2), digest(3), 1

	data, err := h.MarshalBinary()
	require.NoError(t, err)
	decoded, err := UnmarshalHeader(data)
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
	assert.Equal(t, h.Hash(), decoded.Hash())
}

func TestHeaderAnchor(t *testing.T) {
	h := Header{BlockNum: 2 << account.EpochLengthExponent}
	anchor, err := h.Anchor()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), anchor.Epoch())
	assert.Equal(t, h.Hash(), anchor.BlockHash())
	assert.Equal(t, uint16(2), h.Epoch())

	h.BlockNum++
	_, err = h.Anchor()
	require.ErrorIs(t, err, account.ErrNotEpochBlock)
	assert.Equal(t, uint16(2), EpochOf(h.BlockNum))
}

func TestChainMmrRejectsBadProofs(t *testing.T) {
	c := newChain(t)
	c.seal(nil)
	c.seal(nil)

	proof := mustOpen(t, c, 0)
	_, err := NewChainMmr(c.mmr.Peaks(), TrackedBlock{Header: c.headers[1], Proof: proof})
	require.ErrorIs(t, err, ErrBlockNotInChain)

	forged := c.headers[0]
	forged.Timestamp++
	_, err = NewChainMmr(c.mmr.Peaks(), TrackedBlock{Header: forged, Proof: proof})
	require.Error(t, err)

	_, err = NewChainMmr(c.mmr.Peaks(), TrackedBlock{Header: c.headers[2], Proof: proof})
	require.ErrorIs(t, err, ErrBlockNotInChain)

	view, err := NewChainMmr(c.mmr.Peaks(), TrackedBlock{Header: c.headers[0], Proof: proof})
	require.NoError(t, err)
	require.ErrorIs(t, view.Track(TrackedBlock{Header: c.headers[0], Proof: proof}), ErrDuplicateTracked)
	assert.Equal(t, uint32(2), view.ChainLength())

	_, err = NewChainMmr(merkle.Peaks{Forest: 1})
	require.ErrorIs(t, err, merkle.ErrInvalidPeaks)
}

func mustOpen(t *testing.T, c *chain, num uint64) merkle.Proof {
	t.Helper()
	p, err := c.mmr.Open(num)
	require.NoError(t, err)
	return p
}

func TestNullifierWitnessSpentMarker(t *testing.T) {
	c := newChain(t)
	assert.Equal(t, felt.Digest{}, NullifierLeaf(0))

	unspent := c.nullifierWitness(nullifier(5))
	assert.False(t, unspent.IsSpent())
	assert.True(t, unspent.Verify(c.nullifiers.Root()))

	c.spend(nullifier(5), 1)
	spent := c.nullifierWitness(nullifier(5))
	assert.True(t, spent.IsSpent())
	assert.Equal(t, uint32(1), spent.SpentIn)
	assert.True(t, spent.Verify(c.nullifiers.Root()))

	// A witness hiding the spend does not verify.
	spent.SpentIn = 0
	assert.False(t, spent.Verify(c.nullifiers.Root()))
}
