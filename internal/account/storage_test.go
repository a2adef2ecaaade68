package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollupstate/internal/felt"
)

func TestStorageMap(t *testing.T) {
	m := NewStorageMap(map[felt.Digest]felt.Word{
		{1}: felt.NewWord(1, 0, 0, 0),
		{2}: felt.EmptyWord,
	})
	assert.Equal(t, 1, m.Len())
	assert.True(t, NewStorageMap(nil).Root().IsZero())

	root := m.Root()
	old := m.Insert(felt.Digest{3}, felt.NewWord(3, 0, 0, 0))
	assert.True(t, old.IsEmpty())
	assert.NotEqual(t, root, m.Root())

	old = m.Insert(felt.Digest{3}, felt.EmptyWord)
	assert.Equal(t, felt.NewWord(3, 0, 0, 0), old)
	assert.Equal(t, root, m.Root())
}

func TestAccountStorageSlots(t *testing.T) {
	m := NewStorageMap(map[felt.Digest]felt.Word{{1}: felt.NewWord(1, 1, 1, 1)})
	s, err := NewAccountStorage([]StorageSlot{ValueSlot(felt.NewWord(4, 0, 0, 0)), MapSlot(m)})
	require.NoError(t, err)

	v, err := s.GetItem(1)
	require.NoError(t, err)
	assert.Equal(t, m.Root().Word(), v)

	_, err = s.GetItem(2)
	require.ErrorIs(t, err, ErrSlotIndexOutOfRange)
	_, err = s.SetItem(1, felt.EmptyWord)
	require.ErrorIs(t, err, ErrSlotTypeMismatch)
	_, err = s.GetMapItem(0, felt.Digest{1})
	require.ErrorIs(t, err, ErrSlotTypeMismatch)

	// The storage holds its own copy of the map.
	m.Insert(felt.Digest{2}, felt.NewWord(2, 0, 0, 0))
	got, err := s.GetMapItem(1, felt.Digest{2})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestAccountStorageCommitment(t *testing.T) {
	a, err := NewAccountStorage([]StorageSlot{EmptyValueSlot()})
	require.NoError(t, err)
	b, err := NewAccountStorage([]StorageSlot{EmptyMapSlot()})
	require.NoError(t, err)
	assert.NotEqual(t, a.Commitment(), b.Commitment())

	c := a.Clone()
	_, err = c.SetItem(0, felt.NewWord(1, 0, 0, 0))
	require.NoError(t, err)
	assert.NotEqual(t, a.Commitment(), c.Commitment())
}

func TestAccountStorageSlotLimit(t *testing.T) {
	slots := make([]StorageSlot, MaxStorageSlots+1)
	_, err := NewAccountStorage(slots)
	var tooMany *SlotCountExceededError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, MaxStorageSlots+1, tooMany.Count)
}

func TestStorageDeltaRejectsMixedSlotUpdates(t *testing.T) {
	d := NewStorageDelta()
	require.NoError(t, d.SetItem(0, felt.NewWord(1, 0, 0, 0)))
	require.ErrorIs(t, d.SetMapItem(0, felt.Digest{1}, felt.EmptyWord), ErrDuplicateSlotUpdate)

	require.NoError(t, d.SetMapItem(1, felt.Digest{1}, felt.NewWord(1, 0, 0, 0)))
	require.ErrorIs(t, d.ClearItem(1), ErrDuplicateSlotUpdate)

	assert.Equal(t, map[uint8]felt.Word{0: felt.NewWord(1, 0, 0, 0)}, d.Values())
	assert.Len(t, d.MapUpdates(1), 1)
}

func TestAccountCodeValidation(t *testing.T) {
	_, err := NewAccountCode([]Procedure{{Root: felt.Digest{1}}, {Root: felt.Digest{1}}})
	require.ErrorIs(t, err, ErrDuplicateProcedure)

	_, err = NewAccountCode([]Procedure{{Root: felt.Digest{1}, StorageOffset: 250, StorageSize: 6}})
	require.ErrorIs(t, err, ErrInvalidProcedureRange)

	code, err := NewAccountCode([]Procedure{{Root: felt.Digest{1}}, {Root: felt.Digest{2}, StorageSize: 1}})
	require.NoError(t, err)
	assert.True(t, code.HasProcedure(felt.Digest{2}))
	assert.False(t, code.HasProcedure(felt.Digest{3}))
}
