// storage.go - Account storage: an indexed list of value and map slots.

package account

import (
	"fmt"

	"rollupstate/internal/felt"
)

// MaxStorageSlots is the largest number of slots an account may have.
const MaxStorageSlots = 255

// SlotType distinguishes value slots from map slots.
type SlotType uint8

const (
	SlotValue SlotType = iota
	SlotMap
)

func (t SlotType) String() string {
	if t == SlotMap {
		return "map"
	}
	return "value"
}

// StorageSlot is either a single word or a StorageMap.
type StorageSlot struct {
	typ   SlotType
	value felt.Word
	m     *StorageMap
}

// ValueSlot returns a value slot holding w.
func ValueSlot(w felt.Word) StorageSlot {
	return StorageSlot{typ: SlotValue, value: w}
}

// MapSlot returns a map slot backed by m.
func MapSlot(m *StorageMap) StorageSlot {
	if m == nil {
		m = NewStorageMap(nil)
	}
	return StorageSlot{typ: SlotMap, m: m}
}

func EmptyValueSlot() StorageSlot { return ValueSlot(felt.EmptyWord) }
func EmptyMapSlot() StorageSlot   { return MapSlot(nil) }

func (s StorageSlot) Type() SlotType {
	return s.typ
}

// Value returns the word committed for the slot: the value itself, or the map root.
func (s StorageSlot) Value() felt.Word {
	if s.typ == SlotMap {
		return s.m.Root().Word()
	}
	return s.value
}

// Map returns the slot's map, or nil for a value slot.
func (s StorageSlot) Map() *StorageMap {
	return s.m
}

func (s StorageSlot) clone() StorageSlot {
	if s.m != nil {
		s.m = s.m.Clone()
	}
	return s
}

// AccountStorage is the ordered list of an account's storage slots.
type AccountStorage struct {
	slots []StorageSlot
}

// NewAccountStorage returns storage over slots.
func NewAccountStorage(slots []StorageSlot) (*AccountStorage, error) {
	if len(slots) > MaxStorageSlots {
		return nil, &SlotCountExceededError{Count: len(slots)}
	}
	s := &AccountStorage{slots: make([]StorageSlot, len(slots))}
	for i, slot := range slots {
		s.slots[i] = slot.clone()
	}
	return s, nil
}

// Len returns the number of slots.
func (s *AccountStorage) Len() int {
	return len(s.slots)
}

// Slots returns a copy of the slots.
func (s *AccountStorage) Slots() []StorageSlot {
	out := make([]StorageSlot, len(s.slots))
	for i, slot := range s.slots {
		out[i] = slot.clone()
	}
	return out
}

// Commitment hashes, for each slot in order, [value(4), type, 0, 0, 0].
func (s *AccountStorage) Commitment() felt.Digest {
	elems := make([]felt.Felt, 0, len(s.slots)*2*felt.WordSize)
	for _, slot := range s.slots {
		v := slot.Value()
		elems = append(elems, v[:]...)
		elems = append(elems, felt.Felt(slot.typ), felt.Zero, felt.Zero, felt.Zero)
	}
	return felt.HashElements(elems)
}

// GetItem returns the committed word of slot index.
func (s *AccountStorage) GetItem(index uint8) (felt.Word, error) {
	slot, err := s.slot(index)
	if err != nil {
		return felt.Word{}, err
	}
	return slot.Value(), nil
}

// GetMapItem reads key from the map in slot index.
func (s *AccountStorage) GetMapItem(index uint8, key felt.Digest) (felt.Word, error) {
	slot, err := s.typedSlot(index, SlotMap)
	if err != nil {
		return felt.Word{}, err
	}
	return slot.m.Get(key), nil
}

// SetItem overwrites the value slot index and returns the previous value.
func (s *AccountStorage) SetItem(index uint8, value felt.Word) (felt.Word, error) {
	slot, err := s.typedSlot(index, SlotValue)
	if err != nil {
		return felt.Word{}, err
	}
	old := slot.value
	s.slots[index].value = value
	return old, nil
}

// SetMapItem writes key in the map slot index and returns the previous value.
func (s *AccountStorage) SetMapItem(index uint8, key felt.Digest, value felt.Word) (felt.Word, error) {
	slot, err := s.typedSlot(index, SlotMap)
	if err != nil {
		return felt.Word{}, err
	}
	return slot.m.Insert(key, value), nil
}

// Clone returns a deep copy of s.
func (s *AccountStorage) Clone() *AccountStorage {
	return &AccountStorage{slots: s.Slots()}
}

func (s *AccountStorage) slot(index uint8) (StorageSlot, error) {
	if int(index) >= len(s.slots) {
		return StorageSlot{}, fmt.Errorf("%w: slot %d of %d", ErrSlotIndexOutOfRange, index, len(s.slots))
	}
	return s.slots[index], nil
}

func (s *AccountStorage) typedSlot(index uint8, want SlotType) (StorageSlot, error) {
	slot, err := s.slot(index)
	if err != nil {
		return StorageSlot{}, err
	}
	if slot.typ != want {
		return StorageSlot{}, fmt.Errorf("%w: slot %d is a %s slot", ErrSlotTypeMismatch, index, slot.typ)
	}
	return slot, nil
}

// apply executes d against s. On error s may be partially updated; callers apply to a
// clone.
func (s *AccountStorage) apply(d *StorageDelta) error {
	for _, index := range d.valueSlots() {
		if _, err := s.SetItem(index, d.values[index]); err != nil {
			return err
		}
	}
	for _, index := range d.mapSlots() {
		for key, value := range d.maps[index] {
			if _, err := s.SetMapItem(index, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}
