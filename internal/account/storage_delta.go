package account

import (
	"fmt"
	"maps"
	"slices"

	"rollupstate/internal/felt"
)

// StorageDelta records new slot values and map entry updates. Clearing a value slot or a
// map entry is recorded as the empty word.
type StorageDelta struct {
	values map[uint8]felt.Word
	maps   map[uint8]map[felt.Digest]felt.Word
}

// NewStorageDelta returns an empty storage delta.
func NewStorageDelta() *StorageDelta {
	return &StorageDelta{
		values: make(map[uint8]felt.Word),
		maps:   make(map[uint8]map[felt.Digest]felt.Word),
	}
}

// SetItem records a new value for value slot index.
func (d *StorageDelta) SetItem(index uint8, value felt.Word) error {
	if _, ok := d.maps[index]; ok {
		return fmt.Errorf("%w: slot %d", ErrDuplicateSlotUpdate, index)
	}
	d.values[index] = value
	return nil
}

// ClearItem records that value slot index is reset to the empty word.
func (d *StorageDelta) ClearItem(index uint8) error {
	return d.SetItem(index, felt.EmptyWord)
}

// SetMapItem records a new value for key in map slot index.
func (d *StorageDelta) SetMapItem(index uint8, key felt.Digest, value felt.Word) error {
	if _, ok := d.values[index]; ok {
		return fmt.Errorf("%w: slot %d", ErrDuplicateSlotUpdate, index)
	}
	m, ok := d.maps[index]
	if !ok {
		m = make(map[felt.Digest]felt.Word)
		d.maps[index] = m
	}
	m[key] = value
	return nil
}

// IsEmpty reports whether the delta changes nothing. A nil delta is empty.
func (d *StorageDelta) IsEmpty() bool {
	return d == nil || (len(d.values) == 0 && len(d.maps) == 0)
}

// Values returns a copy of the value slot updates.
func (d *StorageDelta) Values() map[uint8]felt.Word {
	return maps.Clone(d.values)
}

// MapUpdates returns a copy of the updates for map slot index.
func (d *StorageDelta) MapUpdates(index uint8) map[felt.Digest]felt.Word {
	return maps.Clone(d.maps[index])
}

// Merge folds other into d; later writes win. On error d may hold part of other's
// updates.
func (d *StorageDelta) Merge(other *StorageDelta) error {
	if other.IsEmpty() {
		return nil
	}
	for _, index := range other.valueSlots() {
		if err := d.SetItem(index, other.values[index]); err != nil {
			return err
		}
	}
	for _, index := range other.mapSlots() {
		for key, value := range other.maps[index] {
			if err := d.SetMapItem(index, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *StorageDelta) valueSlots() []uint8 {
	return slices.Sorted(maps.Keys(d.values))
}

func (d *StorageDelta) mapSlots() []uint8 {
	return slices.Sorted(maps.Keys(d.maps))
}

func (d *StorageDelta) clone() *StorageDelta {
	out := NewStorageDelta()
	if d == nil {
		return out
	}
	out.values = maps.Clone(d.values)
	for index, m := range d.maps {
		out.maps[index] = maps.Clone(m)
	}
	return out
}
