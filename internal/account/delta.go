package account

import (
	"rollupstate/internal/felt"
)

// Delta is the change a transaction makes to an account: storage and vault updates and,
// whenever anything changes, a new nonce.
type Delta struct {
	storage *StorageDelta
	vault   *VaultDelta
	nonce   *felt.Felt
}

// NewDelta assembles a delta. Nil sub-deltas are treated as empty. A delta that changes
// storage or the vault must carry a nonce.
func NewDelta(storage *StorageDelta, vault *VaultDelta, nonce *felt.Felt) (*Delta, error) {
	if storage == nil {
		storage = NewStorageDelta()
	}
	if vault == nil {
		vault = NewVaultDelta()
	}
	if nonce == nil && (!storage.IsEmpty() || !vault.IsEmpty()) {
		return nil, ErrInconsistentNonceUpdate
	}
	d := &Delta{storage: storage, vault: vault}
	if nonce != nil {
		n := *nonce
		d.nonce = &n
	}
	return d, nil
}

func (d *Delta) Storage() *StorageDelta { return d.storage }
func (d *Delta) Vault() *VaultDelta     { return d.vault }

// Nonce returns the new nonce, if the delta sets one.
func (d *Delta) Nonce() (felt.Felt, bool) {
	if d.nonce == nil {
		return 0, false
	}
	return *d.nonce, true
}

// IsEmpty reports whether applying d would change nothing. A nil delta is empty.
func (d *Delta) IsEmpty() bool {
	return d == nil || (d.storage.IsEmpty() && d.vault.IsEmpty() && d.nonce == nil)
}

// Merge folds a later delta into d. The later nonce replaces the earlier one. On error
// d is left unchanged.
func (d *Delta) Merge(later *Delta) error {
	if later.IsEmpty() {
		return nil
	}
	storage := d.storage.clone()
	if err := storage.Merge(later.storage); err != nil {
		return &StorageUpdateError{Err: err}
	}
	vault := d.vault.clone()
	if err := vault.Merge(later.vault); err != nil {
		return &VaultUpdateError{Err: err}
	}
	d.storage, d.vault = storage, vault
	if n, ok := later.Nonce(); ok {
		d.nonce = &n
	}
	return nil
}
