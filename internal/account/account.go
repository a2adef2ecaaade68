// account.go - The account entity and its state commitment.

package account

import (
	"rollupstate/internal/felt"
)

// Account is the full state of an on-chain account. The ID never changes after creation;
// every state change goes through ApplyDelta and increases the nonce.
//
// Account is not safe for concurrent mutation.
type Account struct {
	id      ID
	vault   *AssetVault
	storage *AccountStorage
	code    *AccountCode
	nonce   felt.Felt
}

// New creates a fresh account: the ID is derived from seed, anchor and the code and
// storage commitments; the vault is empty and the nonce is zero.
func New(seed felt.Word, anchor Anchor, code *AccountCode, storage *AccountStorage) (*Account, error) {
	id, err := Derive(seed, anchor, code.Commitment(), storage.Commitment())
	if err != nil {
		return nil, err
	}
	vault, _ := NewAssetVault()
	return &Account{id: id, vault: vault, storage: storage, code: code}, nil
}

// FromParts assembles an account from existing state without validation.
func FromParts(id ID, vault *AssetVault, storage *AccountStorage, code *AccountCode, nonce felt.Felt) *Account {
	return &Account{id: id, vault: vault, storage: storage, code: code, nonce: nonce}
}

func (a *Account) ID() ID                   { return a.id }
func (a *Account) Vault() *AssetVault       { return a.vault }
func (a *Account) Storage() *AccountStorage { return a.storage }
func (a *Account) Code() *AccountCode       { return a.code }
func (a *Account) Nonce() felt.Felt         { return a.nonce }

// IsNew reports whether the account has never been updated.
func (a *Account) IsNew() bool {
	return a.nonce == felt.Zero
}

// Commitment hashes [id prefix, 0, 0, nonce, vault root, storage commitment, code
// commitment].
func (a *Account) Commitment() felt.Digest {
	return commitment(a.id, a.nonce, a.vault.Root(), a.storage.Commitment(), a.code.Commitment())
}

// InitCommitment is the commitment recorded for the account before a transaction. A new
// account has no prior state and reports the zero digest.
func (a *Account) InitCommitment() felt.Digest {
	if a.IsNew() {
		return felt.Digest{}
	}
	return a.Commitment()
}

// Header summarises the account by its commitments.
func (a *Account) Header() Header {
	return Header{
		ID:                a.id,
		Nonce:             a.nonce,
		VaultRoot:         a.vault.Root(),
		StorageCommitment: a.storage.Commitment(),
		CodeCommitment:    a.code.Commitment(),
	}
}

// Clone returns a deep copy of a. Code is immutable and shared.
func (a *Account) Clone() *Account {
	return &Account{
		id:      a.id,
		vault:   a.vault.Clone(),
		storage: a.storage.Clone(),
		code:    a.code,
		nonce:   a.nonce,
	}
}

// ApplyDelta applies d. The vault changes, the storage changes and the nonce are all
// checked, in that order, before the account is modified; on error the account is left
// unchanged. A nil delta is rejected.
func (a *Account) ApplyDelta(d *Delta) error {
	if d == nil {
		return ErrNilDelta
	}
	vault := a.vault
	if !d.vault.IsEmpty() {
		vault = a.vault.Clone()
		if err := vault.apply(d.vault); err != nil {
			return &VaultUpdateError{Err: err}
		}
	}

	storage := a.storage
	if !d.storage.IsEmpty() {
		storage = a.storage.Clone()
		if err := storage.apply(d.storage); err != nil {
			return &StorageUpdateError{Err: err}
		}
	}

	nonce := a.nonce
	if n, ok := d.Nonce(); ok {
		if n.Uint64() <= a.nonce.Uint64() {
			return &NonMonotonicNonceError{Current: a.nonce, New: n}
		}
		nonce = n
	}

	a.vault, a.storage, a.nonce = vault, storage, nonce
	return nil
}

func commitment(id ID, nonce felt.Felt, vaultRoot, storageCommitment, codeCommitment felt.Digest) felt.Digest {
	elems := make([]felt.Felt, 0, 4*felt.WordSize)
	elems = append(elems, id.Prefix(), felt.Zero, felt.Zero, nonce)
	elems = append(elems, vaultRoot[:]...)
	elems = append(elems, storageCommitment[:]...)
	elems = append(elems, codeCommitment[:]...)
	return felt.HashElements(elems)
}
