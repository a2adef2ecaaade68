package idcircuit

import (
	"path/filepath"
	"testing"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"rollupstate/internal/account"
	"rollupstate/internal/felt"
)

func TestValidIDsSatisfyCircuit(t *testing.T) {
	for _, typ := range account.AllAccountTypes {
		for _, mode := range []account.StorageMode{account.StoragePublic, account.StoragePrivate} {
			id := account.DummyID(typ, mode, 0xfedcba98)
			require.NoError(t, test.IsSolved(&Circuit{}, assignment(id), Curve.ScalarField()), "%s %s", typ, mode)
		}
	}

	// Largest valid values in both halves.
	w := &Circuit{Prefix: felt.Modulus - 1, Suffix: uint64(0xfffe_ffff_ffff_ff00)}
	_, err := account.NewIDFromRaw(felt.Modulus-1, 0xfffe_ffff_ffff_ff00)
	require.NoError(t, err)
	require.NoError(t, test.IsSolved(&Circuit{}, w, Curve.ScalarField()))
}

func TestInvalidIDsFailCircuit(t *testing.T) {
	valid := account.DummyID(account.RegularAccountUpdatableCode, account.StoragePublic, 0x12345678)
	prefix, suffix := valid.Prefix().Uint64(), valid.Suffix().Uint64()

	tests := []struct {
		name           string
		prefix, suffix uint64
	}{
		{"prefix equals modulus", felt.Modulus, suffix},
		{"prefix above modulus", 0xffff_ffff_ffff_ff00, suffix},
		{"version 1", prefix | 1, suffix},
		{"storage mode 0b01", prefix | 0b01<<6, suffix},
		{"storage mode 0b11", prefix | 0b11<<6, suffix},
		{"suffix low byte", prefix, suffix | 0x80},
		{"reserved epoch", prefix, suffix | 0xffff<<48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := account.NewIDFromRaw(tt.prefix, tt.suffix)
			require.Error(t, err)
			w := &Circuit{Prefix: tt.prefix, Suffix: tt.suffix}
			require.Error(t, test.IsSolved(&Circuit{}, w, Curve.ScalarField()))
		})
	}
}

func TestProveAndVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup in short mode")
	}
	ccs, err := Compile()
	require.NoError(t, err)
	pk, vk, err := groth16.Setup(ccs)
	require.NoError(t, err)

	id := account.DummyID(account.FungibleFaucet, account.StoragePrivate, 0x0badcafe)
	proof, err := Prove(ccs, pk, id)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.vk")
	require.NoError(t, SaveVerifyingKey(path, vk))
	loaded, err := LoadVerifyingKey(path)
	require.NoError(t, err)
	require.NoError(t, Verify(proof, loaded, id))

	other := account.DummyID(account.FungibleFaucet, account.StoragePrivate, 0x0badcaff)
	require.Error(t, Verify(proof, loaded, other))
}
