package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollupstate/internal/account"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := runCapture(t, args...)
	return stdout, err
}

func runCapture(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// field returns the value printed after "name:" in the command output.
func field(t *testing.T, out, name string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, name+":"); ok {
			return strings.TrimSpace(rest)
		}
	}
	t.Fatalf("field %q not in output:\n%s", name, out)
	return ""
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accountgen.json")

	_, err := run(t, "init-config", "--config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = run(t, "init-config", "--config", path)
	assert.Error(t, err)
}

func TestNewAccount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accountgen.json")
	config := DefaultConfig()
	config.AccountType = account.FungibleFaucet.String()
	config.InitSeed = "0x" + strings.Repeat("07", 32)
	config.Workers = 1
	config.LogLevel = "warn"
	require.NoError(t, SaveConfig(config, path))

	out, err := run(t, "new", "--config", path)
	require.NoError(t, err)

	id, err := account.IDFromHex(field(t, out, "id"))
	require.NoError(t, err)
	assert.Equal(t, account.FungibleFaucet, id.AccountType())
	assert.Equal(t, account.StoragePublic, id.StorageMode())
	assert.Equal(t, "fungible-faucet", field(t, out, "type"))

	header, err := account.UnmarshalHeader(mustDecodeHex(t, field(t, out, "header")))
	require.NoError(t, err)
	assert.Equal(t, id, header.ID)
	assert.Equal(t, field(t, out, "commitment"), header.Commitment().String())

	// Same init seed, same account.
	again, err := run(t, "new", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestNewAccountInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accountgen.json")
	config := DefaultConfig()
	config.Workers = 0
	require.NoError(t, SaveConfig(config, path))

	_, err := run(t, "new", "--config", path)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestNewAccountLogsMetricsOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accountgen.json")
	config := DefaultConfig()
	config.InitSeed = "0x" + strings.Repeat("09", 32)
	config.Workers = 1
	config.LogLevel = "debug"
	config.LogFormat = "json"
	require.NoError(t, SaveConfig(config, path))

	// The proof directory cannot be created beneath a regular file.
	_, logs, err := runCapture(t, "new", "--config", path, "--prove-dir", filepath.Join(path, "proof"))
	require.Error(t, err)
	assert.Contains(t, logs, "run finished")
	assert.Contains(t, logs, "error_count_type_prove_id")
	assert.Contains(t, logs, "accounts_created_type_regular-updatable")
}

func TestInspect(t *testing.T) {
	id := account.DummyID(account.NonFungibleFaucet, account.StoragePrivate, 0xdeadbeef)

	out, err := run(t, "inspect", id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), field(t, out, "id"))
	assert.Equal(t, "non-fungible-faucet", field(t, out, "type"))
	assert.Equal(t, "true", field(t, out, "faucet"))
	assert.Equal(t, "private", field(t, out, "storage mode"))
	assert.Equal(t, "0", field(t, out, "anchor epoch"))
	assert.Equal(t, id.Int().Dec(), field(t, out, "integer"))

	_, err = run(t, "inspect", "0x1234")
	assert.ErrorIs(t, err, account.ErrInvalidIDLength)
}

func TestProveAndVerifyID(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "accountgen.json")
	config := DefaultConfig()
	config.InitSeed = "0x" + strings.Repeat("11", 32)
	config.LogLevel = "warn"
	require.NoError(t, SaveConfig(config, path))

	proofDir := filepath.Join(dir, "proof")
	out, err := run(t, "new", "--config", path, "--prove-dir", proofDir)
	require.NoError(t, err)
	id := field(t, out, "id")

	verified, err := run(t, "verify-id", id,
		"--proof", filepath.Join(proofDir, "id.proof"),
		"--vk", filepath.Join(proofDir, "id.vk"))
	require.NoError(t, err)
	assert.Contains(t, verified, "proof valid")

	other := account.DummyID(account.RegularAccountImmutableCode, account.StoragePublic, 42)
	_, err = run(t, "verify-id", other.Hex(),
		"--proof", filepath.Join(proofDir, "id.proof"),
		"--vk", filepath.Join(proofDir, "id.vk"))
	assert.Error(t, err)
}

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hexutil.Decode(s)
	require.NoError(t, err)
	return b
}
