package wallet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrGenerateIdentityGeneratesOnFirstUse(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "wallet.dat")

	id, err := LoadOrGenerateIdentity(file)
	require.NoError(t, err)
	assert.NotEmpty(t, id.Address)
	assert.NotEmpty(t, id.PublicKey)
	assert.NotEmpty(t, id.PrivateKey)
}

func TestLoadOrGenerateIdentityIsStableAcrossReloads(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "wallet.dat")

	first, err := LoadOrGenerateIdentity(file)
	require.NoError(t, err)

	second, err := LoadOrGenerateIdentity(file)
	require.NoError(t, err)

	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.PublicKey, second.PublicKey)
	assert.Equal(t, first.PrivateKey, second.PrivateKey)
}

func TestRegistryKnowsItsOwnIdentity(t *testing.T) {
	dir := t.TempDir()
	id, err := LoadOrGenerateIdentity(filepath.Join(dir, "wallet.dat"))
	require.NoError(t, err)

	r := NewRegistry(id)
	entry, ok := r.GetWallet(id.Address)
	require.True(t, ok)
	assert.Equal(t, id.PublicKey, entry.PublicKey)
}

func TestRegistryLearnIsNoOpOnceKnown(t *testing.T) {
	dir := t.TempDir()
	id, err := LoadOrGenerateIdentity(filepath.Join(dir, "wallet.dat"))
	require.NoError(t, err)

	r := NewRegistry(id)
	r.Learn([]byte("other-address"), []byte("pub-a"))
	r.Learn([]byte("other-address"), []byte("pub-b"))

	entry, ok := r.GetWallet([]byte("other-address"))
	require.True(t, ok)
	assert.Equal(t, []byte("pub-a"), entry.PublicKey)
}

func TestRegistryUnknownAddress(t *testing.T) {
	dir := t.TempDir()
	id, err := LoadOrGenerateIdentity(filepath.Join(dir, "wallet.dat"))
	require.NoError(t, err)

	r := NewRegistry(id)
	_, ok := r.GetWallet([]byte("nobody"))
	assert.False(t, ok)
}
