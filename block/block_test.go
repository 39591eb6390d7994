package block

import (
	"ixichain/chain"
	"ixichain/ec"

	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWallet struct {
	primaryAddr    []byte
	primaryPub     []byte
	primaryPriv    []byte
	registry       map[string][]byte
}

func newFakeWallet(addr, pub, priv []byte) *fakeWallet {
	return &fakeWallet{
		primaryAddr: addr,
		primaryPub:  pub,
		primaryPriv: priv,
		registry:    map[string][]byte{string(addr): pub},
	}
}

func (w *fakeWallet) GetWallet(address []byte) (WalletEntry, bool) {
	pub, ok := w.registry[string(address)]
	if !ok {
		return WalletEntry{}, false
	}
	return WalletEntry{PublicKey: pub}, true
}

func (w *fakeWallet) PrimaryAddress() []byte    { return w.primaryAddr }
func (w *fakeWallet) PrimaryPublicKey() []byte  { return w.primaryPub }
func (w *fakeWallet) PrimaryPrivateKey() []byte { return w.primaryPriv }

func newTestIdentity(t *testing.T) (*fakeWallet, []byte, []byte) {
	t.Helper()
	priv, pub, err := ec.GenerateKeyPair()
	require.NoError(t, err)
	addr, err := ec.DeriveAddress(pub)
	require.NoError(t, err)
	return newFakeWallet(addr, pub, priv), priv, pub
}

func buildSignedBlock(t *testing.T, version int32) (*Block, CryptoAdapter, *fakeWallet) {
	t.Helper()
	ca := ec.RsaAdapter{}
	wallet, _, _ := newTestIdentity(t)

	b := NewBlock(version, 1)
	b.AddTransaction("tx-a")
	b.AddTransaction("tx-b")
	b.Difficulty = 10
	b.Timestamp = 12345
	b.BlockChecksum = b.CalculateChecksum(ca)

	require.NoError(t, b.ApplySignature(ca, wallet))
	return b, ca, wallet
}

func TestBlockRoundTrip(t *testing.T) {
	b, _, _ := buildSignedBlock(t, 5)

	bz := b.Bytes()
	decoded, err := BlockFromBytes(bz)
	require.NoError(t, err)

	assert.Equal(t, b.Version, decoded.Version)
	assert.Equal(t, b.BlockNum, decoded.BlockNum)
	assert.Equal(t, b.Transactions, decoded.Transactions)
	assert.Equal(t, b.BlockChecksum, decoded.BlockChecksum)
	assert.Equal(t, b.Difficulty, decoded.Difficulty)
	assert.Equal(t, b.Timestamp, decoded.Timestamp)
	assert.Equal(t, b.Signatures.snapshot(), decoded.Signatures.snapshot())
}

func TestAddTransactionIsIdempotent(t *testing.T) {
	b := NewBlock(5, 1)
	b.AddTransaction("tx-a")
	b.AddTransaction("tx-a")
	assert.Equal(t, []string{"tx-a"}, b.Transactions)
}

func TestApplySignatureIsNoOpWhenAlreadySigned(t *testing.T) {
	b, ca, wallet := buildSignedBlock(t, 5)
	before := b.Signatures.len()

	require.NoError(t, b.ApplySignature(ca, wallet))
	assert.Equal(t, before, b.Signatures.len())
}

func TestCalculateChecksumIsDeterministic(t *testing.T) {
	ca := ec.RsaAdapter{}

	b1 := NewBlock(5, 1)
	b1.AddTransaction("tx-a")
	b1.AddTransaction("tx-b")
	b1.Difficulty = 7

	b2 := NewBlock(5, 1)
	b2.AddTransaction("tx-a")
	b2.AddTransaction("tx-b")
	b2.Difficulty = 7

	assert.Equal(t, b1.CalculateChecksum(ca), b2.CalculateChecksum(ca))
}

func TestVersionGateSelectsDifferentHash(t *testing.T) {
	ca := ec.RsaAdapter{}

	low := NewBlock(2, 1)
	low.AddTransaction("tx-a")
	low.Difficulty = 1

	high := NewBlock(3, 1)
	high.AddTransaction("tx-a")
	high.Difficulty = 1

	assert.NotEqual(t, low.CalculateChecksum(ca), high.CalculateChecksum(ca))
	assert.Len(t, low.CalculateChecksum(ca), ec.HQuSize)
	assert.Len(t, high.CalculateChecksum(ca), ec.HSqSize)
}

func TestSizeRejection(t *testing.T) {
	oversize := make([]byte, chain.MaxPayloadSize+1)
	_, err := BlockFromBytes(oversize)
	require.Error(t, err)
	assert.IsType(t, ErrOversize{}, err)
}

func TestEqualityLaw(t *testing.T) {
	b, ca, _ := buildSignedBlock(t, 5)
	clone := b.Clone()

	assert.True(t, b.Equals(clone, ca))

	clone.Signatures.tryAppend(signerEntry{Sig: []byte("x"), Id: bytes.Repeat([]byte{0x09}, 40)})
	assert.False(t, b.Equals(clone, ca))
}

func TestSignatureSetOrderingForChecksum(t *testing.T) {
	ca := ec.RsaAdapter{}
	b := NewBlock(5, 1)
	b.BlockChecksum = []byte("checksum")

	ids := [][]byte{
		bytes.Repeat([]byte{0x02}, 40),
		bytes.Repeat([]byte{0x01}, 40),
		bytes.Repeat([]byte{0x03}, 40),
	}
	for _, id := range ids {
		b.Signatures.tryAppend(signerEntry{Sig: []byte("sig"), Id: id})
	}

	got := b.CalculateSignatureChecksum(ca)

	want := NewBlock(5, 1)
	want.BlockChecksum = []byte("checksum")
	for _, id := range [][]byte{ids[1], ids[0], ids[2]} {
		want.Signatures.tryAppend(signerEntry{Sig: []byte("sig"), Id: id})
	}

	assert.Equal(t, got, want.CalculateSignatureChecksum(ca))
}

func TestAddressVsPubKeyEquivalence(t *testing.T) {
	_, pub, err := ec.GenerateKeyPair()
	require.NoError(t, err)
	addr, err := ec.DeriveAddress(pub)
	require.NoError(t, err)

	b := NewBlock(5, 1)
	b.Signatures.tryAppend(signerEntry{Sig: []byte("sig"), Id: pub})

	assert.True(t, b.Signatures.containsAddress(addr))
}

func TestVerifyAndPurge(t *testing.T) {
	ca := ec.RsaAdapter{}
	wallet, _, pub := newTestIdentity(t)

	b := NewBlock(5, 1)
	b.BlockChecksum = []byte("the block checksum")

	validSig, err := ca.Sign(b.BlockChecksum, wallet.primaryPriv)
	require.NoError(t, err)

	b.Signatures.tryAppend(signerEntry{Sig: validSig, Id: pub})
	b.Signatures.tryAppend(signerEntry{Sig: []byte("not a valid signature"), Id: bytes.Repeat([]byte{0x44}, 200)})

	ok := b.VerifySignatures(ca, wallet)
	assert.True(t, ok)
	assert.Equal(t, 1, b.Signatures.len())
}

func TestGetUniqueSignatureCountComparesRawIdentifiers(t *testing.T) {
	b := NewBlock(5, 1)
	id := bytes.Repeat([]byte{0x07}, 40)
	b.Signatures.entries = []signerEntry{
		{Sig: []byte("s1"), Id: id},
		{Sig: []byte("s2"), Id: append([]byte(nil), id...)},
		{Sig: []byte("s3"), Id: bytes.Repeat([]byte{0x08}, 40)},
	}
	assert.Equal(t, 1, b.GetUniqueSignatureCount())
}
