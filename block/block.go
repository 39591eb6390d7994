package block

import (
	"ixichain/chain"
	"ixichain/ec"
	"ixichain/obj"
	"ixichain/util"
	"ixichain/util/log"

	"bytes"
	"fmt"
	"sort"
)

// Block is the full block body (spec.md §3.3). Unlike BlockHeader it
// carries a timestamp, a signature set instead of a header view, and
// superblock segments with their full content.
type Block struct {
	Version  int32
	BlockNum uint64

	Transactions []string
	Signatures   *signerSet // (signature, identifier) pairs

	BlockChecksum           []byte
	LastBlockChecksum       []byte
	WalletStateChecksum     []byte
	SignatureFreezeChecksum []byte

	Difficulty uint64
	Timestamp  int64

	LastSuperBlockNum      uint64
	LastSuperBlockChecksum []byte

	SuperBlockSegments map[uint64]*SuperBlockSegment

	// PowField is computed locally by this node and never serialized.
	PowField []byte

	// FromLocalStorage is a runtime-only flag: true if this Block was
	// loaded from this node's own block store rather than received
	// from a peer.
	FromLocalStorage bool
}

var _ obj.Encodable = (*Block)(nil)

// NewBlock returns an empty block ready to accumulate transactions.
func NewBlock(version int32, blockNum uint64) *Block {
	return &Block{
		Version:            version,
		BlockNum:           blockNum,
		Signatures:         newSignerSet(),
		SuperBlockSegments: make(map[uint64]*SuperBlockSegment),
	}
}

// IsGenesis reports whether b is the genesis block (spec.md §3.4).
func (b *Block) IsGenesis() bool {
	return b.BlockNum == 0 && len(b.LastBlockChecksum) == 0
}

// Header returns a BlockHeader view of b, by construction-by-copy:
// the header owns deep copies of every byte slice, never a shared
// reference back into b (spec.md §9).
func (b *Block) Header() *BlockHeader {
	h := &BlockHeader{
		Version:                 b.Version,
		BlockNum:                b.BlockNum,
		Transactions:            append([]string(nil), b.Transactions...),
		BlockChecksum:           util.CloneBytes(b.BlockChecksum),
		LastBlockChecksum:       util.CloneBytes(b.LastBlockChecksum),
		WalletStateChecksum:     util.CloneBytes(b.WalletStateChecksum),
		SignatureFreezeChecksum: util.CloneBytes(b.SignatureFreezeChecksum),
		Difficulty:              b.Difficulty,
		LastSuperBlockNum:       b.LastSuperBlockNum,
		LastSuperBlockChecksum:  util.CloneBytes(b.LastSuperBlockChecksum),
	}
	if len(b.SuperBlockSegments) > 0 {
		h.SuperBlockSegments = make(map[uint64]*SuperBlockSegment, len(b.SuperBlockSegments))
		for k, seg := range b.SuperBlockSegments {
			h.SuperBlockSegments[k] = &SuperBlockSegment{BlockNum: seg.BlockNum, BlockChecksum: util.CloneBytes(seg.BlockChecksum)}
		}
	}
	return h
}

func (b *Block) sortedSegmentKeys() []uint64 {
	keys := make([]uint64, 0, len(b.SuperBlockSegments))
	for k := range b.SuperBlockSegments {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Bytes encodes the block body per spec.md §4.6. Superblock segment
// bodies are never part of it; only their checksums reach the header.
func (b *Block) Bytes() []byte {
	var out bytes.Buffer
	s := &obj.Serializer{W: &out}

	s.WriteI32(b.Version)
	s.WriteU64(b.BlockNum)

	s.WriteI32(int32(len(b.Transactions)))
	for _, t := range b.Transactions {
		s.WriteNetString(t)
	}

	sigs := b.Signatures.snapshot()
	s.WriteI32(int32(len(sigs)))
	for _, e := range sigs {
		s.WriteLP(e.Sig)
		s.WriteLP(e.Id)
	}

	s.WriteLP(b.BlockChecksum)
	s.WriteLP(b.LastBlockChecksum)
	s.WriteLP(b.WalletStateChecksum)
	s.WriteLP(b.SignatureFreezeChecksum)
	s.WriteU64(b.Difficulty)
	s.WriteI64(b.Timestamp)
	s.WriteU64(b.LastSuperBlockNum)
	s.WriteLP(b.LastSuperBlockChecksum)

	if s.Err != nil {
		panic(s.Err)
	}
	return out.Bytes()
}

// BlockFromBytes decodes a block body payload per spec.md §4.6.
// Buffers over chain.MaxPayloadSize are rejected up front; a decode
// failure discards the partial object (spec.md §7).
func BlockFromBytes(bz []byte) (*Block, error) {
	if len(bz) > chain.MaxPayloadSize {
		return nil, ErrOversize{Size: len(bz)}
	}

	d := &obj.Deserializer{R: bytes.NewReader(bz)}
	b := &Block{Signatures: newSignerSet(), SuperBlockSegments: make(map[uint64]*SuperBlockSegment)}

	b.Version = d.ReadI32()
	b.BlockNum = d.ReadU64()

	nTx := d.ReadI32()
	if d.Err == nil && nTx < 0 {
		d.SetError(fmt.Errorf("block: negative transaction count %d", nTx))
	}
	if d.Err == nil {
		b.Transactions = make([]string, 0, nTx)
		for i := int32(0); i < nTx && d.Err == nil; i++ {
			b.Transactions = append(b.Transactions, d.ReadNetString())
		}
	}

	nSig := d.ReadI32()
	if d.Err == nil && nSig < 0 {
		d.SetError(fmt.Errorf("block: negative signature count %d", nSig))
	}
	if d.Err == nil {
		for i := int32(0); i < nSig && d.Err == nil; i++ {
			sig := d.ReadLP(0)
			id := d.ReadLP(int32(ec.MaxPubKeyLen))
			if d.Err == nil {
				b.Signatures.tryAppend(signerEntry{Sig: sig, Id: id})
			}
		}
	}

	b.BlockChecksum = d.ReadLP(0)
	b.LastBlockChecksum = d.ReadLP(0)
	b.WalletStateChecksum = d.ReadLP(0)
	b.SignatureFreezeChecksum = d.ReadLP(0)
	b.Difficulty = d.ReadU64()
	b.Timestamp = d.ReadI64()
	b.LastSuperBlockNum = d.ReadU64()
	b.LastSuperBlockChecksum = d.ReadLP(0)

	if d.Err != nil {
		return nil, fmt.Errorf("block: decode block: %w", d.Err)
	}
	return b, nil
}

// CalculateChecksum computes the block's content-addressed checksum
// per spec.md §4.6. It panics if a segment is missing its freeze
// checksum, per the Open Question resolution in DESIGN.md: a segment
// without one is a construction error, not a value to hash as absent.
func (b *Block) CalculateChecksum(ca CryptoAdapter) []byte {
	var buf bytes.Buffer
	buf.Write(chain.ChecksumDomainLock)

	s := &obj.Serializer{W: &buf}
	s.WriteI32(b.Version)
	s.WriteU64(b.BlockNum)
	if s.Err != nil {
		panic(s.Err)
	}

	for _, t := range b.Transactions {
		buf.WriteString(t)
	}

	if len(b.LastBlockChecksum) > 0 {
		buf.Write(b.LastBlockChecksum)
	}
	if len(b.WalletStateChecksum) > 0 {
		buf.Write(b.WalletStateChecksum)
	}
	if len(b.SignatureFreezeChecksum) > 0 {
		buf.Write(b.SignatureFreezeChecksum)
	}

	s2 := &obj.Serializer{W: &buf}
	s2.WriteU64(b.Difficulty)
	if s2.Err != nil {
		panic(s2.Err)
	}

	for _, k := range b.sortedSegmentKeys() {
		seg := b.SuperBlockSegments[k]
		if len(seg.SignatureFreezeChecksum) == 0 {
			panic(fmt.Sprintf("block: super block segment %d has no signature freeze checksum", k))
		}

		s3 := &obj.Serializer{W: &buf}
		s3.WriteU64(k)
		s3.WriteI32(seg.Version)
		if s3.Err != nil {
			panic(s3.Err)
		}
		buf.Write(seg.SignatureFreezeChecksum)

		var txBuf bytes.Buffer
		for _, t := range seg.Transactions {
			txBuf.WriteString(t)
		}
		buf.Write(ca.HSq(txBuf.Bytes()))
		buf.Write(ca.HSq(seg.mergedSigners()))
	}

	if len(b.LastSuperBlockChecksum) > 0 {
		s4 := &obj.Serializer{W: &buf}
		s4.WriteU64(b.LastSuperBlockNum)
		if s4.Err != nil {
			panic(s4.Err)
		}
		buf.Write(b.LastSuperBlockChecksum)
	}

	sum := buf.Bytes()
	if b.Version <= chain.BlockVerV2 {
		return ca.HQu(sum)
	}
	return ca.HSq(sum)
}

// CalculateSignatureChecksum computes the auxiliary signature
// checksum used for block equality, per spec.md §4.6.
func (b *Block) CalculateSignatureChecksum(ca CryptoAdapter) []byte {
	sigs := sortedByIdentifier(b.Signatures.snapshot())

	var buf bytes.Buffer
	s := &obj.Serializer{W: &buf}
	s.WriteU64(b.BlockNum)
	if s.Err != nil {
		panic(s.Err)
	}

	for _, e := range sigs {
		if b.Version > 3 {
			buf.Write(e.Id)
		} else {
			buf.Write(e.Sig)
		}
	}

	sum := buf.Bytes()
	if b.Version <= chain.BlockVerV2 {
		return ca.HQu(sum)
	}
	return ca.HSq(sum)
}

// Equals implements the equality law of spec.md §4.6/§8.
func (b *Block) Equals(other *Block, ca CryptoAdapter) bool {
	if other == nil {
		return false
	}
	if !bytes.Equal(b.BlockChecksum, other.BlockChecksum) {
		return false
	}

	aAbsent := len(b.SignatureFreezeChecksum) == 0
	bAbsent := len(other.SignatureFreezeChecksum) == 0
	if aAbsent != bAbsent {
		return false
	}
	if !aAbsent && !bytes.Equal(b.SignatureFreezeChecksum, other.SignatureFreezeChecksum) {
		return false
	}

	return bytes.Equal(b.CalculateSignatureChecksum(ca), other.CalculateSignatureChecksum(ca))
}

// ApplySignature has the local node sign b.BlockChecksum and append
// its own entry to the signature set (spec.md §4.6). It is a no-op if
// the local address is already present.
func (b *Block) ApplySignature(ca CryptoAdapter, wallet WalletResolver) error {
	localAddr := wallet.PrimaryAddress()
	if b.Signatures.containsAddress(localAddr) {
		return nil
	}

	sig, err := ca.Sign(b.BlockChecksum, wallet.PrimaryPrivateKey())
	if err != nil {
		return fmt.Errorf("block: sign: %w", err)
	}

	entry := signerEntry{Sig: sig, Id: localAddr}
	if w, ok := wallet.GetWallet(localAddr); !ok || len(w.PublicKey) == 0 {
		entry.Id = wallet.PrimaryPublicKey()
	}
	b.Signatures.tryAppend(entry)
	return nil
}

// AddTransaction appends id iff it is not already present (spec.md
// §4.6). Duplicates are logged and ignored, not an error.
func (b *Block) AddTransaction(id string) {
	for _, t := range b.Transactions {
		if t == id {
			log.Debug("block: duplicate transaction ignored", "id", id)
			return
		}
	}
	b.Transactions = append(b.Transactions, id)
}

// AddSignature recovers the signer's public key via wallet, verifies
// sig against b.BlockChecksum, and appends it if no equivalent signer
// is already present (spec.md §4.6).
func (b *Block) AddSignature(ca CryptoAdapter, wallet WalletResolver, sig, id []byte) error {
	if b.Signatures.containsAddress(id) {
		return nil
	}

	pubKey, err := resolvePublicKey(wallet, id)
	if err != nil {
		return err
	}

	if !ca.Verify(b.BlockChecksum, pubKey, sig) {
		return fmt.Errorf("block: signature verification failed for signer")
	}

	b.Signatures.tryAppend(signerEntry{Sig: sig, Id: id})
	return nil
}

// resolvePublicKey returns id itself if it is already in public-key
// form, else looks up id's derived address in wallet.
func resolvePublicKey(wallet WalletResolver, id []byte) ([]byte, error) {
	if ec.ClassifyIdentifier(id) == ec.PublicKeyIdentifier {
		return id, nil
	}

	addr, err := ec.DeriveAddress(id)
	if err != nil {
		return nil, fmt.Errorf("block: invalid signer identifier: %w", err)
	}
	w, ok := wallet.GetWallet(addr)
	if !ok || len(w.PublicKey) == 0 {
		return nil, fmt.Errorf("block: no registered public key for signer")
	}
	return w.PublicKey, nil
}

// AddSignaturesFrom merges other's signatures into b: any signer not
// already present by identity is appended without re-verification
// (spec.md §4.6 — the caller is responsible for having verified them).
func (b *Block) AddSignaturesFrom(other *Block) {
	for _, e := range other.Signatures.snapshot() {
		b.Signatures.tryAppend(e)
	}
}

// VerifySignatures iterates a snapshot of the signature set, removing
// entries with an unresolved public key, a duplicate already-seen
// public key, or a signature that fails verification. It returns true
// iff at least one signature survives (spec.md §4.6).
func (b *Block) VerifySignatures(ca CryptoAdapter, wallet WalletResolver) bool {
	snapshot := b.Signatures.snapshot()
	survivors := make([]signerEntry, 0, len(snapshot))
	seenPubKeys := util.NewStringSet()

	for _, e := range snapshot {
		pubKey, err := resolvePublicKey(wallet, e.Id)
		if err != nil {
			continue
		}

		key := string(pubKey)
		if seenPubKeys.Has(key) {
			continue
		}

		if !ca.Verify(b.BlockChecksum, pubKey, e.Sig) {
			continue
		}

		seenPubKeys.Add(key)
		survivors = append(survivors, e)
	}

	b.Signatures.replaceAll(survivors)
	return len(survivors) > 0
}

// identifierIsAddressForm mirrors the ≤70-byte address/pubkey split
// used only by HasNodeSignature and GetSignaturesWalletAddresses
// (spec.md §4.6) — a narrower band than ec.ClassifyIdentifier's
// [36,128] address window, and intentionally not unified with it.
const identifierAddressFormMaxLen = 70

func identifierIsAddressForm(id []byte) bool {
	return len(id) <= identifierAddressFormMaxLen
}

// HasNodeSignature reports whether the signature set has an entry for
// the given identity (the local node's, if pubKey is nil). On a
// tampered match it returns false and logs rather than purging the
// entry (spec.md §4.6).
func (b *Block) HasNodeSignature(ca CryptoAdapter, wallet WalletResolver, pubKey []byte) bool {
	if len(pubKey) == 0 {
		pubKey = wallet.PrimaryPublicKey()
	}
	addr, err := ec.DeriveAddress(pubKey)
	if err != nil {
		return false
	}

	for _, e := range b.Signatures.snapshot() {
		var match bool
		if identifierIsAddressForm(e.Id) {
			match = bytes.Equal(e.Id, addr)
		} else {
			match = bytes.Equal(e.Id, pubKey)
		}
		if !match {
			continue
		}

		if !ca.Verify(b.BlockChecksum, pubKey, e.Sig) {
			log.Error("block: signature for node failed verification, possible tampering", "addr", fmt.Sprintf("%x", addr))
			return false
		}
		return true
	}
	return false
}

// GetSignaturesWalletAddresses returns the addresses of the block's
// signers (or, if convertPubKeys is false, raw public-key bytes for
// pubkey-form signers), ascending by byte comparison (spec.md §4.6).
// Address-form identifiers with no registered public key are skipped.
func (b *Block) GetSignaturesWalletAddresses(wallet WalletResolver, convertPubKeys bool) [][]byte {
	var out [][]byte
	for _, e := range b.Signatures.snapshot() {
		if identifierIsAddressForm(e.Id) {
			if w, ok := wallet.GetWallet(e.Id); !ok || len(w.PublicKey) == 0 {
				continue
			}
			out = append(out, util.CloneBytes(e.Id))
			continue
		}

		if convertPubKeys {
			addr, err := ec.DeriveAddress(e.Id)
			if err != nil {
				continue
			}
			out = append(out, addr)
		} else {
			out = append(out, util.CloneBytes(e.Id))
		}
	}

	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}

// GetUniqueSignatureCount counts identifiers occurring exactly once in
// the signature set, comparing raw identifier bytes (spec.md §4.6 —
// intentionally not derived-address comparison; see DESIGN.md).
func (b *Block) GetUniqueSignatureCount() int {
	counts := make(map[string]int)
	for _, e := range b.Signatures.snapshot() {
		counts[string(e.Id)]++
	}

	n := 0
	for _, c := range counts {
		if c == 1 {
			n++
		}
	}
	return n
}

// Clone deep-copies b, including its signer sets and segments.
func (b *Block) Clone() *Block {
	clone := &Block{
		Version:                 b.Version,
		BlockNum:                b.BlockNum,
		Transactions:            append([]string(nil), b.Transactions...),
		BlockChecksum:           util.CloneBytes(b.BlockChecksum),
		LastBlockChecksum:       util.CloneBytes(b.LastBlockChecksum),
		WalletStateChecksum:     util.CloneBytes(b.WalletStateChecksum),
		SignatureFreezeChecksum: util.CloneBytes(b.SignatureFreezeChecksum),
		Difficulty:              b.Difficulty,
		Timestamp:               b.Timestamp,
		LastSuperBlockNum:       b.LastSuperBlockNum,
		LastSuperBlockChecksum:  util.CloneBytes(b.LastSuperBlockChecksum),
		PowField:                util.CloneBytes(b.PowField),
		FromLocalStorage:        b.FromLocalStorage,
	}
	clone.Signatures = newSignerSet()
	clone.Signatures.replaceAll(b.Signatures.snapshot())
	if b.SuperBlockSegments != nil {
		clone.SuperBlockSegments = make(map[uint64]*SuperBlockSegment, len(b.SuperBlockSegments))
		for k, seg := range b.SuperBlockSegments {
			clone.SuperBlockSegments[k] = seg.Clone()
		}
	}
	return clone
}
