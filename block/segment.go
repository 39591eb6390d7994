package block

import (
	"ixichain/chain"
	"ixichain/ec"
	"ixichain/obj"
	"ixichain/util"

	"bytes"
	"fmt"
	"sort"
)

// SuperBlockSegment commits the transactions and signature-freeze
// signer sets of one past block into a later superblock (spec.md
// §3.2). In a BlockHeader only its BlockChecksum is carried; the full
// form below is the standalone, out-of-band payload.
type SuperBlockSegment struct {
	Version  int32
	BlockNum uint64

	Transactions []string

	SignatureFreezeChecksum []byte // optional

	SignatureFreezeSigners       *signerSet // bare identifiers
	LegacySignatureFreezeSigners *signerSet // (sig, identifier) pairs

	// BlockChecksum is this segment's own content-addressed checksum,
	// the value a BlockHeader embeds for this segment's key. It is
	// computed by CalculateChecksum and cached here once known.
	BlockChecksum []byte
}

var _ obj.Encodable = (*SuperBlockSegment)(nil)

// NewSuperBlockSegment returns an empty segment ready to accumulate
// transactions and freeze signers.
func NewSuperBlockSegment(version int32, blockNum uint64) *SuperBlockSegment {
	return &SuperBlockSegment{
		Version:                      version,
		BlockNum:                     blockNum,
		SignatureFreezeSigners:       newSignerSet(),
		LegacySignatureFreezeSigners: newSignerSet(),
	}
}

func (seg *SuperBlockSegment) addTransaction(id string) {
	for _, t := range seg.Transactions {
		if t == id {
			return
		}
	}
	seg.Transactions = append(seg.Transactions, id)
}

// containsSignature reports whether id's address form is already
// present in either freeze-signer set (spec.md §4.4 membership).
func (seg *SuperBlockSegment) containsSignature(id []byte) bool {
	addr, err := ec.DeriveAddress(id)
	if err != nil {
		return false
	}

	for _, e := range seg.SignatureFreezeSigners.snapshot() {
		a, err := ec.DeriveAddress(e.Id)
		if err == nil && bytes.Equal(a, addr) {
			return true
		}
	}
	for _, e := range seg.LegacySignatureFreezeSigners.snapshot() {
		a, err := ec.DeriveAddress(e.Id)
		if err == nil && bytes.Equal(a, addr) {
			return true
		}
	}
	return false
}

// mergedSigners concatenates the segment's freeze-signer sets in the
// canonical order used for hashing (spec.md §4.6): signatureFreezeSigners
// sorted lexicographically by raw bytes, then legacySignatureFreezeSigners
// sorted by identifier, each as sig||identifier.
func (seg *SuperBlockSegment) mergedSigners() []byte {
	var buf bytes.Buffer

	bare := seg.SignatureFreezeSigners.snapshot()
	sort.Slice(bare, func(i, j int) bool {
		return bytes.Compare(bare[i].Id, bare[j].Id) < 0
	})
	for _, e := range bare {
		buf.Write(e.Id)
	}

	legacy := sortedByIdentifier(seg.LegacySignatureFreezeSigners.snapshot())
	for _, e := range legacy {
		buf.Write(e.Sig)
		buf.Write(e.Id)
	}

	return buf.Bytes()
}

// CalculateChecksum computes and caches this segment's own checksum:
// domain lock || version || blockNum || concat(txids) ||
// signatureFreezeChecksum (if present) || H_sq(mergedSigners), hashed
// with H_qu if version <= chain.BlockVerV2, else H_sq.
func (seg *SuperBlockSegment) CalculateChecksum(ca CryptoAdapter) []byte {
	var buf bytes.Buffer
	buf.Write(chain.ChecksumDomainLock)

	s := &obj.Serializer{W: &buf}
	s.WriteI32(seg.Version)
	s.WriteU64(seg.BlockNum)
	if s.Err != nil {
		panic(s.Err)
	}

	for _, t := range seg.Transactions {
		buf.WriteString(t)
	}

	if len(seg.SignatureFreezeChecksum) > 0 {
		buf.Write(seg.SignatureFreezeChecksum)
	}

	buf.Write(ca.HSq(seg.mergedSigners()))

	sum := buf.Bytes()
	var digest []byte
	if seg.Version <= chain.BlockVerV2 {
		digest = ca.HQu(sum)
	} else {
		digest = ca.HSq(sum)
	}
	seg.BlockChecksum = digest
	return digest
}

// Bytes encodes the segment's full standalone payload (spec.md §4.4).
func (seg *SuperBlockSegment) Bytes() []byte {
	var out bytes.Buffer
	s := &obj.Serializer{W: &out}

	s.WriteI32(seg.Version)
	s.WriteU64(seg.BlockNum)

	s.WriteI32(int32(len(seg.Transactions)))
	for _, t := range seg.Transactions {
		s.WriteNetString(t)
	}

	bare := seg.SignatureFreezeSigners.snapshot()
	s.WriteI32(int32(len(bare)))
	for _, e := range bare {
		s.WriteLP(e.Id)
	}

	s.WriteLP(seg.SignatureFreezeChecksum)

	legacy := seg.LegacySignatureFreezeSigners.snapshot()
	s.WriteI32(int32(len(legacy)))
	for _, e := range legacy {
		s.WriteLP(e.Sig)
		s.WriteLP(e.Id)
	}

	if s.Err != nil {
		panic(s.Err) // Serializer only errors writing to an in-memory buffer
	}
	return out.Bytes()
}

// SuperBlockSegmentFromBytes decodes a standalone segment payload.
// Buffers over chain.MaxPayloadSize are rejected before any decoding
// is attempted (spec.md §3.4, §4.4).
func SuperBlockSegmentFromBytes(bz []byte) (*SuperBlockSegment, error) {
	if len(bz) > chain.MaxPayloadSize {
		return nil, ErrOversize{Size: len(bz)}
	}

	d := &obj.Deserializer{R: bytes.NewReader(bz)}
	seg := &SuperBlockSegment{
		SignatureFreezeSigners:       newSignerSet(),
		LegacySignatureFreezeSigners: newSignerSet(),
	}

	seg.Version = d.ReadI32()
	seg.BlockNum = d.ReadU64()

	nTx := d.ReadI32()
	if d.Err == nil && nTx < 0 {
		d.SetError(fmt.Errorf("block: negative transaction count %d", nTx))
	}
	if d.Err == nil {
		seg.Transactions = make([]string, 0, nTx)
		for i := int32(0); i < nTx && d.Err == nil; i++ {
			seg.Transactions = append(seg.Transactions, d.ReadNetString())
		}
	}

	nSig := d.ReadI32()
	if d.Err == nil && nSig < 0 {
		d.SetError(fmt.Errorf("block: negative signer count %d", nSig))
	}
	if d.Err == nil {
		for i := int32(0); i < nSig && d.Err == nil; i++ {
			id := d.ReadLP(int32(ec.MaxPubKeyLen))
			if d.Err == nil {
				seg.SignatureFreezeSigners.tryAppend(signerEntry{Id: id})
			}
		}
	}

	seg.SignatureFreezeChecksum = d.ReadLP(0)

	nLegacy := d.ReadI32()
	if d.Err == nil && nLegacy < 0 {
		d.SetError(fmt.Errorf("block: negative legacy signer count %d", nLegacy))
	}
	if d.Err == nil {
		for i := int32(0); i < nLegacy && d.Err == nil; i++ {
			sig := d.ReadLP(0)
			id := d.ReadLP(int32(ec.MaxPubKeyLen))
			if d.Err == nil {
				seg.LegacySignatureFreezeSigners.tryAppend(signerEntry{Sig: sig, Id: id})
			}
		}
	}

	if d.Err != nil {
		return nil, fmt.Errorf("block: decode super block segment: %w", d.Err)
	}
	return seg, nil
}

// Clone deep-copies seg, including every byte slice and signer set
// (spec.md §3.4: checksums, once set, are never shared by reference).
func (seg *SuperBlockSegment) Clone() *SuperBlockSegment {
	clone := &SuperBlockSegment{
		Version:                 seg.Version,
		BlockNum:                seg.BlockNum,
		Transactions:            append([]string(nil), seg.Transactions...),
		SignatureFreezeChecksum: util.CloneBytes(seg.SignatureFreezeChecksum),
		BlockChecksum:           util.CloneBytes(seg.BlockChecksum),
	}
	clone.SignatureFreezeSigners = newSignerSet()
	clone.SignatureFreezeSigners.replaceAll(seg.SignatureFreezeSigners.snapshot())
	clone.LegacySignatureFreezeSigners = newSignerSet()
	clone.LegacySignatureFreezeSigners.replaceAll(seg.LegacySignatureFreezeSigners.snapshot())
	return clone
}
