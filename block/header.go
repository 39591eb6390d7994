package block

import (
	"ixichain/chain"
	"ixichain/obj"
	"ixichain/util"

	"bytes"
	"fmt"
	"sort"
)

// BlockHeader is the header form of a block (spec.md §3.1): a block's
// superblock segments appear only by their checksum here, never with
// their full transaction/signer content.
type BlockHeader struct {
	Version  int32
	BlockNum uint64

	Transactions []string

	BlockChecksum           []byte // never absent once serialized
	LastBlockChecksum       []byte // optional; absent only for genesis
	WalletStateChecksum     []byte // optional
	SignatureFreezeChecksum []byte // optional

	Difficulty uint64

	LastSuperBlockNum      uint64 // present from version > chain.BlockVerV4
	LastSuperBlockChecksum []byte // optional; present from version > chain.BlockVerV4

	// SuperBlockSegments maps blockNum -> segment. In header form each
	// segment carries only its BlockChecksum.
	SuperBlockSegments map[uint64]*SuperBlockSegment
}

var _ obj.Encodable = (*BlockHeader)(nil)

// IsGenesis reports whether h is the genesis header (spec.md §3.4).
func (h *BlockHeader) IsGenesis() bool {
	return h.BlockNum == 0 && len(h.LastBlockChecksum) == 0
}

func (h *BlockHeader) hasSuperBlockFields() bool {
	return h.Version > chain.BlockVerV4
}

// sortedSegmentKeys returns the header's segment keys in ascending
// order, the canonical enumeration order for both encoding and
// checksum computation.
func (h *BlockHeader) sortedSegmentKeys() []uint64 {
	keys := make([]uint64, 0, len(h.SuperBlockSegments))
	for k := range h.SuperBlockSegments {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Bytes encodes the header per spec.md §4.5.
func (h *BlockHeader) Bytes() []byte {
	var out bytes.Buffer
	s := &obj.Serializer{W: &out}

	s.WriteI32(h.Version)
	s.WriteU64(h.BlockNum)

	s.WriteI32(int32(len(h.Transactions)))
	for _, t := range h.Transactions {
		s.WriteNetString(t)
	}

	s.WriteLP(h.BlockChecksum)
	s.WriteLP(h.LastBlockChecksum)
	s.WriteLP(h.WalletStateChecksum)
	s.WriteLP(h.SignatureFreezeChecksum)
	s.WriteU64(h.Difficulty)

	if h.hasSuperBlockFields() {
		s.WriteU64(h.LastSuperBlockNum)
		s.WriteLP(h.LastSuperBlockChecksum)

		keys := h.sortedSegmentKeys()
		s.WriteI32(int32(len(keys)))
		for _, k := range keys {
			s.WriteU64(k)
			s.WriteLP(h.SuperBlockSegments[k].BlockChecksum)
		}
	}

	if s.Err != nil {
		panic(s.Err)
	}
	return out.Bytes()
}

// BlockHeaderFromBytes decodes a header payload per spec.md §4.5.
// Buffers over chain.MaxPayloadSize are rejected up front.
func BlockHeaderFromBytes(bz []byte) (*BlockHeader, error) {
	if len(bz) > chain.MaxPayloadSize {
		return nil, ErrOversize{Size: len(bz)}
	}

	d := &obj.Deserializer{R: bytes.NewReader(bz)}
	h := &BlockHeader{}

	h.Version = d.ReadI32()
	h.BlockNum = d.ReadU64()

	nTx := d.ReadI32()
	if d.Err == nil && nTx < 0 {
		d.SetError(fmt.Errorf("block: negative transaction count %d", nTx))
	}
	if d.Err == nil {
		h.Transactions = make([]string, 0, nTx)
		for i := int32(0); i < nTx && d.Err == nil; i++ {
			h.Transactions = append(h.Transactions, d.ReadNetString())
		}
	}

	h.BlockChecksum = d.ReadLP(0)
	h.LastBlockChecksum = d.ReadLP(0)
	h.WalletStateChecksum = d.ReadLP(0)
	h.SignatureFreezeChecksum = d.ReadLP(0)
	h.Difficulty = d.ReadU64()

	if d.Err == nil && h.hasSuperBlockFields() {
		h.LastSuperBlockNum = d.ReadU64()
		h.LastSuperBlockChecksum = d.ReadLP(0)

		nSeg := d.ReadI32()
		if d.Err == nil && nSeg < 0 {
			d.SetError(fmt.Errorf("block: negative segment count %d", nSeg))
		}
		if d.Err == nil {
			h.SuperBlockSegments = make(map[uint64]*SuperBlockSegment, nSeg)
			for i := int32(0); i < nSeg && d.Err == nil; i++ {
				key := d.ReadU64()
				checksum := d.ReadLP(0)
				if d.Err == nil {
					h.SuperBlockSegments[key] = &SuperBlockSegment{BlockNum: key, BlockChecksum: checksum}
				}
			}
		}
	}

	if d.Err != nil {
		return nil, fmt.Errorf("block: decode header: %w", d.Err)
	}
	return h, nil
}

// CalculateChecksum computes the header's content-addressed checksum
// per spec.md §4.5.
func (h *BlockHeader) CalculateChecksum(ca CryptoAdapter) []byte {
	var buf bytes.Buffer
	buf.Write(chain.ChecksumDomainLock)

	s := &obj.Serializer{W: &buf}
	s.WriteI32(h.Version)
	s.WriteU64(h.BlockNum)
	if s.Err != nil {
		panic(s.Err)
	}

	for _, t := range h.Transactions {
		buf.WriteString(t)
	}

	if len(h.LastBlockChecksum) > 0 {
		buf.Write(h.LastBlockChecksum)
	}
	if len(h.WalletStateChecksum) > 0 {
		buf.Write(h.WalletStateChecksum)
	}
	if len(h.SignatureFreezeChecksum) > 0 {
		buf.Write(h.SignatureFreezeChecksum)
	}

	s2 := &obj.Serializer{W: &buf}
	s2.WriteU64(h.Difficulty)
	if s2.Err != nil {
		panic(s2.Err)
	}

	for _, k := range h.sortedSegmentKeys() {
		s3 := &obj.Serializer{W: &buf}
		s3.WriteU64(k)
		if s3.Err != nil {
			panic(s3.Err)
		}
		buf.Write(h.SuperBlockSegments[k].BlockChecksum)
	}

	if len(h.LastSuperBlockChecksum) > 0 {
		s4 := &obj.Serializer{W: &buf}
		s4.WriteU64(h.LastSuperBlockNum)
		if s4.Err != nil {
			panic(s4.Err)
		}
		buf.Write(h.LastSuperBlockChecksum)
	}

	sum := buf.Bytes()
	if h.Version <= chain.BlockVerV2 {
		return ca.HQu(sum)
	}
	return ca.HSq(sum)
}

// Clone deep-copies h, per spec.md §3.4/§9 (a header owns deep copies
// of every byte slice, never shared ownership with the Block it was
// built from).
func (h *BlockHeader) Clone() *BlockHeader {
	clone := &BlockHeader{
		Version:                 h.Version,
		BlockNum:                h.BlockNum,
		Transactions:            append([]string(nil), h.Transactions...),
		BlockChecksum:           util.CloneBytes(h.BlockChecksum),
		LastBlockChecksum:       util.CloneBytes(h.LastBlockChecksum),
		WalletStateChecksum:     util.CloneBytes(h.WalletStateChecksum),
		SignatureFreezeChecksum: util.CloneBytes(h.SignatureFreezeChecksum),
		Difficulty:              h.Difficulty,
		LastSuperBlockNum:       h.LastSuperBlockNum,
		LastSuperBlockChecksum:  util.CloneBytes(h.LastSuperBlockChecksum),
	}
	if h.SuperBlockSegments != nil {
		clone.SuperBlockSegments = make(map[uint64]*SuperBlockSegment, len(h.SuperBlockSegments))
		for k, seg := range h.SuperBlockSegments {
			clone.SuperBlockSegments[k] = &SuperBlockSegment{BlockNum: seg.BlockNum, BlockChecksum: util.CloneBytes(seg.BlockChecksum)}
		}
	}
	return clone
}
