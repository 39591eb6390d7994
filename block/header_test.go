package block

import (
	"ixichain/chain"
	"ixichain/ec"

	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := &BlockHeader{
		Version:             5,
		BlockNum:             3,
		Transactions:         []string{"tx-1", "tx-2"},
		BlockChecksum:        []byte("checksum"),
		WalletStateChecksum:  []byte("wallet-state"),
		Difficulty:           42,
		LastSuperBlockNum:    2,
		LastSuperBlockChecksum: []byte("last-super"),
		SuperBlockSegments: map[uint64]*SuperBlockSegment{
			1: {BlockNum: 1, BlockChecksum: []byte("seg-1")},
			2: {BlockNum: 2, BlockChecksum: []byte("seg-2")},
		},
	}

	bz := h.Bytes()
	decoded, err := BlockHeaderFromBytes(bz)
	require.NoError(t, err)

	assert.Equal(t, h.Version, decoded.Version)
	assert.Equal(t, h.BlockNum, decoded.BlockNum)
	assert.Equal(t, h.Transactions, decoded.Transactions)
	assert.Equal(t, h.BlockChecksum, decoded.BlockChecksum)
	assert.Equal(t, h.WalletStateChecksum, decoded.WalletStateChecksum)
	assert.Equal(t, h.Difficulty, decoded.Difficulty)
	assert.Equal(t, h.LastSuperBlockNum, decoded.LastSuperBlockNum)
	assert.Equal(t, h.LastSuperBlockChecksum, decoded.LastSuperBlockChecksum)
	require.Len(t, decoded.SuperBlockSegments, 2)
	assert.Equal(t, []byte("seg-1"), decoded.SuperBlockSegments[1].BlockChecksum)
	assert.Equal(t, []byte("seg-2"), decoded.SuperBlockSegments[2].BlockChecksum)
}

func TestHeaderV4OmitsSuperBlockFields(t *testing.T) {
	h := &BlockHeader{Version: chain.BlockVerV4, BlockNum: 1, BlockChecksum: []byte("c")}
	bz := h.Bytes()

	decoded, err := BlockHeaderFromBytes(bz)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), decoded.LastSuperBlockNum)
	assert.Nil(t, decoded.LastSuperBlockChecksum)
	assert.Nil(t, decoded.SuperBlockSegments)
}

func TestHeaderV5WritesSuperBlockFields(t *testing.T) {
	h := &BlockHeader{
		Version:                chain.BlockVerV4 + 1,
		BlockNum:               1,
		BlockChecksum:          []byte("c"),
		LastSuperBlockNum:      9,
		LastSuperBlockChecksum: []byte("lsc"),
		SuperBlockSegments: map[uint64]*SuperBlockSegment{
			3: {BlockNum: 3, BlockChecksum: []byte("seg")},
		},
	}
	bz := h.Bytes()

	decoded, err := BlockHeaderFromBytes(bz)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), decoded.LastSuperBlockNum)
	assert.Equal(t, []byte("lsc"), decoded.LastSuperBlockChecksum)
	require.Len(t, decoded.SuperBlockSegments, 1)
}

func TestHeaderChecksumDeterministicAcrossSegmentInsertionOrder(t *testing.T) {
	ca := ec.RsaAdapter{}

	build := func(order []uint64) *BlockHeader {
		h := &BlockHeader{
			Version:            5,
			BlockNum:           10,
			Difficulty:         1,
			SuperBlockSegments: make(map[uint64]*SuperBlockSegment),
		}
		for _, k := range order {
			h.SuperBlockSegments[k] = &SuperBlockSegment{BlockNum: k, BlockChecksum: []byte{byte(k)}}
		}
		return h
	}

	h1 := build([]uint64{1, 2, 3})
	h2 := build([]uint64{3, 1, 2})

	assert.Equal(t, h1.CalculateChecksum(ca), h2.CalculateChecksum(ca))
}

func TestGenesisHeader(t *testing.T) {
	h := &BlockHeader{Version: 0, BlockNum: 0}
	assert.True(t, h.IsGenesis())

	h2 := &BlockHeader{Version: 0, BlockNum: 0, LastBlockChecksum: []byte("x")}
	assert.False(t, h2.IsGenesis())
}
