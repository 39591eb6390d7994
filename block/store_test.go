package block

import (
	"ixichain/db"
	"ixichain/ec"

	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBlockState(t *testing.T) {
	kvdb := db.NewMemDb()

	bs := _BlockState{Height: 1000}
	bs.Save(kvdb)

	bs2 := loadBlockState(kvdb)
	assert.Equal(t, bs, bs2, "expected the retrieved block state to match")
}

func TestNewStoreDefaultsToZero(t *testing.T) {
	kvdb := db.NewMemDb()
	bs := NewStore(kvdb)
	require.Equal(t, int64(0), bs.Height())
}

func testBlockForStore(t *testing.T, blockNum uint64, lastChecksum []byte) *Block {
	t.Helper()
	ca := ec.RsaAdapter{}
	b := NewBlock(5, blockNum)
	b.AddTransaction("tx-1")
	b.LastBlockChecksum = lastChecksum
	b.BlockChecksum = b.CalculateChecksum(ca)
	return b
}

func TestStoreSaveAndLoadBlock(t *testing.T) {
	kvdb := db.NewMemDb()
	bs := NewStore(kvdb)
	require.Equal(t, int64(0), bs.Height())

	require.Nil(t, bs.LoadBlockByNum(1))

	b := testBlockForStore(t, 1, nil)
	bs.SaveBlock(b)
	require.Equal(t, int64(1), bs.Height())

	loaded := bs.LoadBlockByNum(1)
	require.NotNil(t, loaded)
	assert.Equal(t, b.BlockChecksum, loaded.BlockChecksum)
	assert.Equal(t, b.Transactions, loaded.Transactions)
	assert.True(t, loaded.FromLocalStorage)

	assert.Nil(t, bs.LoadBlockByNum(2))
}

func TestStoreSaveBlockPanicsOnNil(t *testing.T) {
	kvdb := db.NewMemDb()
	bs := NewStore(kvdb)
	assert.Panics(t, func() { bs.SaveBlock(nil) })
}

func TestStoreSaveBlockPanicsWithoutChecksum(t *testing.T) {
	kvdb := db.NewMemDb()
	bs := NewStore(kvdb)
	b := NewBlock(5, 1)
	assert.Panics(t, func() { bs.SaveBlock(b) })
}

func TestStoreHeightOnlyAdvancesContiguously(t *testing.T) {
	kvdb := db.NewMemDb()
	bs := NewStore(kvdb)

	// Saving block 2 before block 1 must not advance height, since it
	// is not contiguous with the current height of 0.
	b2 := testBlockForStore(t, 2, nil)
	bs.SaveBlock(b2)
	require.Equal(t, int64(0), bs.Height())

	b1 := testBlockForStore(t, 1, nil)
	bs.SaveBlock(b1)
	require.Equal(t, int64(1), bs.Height())
}
