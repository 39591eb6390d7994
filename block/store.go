package block

import (
	"ixichain/db"

	"encoding/binary"
	"sync/atomic"

	"halftwo/mangos/vbs"
	"halftwo/mangos/xerr"
)

// NB: Store methods will panic if they encounter errors
// deserializing loaded data, indicating probable corruption on disk.

// Store persists Block payloads keyed by (blockNum, checksum) over a
// KvDb, using the block's own canonical codec rather than a generic
// marshaler, since the wire format is specified bit-exactly.
type Store struct {
	kvdb   db.KvDb
	height int64 // atomic; last known contiguous block number
}

// NewStore returns a new Store with the given DB, initialized to the
// last block number committed to the DB.
func NewStore(kvdb db.KvDb) *Store {
	st := loadBlockState(kvdb)
	return &Store{
		kvdb:   kvdb,
		height: st.Height,
	}
}

// Height returns the last known contiguous block number.
func (bs *Store) Height() int64 {
	return atomic.LoadInt64(&bs.height)
}

func (bs *Store) LoadChecksum(blockNum uint64) []byte {
	bz, err := bs.kvdb.Get(blockNum2ChecksumKey(blockNum))
	if err != nil {
		return nil
	}

	var checksum []byte
	if err := vbs.Unmarshal(bz, &checksum); err != nil {
		panic(xerr.Trace(err, "Error unmarshal checksum"))
	}
	return checksum
}

// LoadBlockByNum returns the block at blockNum, or nil if absent.
func (bs *Store) LoadBlockByNum(blockNum uint64) *Block {
	checksum := bs.LoadChecksum(blockNum)
	if checksum == nil {
		return nil
	}
	return bs._loadBlock(blockNum, checksum)
}

// LoadBlock returns the block with the given number and checksum; if
// checksum is empty it is looked up via LoadChecksum first.
func (bs *Store) LoadBlock(blockNum uint64, checksum []byte) *Block {
	if len(checksum) == 0 {
		checksum = bs.LoadChecksum(blockNum)
		if checksum == nil {
			return nil
		}
	}
	return bs._loadBlock(blockNum, checksum)
}

func (bs *Store) _loadBlock(blockNum uint64, checksum []byte) *Block {
	bz, err := bs.kvdb.Get(blockKey(blockNum, checksum))
	if err != nil {
		return nil
	}

	block, err := BlockFromBytes(bz)
	if err != nil {
		panic(xerr.Trace(err, "Error decoding block"))
	}
	block.FromLocalStorage = true
	return block
}

// SaveBlock persists the given block to the underlying kvdb.
func (bs *Store) SaveBlock(block *Block) {
	if block == nil {
		panic("Store can only save a non-nil block")
	}
	if len(block.BlockChecksum) == 0 {
		panic("Store can only save a block with a computed checksum")
	}

	bz := block.Bytes()

	key := blockKey(block.BlockNum, block.BlockChecksum)
	bs.kvdb.Put(key, bz)

	ckbz, err := vbs.Marshal(block.BlockChecksum)
	if err != nil {
		panic(xerr.Trace(err, "Could not marshal block checksum"))
	}
	bs.kvdb.Put(blockNum2ChecksumKey(block.BlockNum), ckbz)

	if int64(block.BlockNum) == atomic.LoadInt64(&bs.height)+1 {
		height := atomic.AddInt64(&bs.height, 1)
		_BlockState{Height: height}.Save(bs.kvdb)
	}
}

//-----------------------------------------------------------------------------

func blockNum2ChecksumKey(blockNum uint64) []byte {
	buf := make([]byte, 9)
	buf[0] = 'N'
	binary.BigEndian.PutUint64(buf[1:], blockNum)
	return buf
}

func blockKey(blockNum uint64, checksum []byte) []byte {
	buf := make([]byte, 9+len(checksum))
	buf[0] = 'B'
	binary.BigEndian.PutUint64(buf[1:9], blockNum)
	copy(buf[9:], checksum)
	return buf
}

//-----------------------------------------------------------------------------

var blockStateKey = []byte("blockState")

type _BlockState struct {
	Height int64
}

// Save persists the Store's state to the database as VBS; this record
// is not part of the specified wire format, so the generic marshaler
// is fine here.
func (ss _BlockState) Save(kvdb db.KvDb) {
	bz, err := vbs.Marshal(ss)
	if err != nil {
		panic(xerr.Trace(err, "Could not marshal _BlockState"))
	}
	kvdb.Put(blockStateKey, bz)
}

func loadBlockState(kvdb db.KvDb) _BlockState {
	bz, err := kvdb.Get(blockStateKey)
	if len(bz) == 0 || err != nil {
		return _BlockState{Height: 0}
	}

	ss := _BlockState{}
	if err := vbs.Unmarshal(bz, &ss); err != nil {
		panic(xerr.Trace(err, "Could not unmarshal _BlockState"))
	}
	return ss
}
