package chain

// ChecksumDomainLock is mixed into every block, header and superblock
// segment checksum ahead of any other field, so a checksum from this
// protocol can never collide with one computed by an unrelated wire
// format that happens to hash the same field bytes.
var ChecksumDomainLock = []byte("ixianChecksumLock")

// BlockVer enumerates the version gates the header/block checksum and
// codec logic branch on.
const (
	BlockVerV2 int32 = 2 // H_qu/H_sq gate: version <= BlockVerV2 uses H_qu
	BlockVerV4 int32 = 4 // header superblock fields appear only when version > BlockVerV4
)

// MaxPayloadSize is the serialized-size ceiling shared by Block and
// SuperBlockSegment payloads.
const MaxPayloadSize = 3 * 1024 * 1024 // 3,145,728 bytes

// SuperBlockInterval is the default spacing, in block numbers, between
// superblocks that commit segments of intervening blocks.
const SuperBlockInterval = 1000

// MinDifficulty is the floor accepted for BlockHeader.Difficulty by a
// node's own block production; it is not consensus-enforced here, PoW
// validation is an external collaborator's concern.
const MinDifficulty = 1
