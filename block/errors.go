package block

import (
	"fmt"
)

// ErrUnknownBlock is returned when a block number has no corresponding
// entry in the block store.
type ErrUnknownBlock struct {
	BlockNum uint64
}

func (e ErrUnknownBlock) Error() string {
	return fmt.Sprintf("Could not find block #%d", e.BlockNum)
}

// ErrOversize reports a payload that exceeds chain.MaxPayloadSize.
// Decoding such a buffer must fail before any dependent structure is
// allocated (spec.md §3.4, §7).
type ErrOversize struct {
	Size int
}

func (e ErrOversize) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds the maximum allowed size", e.Size)
}
