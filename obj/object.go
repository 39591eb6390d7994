package obj

// Encodable is implemented by every wire type in this module (block
// headers, blocks, superblock segments). Bytes returns the canonical,
// round-trippable encoding described by the type's own decoder.
type Encodable interface {
	Bytes() []byte
}

