package obj

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"halftwo/mangos/xerr"
)

// MaxPayloadSize bounds any single Block or SuperBlockSegment wire
// payload. Buffers larger than this are rejected before any decoding
// of the dependent structures is attempted.
const MaxPayloadSize = 3 * 1024 * 1024 // 3,145,728 bytes

// WriteI32 writes a 32-bit signed integer, little-endian.
func (s *Serializer) WriteI32(v int32) {
	if s.Err == nil {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(v))
		s.Write(buf[:])
	}
}

// WriteU64 writes a 64-bit unsigned integer, little-endian.
func (s *Serializer) WriteU64(v uint64) {
	if s.Err == nil {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		s.Write(buf[:])
	}
}

// WriteI64 writes a 64-bit signed integer, little-endian.
func (s *Serializer) WriteI64(v int64) {
	s.WriteU64(uint64(v))
}

// WriteLP writes a length-prefixed byte slice: a 32-bit signed length
// followed by that many bytes. A nil or empty slice is written as
// length 0, which downstream readers treat as "absent" for optional
// fields.
func (s *Serializer) WriteLP(data []byte) {
	if s.Err == nil {
		s.WriteI32(int32(len(data)))
		s.Write(data)
	}
}

// WriteNetString writes str using the 7-bit-varint byte-length prefix
// framing of a standard binary writer's string primitive: each prefix
// byte contributes its low 7 bits, little-endian, and a byte with its
// top bit clear terminates the prefix. Existing on-the-wire headers
// depend on this exact framing, so it is reproduced bit-for-bit rather
// than swapped for a length-prefixed-bytes encoding.
func (s *Serializer) WriteNetString(str string) {
	if s.Err != nil {
		return
	}
	n := uint64(len(str))
	for n >= 0x80 {
		s.WriteByte(byte(n) | 0x80)
		n >>= 7
	}
	s.WriteByte(byte(n))
	s.Write([]byte(str))
}

// ReadI32 reads a little-endian 32-bit signed integer.
func (d *Deserializer) ReadI32() (v int32) {
	if d.Err == nil {
		var buf [4]byte
		d.Read(buf[:])
		if d.Err == nil {
			v = int32(binary.LittleEndian.Uint32(buf[:]))
		}
	}
	return v
}

// ReadU64 reads a little-endian 64-bit unsigned integer.
func (d *Deserializer) ReadU64() (v uint64) {
	if d.Err == nil {
		var buf [8]byte
		d.Read(buf[:])
		if d.Err == nil {
			v = binary.LittleEndian.Uint64(buf[:])
		}
	}
	return v
}

// ReadI64 reads a little-endian 64-bit signed integer.
func (d *Deserializer) ReadI64() int64 {
	return int64(d.ReadU64())
}

// ReadLP reads a length-prefixed byte slice written by WriteLP. A
// length of 0 yields a nil slice, the absent-optional-field sentinel.
// maxLen bounds the length against maliciously large prefixes; pass 0
// for no additional bound beyond MaxPayloadSize's outer ceiling.
func (d *Deserializer) ReadLP(maxLen int32) []byte {
	if d.Err != nil {
		return nil
	}
	n := d.ReadI32()
	if d.Err != nil {
		return nil
	}
	if n < 0 || (maxLen > 0 && n > maxLen) || n > int32(MaxPayloadSize) {
		d.SetError(fmt.Errorf("obj: length-prefixed field too large (%d bytes)", n))
		return nil
	}
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	d.Read(buf)
	if d.Err != nil {
		return nil
	}
	return buf
}

// ReadNetString reads a string framed as WriteNetString encodes it.
func (d *Deserializer) ReadNetString() string {
	if d.Err != nil {
		return ""
	}
	var n uint64
	var shift uint
	for {
		b := d.ReadByte()
		if d.Err != nil {
			return ""
		}
		n |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 63 {
			d.SetError(fmt.Errorf("obj: string length prefix too long"))
			return ""
		}
	}
	if n > uint64(MaxPayloadSize) {
		d.SetError(fmt.Errorf("obj: string field too large (%d bytes)", n))
		return ""
	}
	buf := make([]byte, n)
	d.Read(buf)
	if d.Err != nil {
		return ""
	}
	if !utf8.Valid(buf) {
		d.SetError(xerr.Trace(fmt.Errorf("obj: string field is not valid UTF-8"), "ReadNetString"))
		return ""
	}
	return string(buf)
}
