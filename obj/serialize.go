package obj

import (
	"io"
	"fmt"
	"halftwo/mangos/xerr"
)

// Serializer and Deserializer are the accumulate-error binary
// writer/reader pair every wire-format method in this package builds
// on: once Err is set, all further writes/reads become no-ops, so a
// caller only has to check it once at the end of a value's Bytes()/
// FromBytes() method rather than after every field.

type Serializer struct {
	W   io.Writer
	N   int
	Err error
}

func NewSerializer(w io.Writer) *Serializer {
	return &Serializer{W: w}
}

func (s *Serializer) SetError(err error) {
	if s.Err == nil {
		s.Err = err
	}
}

func (s *Serializer) Write(data []byte) {
	if s.Err == nil && len(data) > 0 {
		var n int
		n, s.Err = s.W.Write(data)
		s.N += n
		if s.Err == nil && n != len(data) {
			s.Err = xerr.Trace(fmt.Errorf("Write less than expected data"))
		}
	}
}

func (s *Serializer) WriteByte(b byte) {
	s.Write([]byte{b})
}

type Deserializer struct {
	R   io.Reader
	N   int
	Err error
}

func NewDeserializer(r io.Reader) *Deserializer {
	return &Deserializer{R: r}
}

func (d *Deserializer) SetError(err error) {
	if d.Err == nil {
		d.Err = err
	}
}

func (d *Deserializer) Read(data []byte) {
	if d.Err == nil && len(data) > 0 {
		var n int
		n, d.Err = io.ReadFull(d.R, data)
		d.N += n
		if d.Err == nil && n != len(data) {
			d.Err = xerr.Trace(fmt.Errorf("Read less than expected data"))
		}
	}
}

func (d *Deserializer) ReadByte() byte {
	var b [1]byte
	d.Read(b[:])
	return b[0]
}
