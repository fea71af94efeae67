package protocol

import "encoding/binary"

// Encoder builds a payload. Writes never fail.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Reset drops the written bytes and keeps the capacity.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Bytes returns the payload. It aliases the encoder's buffer until the
// next write or Reset.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len reports the payload size.
func (e *Encoder) Len() int { return len(e.buf) }

// PutByte appends b.
func (e *Encoder) PutByte(b byte) { e.buf = append(e.buf, b) }

// WriteUvarint appends v as a varint.
func (e *Encoder) WriteUvarint(v uint64) { e.buf = binary.AppendUvarint(e.buf, v) }

// WriteString appends the length of s as a varint, then s.
func (e *Encoder) WriteString(s string) {
	e.buf = binary.AppendUvarint(e.buf, uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteBool appends a single 0 or 1 byte.
func (e *Encoder) WriteBool(b bool) {
	var v byte
	if b {
		v = 1
	}
	e.buf = append(e.buf, v)
}

// WriteUint32 appends v in network byte order.
func (e *Encoder) WriteUint32(v uint32) { e.buf = binary.BigEndian.AppendUint32(e.buf, v) }
