package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	// MaxStringLen is the longest string a decoder accepts.
	MaxStringLen = 1 << 20

	// MaxCount is the longest list a decoder accepts.
	MaxCount = 100_000
)

var (
	ErrVarintOverflow = errors.New("protocol: varint overflow")
	ErrStringTooLarge = errors.New("protocol: string exceeds limit")
	ErrCountTooLarge  = errors.New("protocol: count exceeds limit")
	ErrInvalidBool    = errors.New("protocol: invalid boolean")
)

// Decoder consumes a payload produced by an Encoder. Every read that runs
// past the end returns io.ErrUnexpectedEOF.
type Decoder struct {
	rest []byte
}

// NewDecoder returns a decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{rest: data}
}

// Remaining reports the unread byte count.
func (d *Decoder) Remaining() int { return len(d.rest) }

func (d *Decoder) take(n int) ([]byte, error) {
	if n > len(d.rest) {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.rest[:n:n]
	d.rest = d.rest[n:]
	return b, nil
}

// ReadByte consumes one byte.
func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUvarint consumes a varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.rest)
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, ErrVarintOverflow
	}
	d.rest = d.rest[n:]
	return v, nil
}

// ReadString consumes a string written by WriteString. The length is
// checked against MaxStringLen before the copy.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > MaxStringLen {
		return "", ErrStringTooLarge
	}
	if n > uint64(len(d.rest)) {
		return "", io.ErrUnexpectedEOF
	}
	b, _ := d.take(int(n))
	return string(b), nil
}

// ReadBool consumes a byte written by WriteBool. Anything but 0 or 1 is
// ErrInvalidBool.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	if b > 1 {
		return false, ErrInvalidBool
	}
	return b == 1, nil
}

// ReadUint32 consumes a big-endian uint32.
func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadCount consumes a list length. Items are at least one byte long, so
// a count above Remaining means the payload is truncated.
func (d *Decoder) ReadCount() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > MaxCount {
		return 0, ErrCountTooLarge
	}
	if n > uint64(len(d.rest)) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(n), nil
}
