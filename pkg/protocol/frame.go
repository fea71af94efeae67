package protocol

import (
	"errors"
	"io"
)

// FrameHeaderSize is the size of the frame header: one type byte and a
// big-endian uint32 payload length.
const FrameHeaderSize = 5

// MaxPayloadSize bounds a frame payload.
const MaxPayloadSize = 16 << 20

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FrameMutations FrameType = 0x01 // server to client: MutationFrame
	FrameEvent     FrameType = 0x02 // client to server: Event
	FrameError     FrameType = 0x03 // either direction: ErrorMessage
)

// String implements fmt.Stringer.
func (ft FrameType) String() string {
	switch ft {
	case FrameMutations:
		return "Mutations"
	case FrameEvent:
		return "Event"
	case FrameError:
		return "Error"
	}
	return "Unknown"
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is a typed payload.
//
//	┌────────────┬──────────────────────────────┬─────────────┐
//	│ Type (1)   │ Payload length (4, big-end.) │ Payload     │
//	└────────────┴──────────────────────────────┴─────────────┘
type Frame struct {
	Type    FrameType
	Payload []byte
}

// Encode returns the frame with its header.
func (f *Frame) Encode() []byte {
	e := &Encoder{buf: make([]byte, 0, FrameHeaderSize+len(f.Payload))}
	e.PutByte(byte(f.Type))
	e.WriteUint32(uint32(len(f.Payload)))
	e.buf = append(e.buf, f.Payload...)
	return e.buf
}

// DecodeFrame decodes one complete frame. Trailing bytes are an error.
func DecodeFrame(data []byte) (*Frame, error) {
	d := NewDecoder(data)
	ft, length, err := readHeader(d)
	if err != nil {
		return nil, err
	}
	if uint64(length) != uint64(d.Remaining()) {
		return nil, io.ErrUnexpectedEOF
	}
	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:])
	return &Frame{Type: ft, Payload: payload}, nil
}

func readHeader(d *Decoder) (FrameType, uint32, error) {
	b, err := d.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	ft := FrameType(b)
	if ft.String() == "Unknown" {
		return 0, 0, ErrInvalidFrameType
	}
	length, err := d.ReadUint32()
	if err != nil {
		return 0, 0, err
	}
	if length > MaxPayloadSize {
		return 0, 0, ErrFrameTooLarge
	}
	return ft, length, nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	ft, length, err := readHeader(NewDecoder(header))
	if err != nil {
		return nil, err
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return &Frame{Type: ft, Payload: payload}, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}
