package protocol

import (
	"errors"
	"fmt"
)

// OpCode is the kind of a node mutation.
type OpCode uint8

const (
	OpCreateElement  OpCode = 0x01 // Node, Tag
	OpCreateText     OpCode = 0x02 // Node, Value
	OpCreateComment  OpCode = 0x03 // Node, Value
	OpInsertBefore   OpCode = 0x04 // Parent, Node, Ref (0 appends)
	OpRemoveChild    OpCode = 0x05 // Parent, Node
	OpSetText        OpCode = 0x06 // Node, Value
	OpSetAttr        OpCode = 0x07 // Node, Key, Value
	OpRemoveAttr     OpCode = 0x08 // Node, Key
	OpSetStyle       OpCode = 0x09 // Node, Key, Value ("" removes)
	OpAddListener    OpCode = 0x0A // Node, Key
	OpRemoveListener OpCode = 0x0B // Node, Key
	OpRelease        OpCode = 0x0C // Node; the id is never used again
)

var opNames = map[OpCode]string{
	OpCreateElement:  "CreateElement",
	OpCreateText:     "CreateText",
	OpCreateComment:  "CreateComment",
	OpInsertBefore:   "InsertBefore",
	OpRemoveChild:    "RemoveChild",
	OpSetText:        "SetText",
	OpSetAttr:        "SetAttr",
	OpRemoveAttr:     "RemoveAttr",
	OpSetStyle:       "SetStyle",
	OpAddListener:    "AddListener",
	OpRemoveListener: "RemoveListener",
	OpRelease:        "Release",
}

// String implements fmt.Stringer.
func (c OpCode) String() string {
	if n, ok := opNames[c]; ok {
		return n
	}
	return "Unknown"
}

// ErrUnknownOp is returned when decoding an unknown op code.
var ErrUnknownOp = errors.New("protocol: unknown op code")

// Op is one mutation of the client's node tree. Nodes are addressed by
// ids the server assigned when they were created; id 0 is "none".
type Op struct {
	Code   OpCode
	Node   uint64
	Parent uint64
	Ref    uint64
	Tag    string
	Key    string
	Value  string
}

// String implements fmt.Stringer.
func (op Op) String() string {
	switch op.Code {
	case OpCreateElement:
		return fmt.Sprintf("%s #%d <%s>", op.Code, op.Node, op.Tag)
	case OpCreateText, OpCreateComment, OpSetText:
		return fmt.Sprintf("%s #%d %q", op.Code, op.Node, op.Value)
	case OpInsertBefore:
		return fmt.Sprintf("%s #%d in #%d before #%d", op.Code, op.Node, op.Parent, op.Ref)
	case OpRemoveChild:
		return fmt.Sprintf("%s #%d from #%d", op.Code, op.Node, op.Parent)
	case OpSetAttr, OpSetStyle:
		return fmt.Sprintf("%s #%d %s=%q", op.Code, op.Node, op.Key, op.Value)
	case OpRelease:
		return fmt.Sprintf("%s #%d", op.Code, op.Node)
	}
	return fmt.Sprintf("%s #%d %s", op.Code, op.Node, op.Key)
}

// MutationFrame is the batch of mutations produced by one scheduler
// flush. Seq increases by one per frame on a session.
type MutationFrame struct {
	Seq uint64
	Ops []Op
}

// EncodeMutations encodes mf as a frame payload.
func EncodeMutations(mf *MutationFrame) []byte {
	e := NewEncoder()
	EncodeMutationsTo(e, mf)
	return e.Bytes()
}

// EncodeMutationsTo encodes mf using e.
func EncodeMutationsTo(e *Encoder, mf *MutationFrame) {
	e.WriteUvarint(mf.Seq)
	e.WriteUvarint(uint64(len(mf.Ops)))
	for i := range mf.Ops {
		encodeOp(e, &mf.Ops[i])
	}
}

func encodeOp(e *Encoder, op *Op) {
	e.PutByte(byte(op.Code))
	e.WriteUvarint(op.Node)
	switch op.Code {
	case OpCreateElement:
		e.WriteString(op.Tag)
	case OpCreateText, OpCreateComment, OpSetText:
		e.WriteString(op.Value)
	case OpInsertBefore:
		e.WriteUvarint(op.Parent)
		e.WriteUvarint(op.Ref)
	case OpRemoveChild:
		e.WriteUvarint(op.Parent)
	case OpSetAttr, OpSetStyle:
		e.WriteString(op.Key)
		e.WriteString(op.Value)
	case OpRemoveAttr, OpAddListener, OpRemoveListener:
		e.WriteString(op.Key)
	}
}

// DecodeMutations decodes a payload written by EncodeMutations.
func DecodeMutations(data []byte) (*MutationFrame, error) {
	return DecodeMutationsFrom(NewDecoder(data))
}

// DecodeMutationsFrom decodes a MutationFrame from d.
func DecodeMutationsFrom(d *Decoder) (*MutationFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	n, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	mf := &MutationFrame{Seq: seq, Ops: make([]Op, n)}
	for i := range mf.Ops {
		if err := decodeOp(d, &mf.Ops[i]); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return mf, nil
}

func decodeOp(d *Decoder, op *Op) (err error) {
	b, err := d.ReadByte()
	if err != nil {
		return err
	}
	op.Code = OpCode(b)
	if op.Node, err = d.ReadUvarint(); err != nil {
		return err
	}
	switch op.Code {
	case OpCreateElement:
		op.Tag, err = d.ReadString()
	case OpCreateText, OpCreateComment, OpSetText:
		op.Value, err = d.ReadString()
	case OpInsertBefore:
		if op.Parent, err = d.ReadUvarint(); err != nil {
			return err
		}
		op.Ref, err = d.ReadUvarint()
	case OpRemoveChild:
		op.Parent, err = d.ReadUvarint()
	case OpSetAttr, OpSetStyle:
		if op.Key, err = d.ReadString(); err != nil {
			return err
		}
		op.Value, err = d.ReadString()
	case OpRemoveAttr, OpAddListener, OpRemoveListener:
		op.Key, err = d.ReadString()
	case OpRelease:
	default:
		return ErrUnknownOp
	}
	return err
}
