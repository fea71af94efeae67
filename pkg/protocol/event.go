package protocol

// Event is a DOM event the client observed on a node that has a listener.
// Args carry event details as strings, such as the value of an input.
type Event struct {
	Seq  uint64
	Node uint64
	Name string
	Args []string
}

// EncodeEvent encodes ev as a frame payload.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteUvarint(ev.Node)
	e.WriteString(ev.Name)
	e.WriteUvarint(uint64(len(ev.Args)))
	for _, a := range ev.Args {
		e.WriteString(a)
	}
	return e.Bytes()
}

// DecodeEvent decodes a payload written by EncodeEvent.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev := &Event{}
	var err error
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Node, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	n, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		ev.Args = make([]string, n)
		for i := range ev.Args {
			if ev.Args[i], err = d.ReadString(); err != nil {
				return nil, err
			}
		}
	}
	return ev, nil
}

// ErrorMessage reports a failure to the peer. Code is one of the
// internal/errors codes when the error came from the engine.
type ErrorMessage struct {
	Code    string
	Message string
	Fatal   bool
}

// EncodeError encodes m as a frame payload.
func EncodeError(m *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(m.Code)
	e.WriteString(m.Message)
	e.WriteBool(m.Fatal)
	return e.Bytes()
}

// DecodeError decodes a payload written by EncodeError.
func DecodeError(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	m := &ErrorMessage{}
	var err error
	if m.Code, err = d.ReadString(); err != nil {
		return nil, err
	}
	if m.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if m.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return m, nil
}
