package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func clickCounter() *component.Options {
	return &component.Options{
		Name: "ClickCounter",
		Data: func(*component.Instance) map[string]any { return map[string]any{"count": 0} },
		Render: func(vm *component.Instance, h component.CreateElement) *vdom.VNode {
			return h("button",
				vdom.OnClick(func(...any) { vm.Set("count", vm.Get("count").(int)+1) }),
				fmt.Sprint(vm.Get("count")),
			)
		},
	}
}

// dialSession starts a server running a session for root and returns a
// connected client.
func dialSession(t *testing.T, root *component.Options, opts ...Option) (*websocket.Conn, <-chan error) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	done := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			done <- err
			return
		}
		done <- NewSession(conn, root, opts...).Run(context.Background())
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, done
}

func readMutations(t *testing.T, conn *websocket.Conn) *protocol.MutationFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if f.Type != protocol.FrameMutations {
		t.Fatalf("frame type = %v, want %v", f.Type, protocol.FrameMutations)
	}
	mf, err := protocol.DecodeMutations(f.Payload)
	if err != nil {
		t.Fatalf("DecodeMutations() error = %v", err)
	}
	return mf
}

func sendEvent(t *testing.T, conn *websocket.Conn, ev *protocol.Event) {
	t.Helper()
	f := &protocol.Frame{Type: protocol.FrameEvent, Payload: protocol.EncodeEvent(ev)}
	if err := conn.WriteMessage(websocket.BinaryMessage, f.Encode()); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func TestSession_ClickUpdatesText(t *testing.T) {
	conn, done := dialSession(t, clickCounter())

	initial := readMutations(t, conn)
	var button, text uint64
	for _, op := range initial.Ops {
		switch op.Code {
		case protocol.OpAddListener:
			button = op.Node
		case protocol.OpCreateText:
			text = op.Node
		}
	}
	if button == 0 || text == 0 {
		t.Fatalf("initial ops = %v, want a listener and a text node", initial.Ops)
	}
	last := initial.Ops[len(initial.Ops)-1]
	if last.Code != protocol.OpInsertBefore || last.Parent != RootID {
		t.Errorf("last op = %v, want insertion into the root", last)
	}

	sendEvent(t, conn, &protocol.Event{Seq: 1, Node: button, Name: "click"})

	update := readMutations(t, conn)
	want := protocol.Op{Code: protocol.OpSetText, Node: text, Value: "1"}
	if len(update.Ops) != 1 || update.Ops[0] != want {
		t.Errorf("update ops = %v, want [%v]", update.Ops, want)
	}
	if update.Seq != initial.Seq+1 {
		t.Errorf("Seq = %d, want %d", update.Seq, initial.Seq+1)
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after client close")
	}
}

func TestSession_BadFrameReportsError(t *testing.T) {
	conn, _ := dialSession(t, clickCounter())
	readMutations(t, conn)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x09, 0, 0, 0, 0}); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil || f.Type != protocol.FrameError {
		t.Fatalf("frame = %+v, %v; want an error frame", f, err)
	}
	m, err := protocol.DecodeError(f.Payload)
	if err != nil {
		t.Fatalf("DecodeError() error = %v", err)
	}
	if m.Code != "P001" || m.Fatal {
		t.Errorf("error = %+v, want non-fatal P001", m)
	}
}

func TestSession_EventWithoutListenerIsIgnored(t *testing.T) {
	conn, _ := dialSession(t, clickCounter())
	initial := readMutations(t, conn)

	sendEvent(t, conn, &protocol.Event{Seq: 1, Node: 999, Name: "click"})

	// The session keeps serving: a real click still updates.
	var button uint64
	for _, op := range initial.Ops {
		if op.Code == protocol.OpAddListener {
			button = op.Node
		}
	}
	sendEvent(t, conn, &protocol.Event{Seq: 2, Node: button, Name: "click"})
	if mf := readMutations(t, conn); len(mf.Ops) != 1 || mf.Ops[0].Value != "1" {
		t.Errorf("ops = %v, want one text update to 1", mf.Ops)
	}
}

type flushCounter struct {
	finished chan int
}

func (f *flushCounter) FlushStarted(int) {}

func (f *flushCounter) FlushFinished(ran int, _ time.Duration) {
	select {
	case f.finished <- ran:
	default:
	}
}

func (f *flushCounter) LoopDetected(*reactive.Watcher) {}

func TestSession_ForwardsFlushEvents(t *testing.T) {
	obs := &flushCounter{finished: make(chan int, 1)}
	conn, _ := dialSession(t, clickCounter(), WithFlushObserver(obs))
	initial := readMutations(t, conn)

	var button uint64
	for _, op := range initial.Ops {
		if op.Code == protocol.OpAddListener {
			button = op.Node
		}
	}
	select {
	case <-obs.finished:
	default:
	}
	sendEvent(t, conn, &protocol.Event{Seq: 1, Node: button, Name: "click"})
	readMutations(t, conn)

	select {
	case ran := <-obs.finished:
		if ran != 1 {
			t.Errorf("FlushFinished ran = %d, want 1", ran)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("FlushFinished was not forwarded")
	}
}
