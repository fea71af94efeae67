package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/dom"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func TestRenderApp_Counter(t *testing.T) {
	r := renderApp(config.New(), counterApp(), false)

	if want := `<div class="counter"><p>Count: 0</p><button>+1</button></div>`; r.html != want {
		t.Errorf("html = %q, want %q", r.html, want)
	}
	if r.frame == nil || len(r.frame.Ops) == 0 {
		t.Fatal("no ops recorded")
	}
	last := r.frame.Ops[len(r.frame.Ops)-1]
	if last.Code != protocol.OpInsertBefore || last.Parent != 1 {
		t.Errorf("last op = %v, want the root inserted into #1", last)
	}
}

func TestRenderApp_SSRMarksRoot(t *testing.T) {
	r := renderApp(config.New(), counterApp(), true)
	if !strings.Contains(r.html, vdom.SSRAttr+`="true"`) {
		t.Errorf("html = %q, want the %s attribute", r.html, vdom.SSRAttr)
	}
}

func TestRenderCmd(t *testing.T) {
	load := func() (*config.Config, error) { return config.New(), nil }
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"counter"}, "<p>Count: 0</p>"},
		{[]string{"todos"}, "<li><span>Write the render function</span><button>x</button></li>"},
		{[]string{"counter", "--frames"}, "CreateElement #2 <div>"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmd := renderCmd(load)
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.want)
			}
		})
	}
}

func TestRenderCmd_PublishToDir(t *testing.T) {
	dir := t.TempDir()
	cmd := renderCmd(func() (*config.Config, error) { return config.New(), nil })
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"counter", "--publish", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	page, err := os.ReadFile(filepath.Join(dir, "counter", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), vdom.SSRAttr) || !strings.Contains(string(page), "<p>Count: 0</p>") {
		t.Errorf("page = %s, want the server-rendered counter", page)
	}
}

func TestRenderCmd_UnknownApp(t *testing.T) {
	cmd := renderCmd(func() (*config.Config, error) { return config.New(), nil })
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"nope"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "counter, todos") {
		t.Errorf("Execute() error = %v, want the list of apps", err)
	}
}

func TestVersionCmd_Short(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version = %q, want %q", got, version)
	}
}

func TestTodosApp_AddAndRemove(t *testing.T) {
	doc := dom.New()
	container := doc.NewElement("div")
	sched := reactive.NewScheduler()
	vm := component.NewApp(todosApp(), component.InstanceOptions{Ops: doc, Scheduler: sched})
	vm.MountInto(container)
	flush := func() {
		t.Helper()
		if !sched.Drain(10) {
			t.Fatal("scheduler did not go idle")
		}
	}

	input := container.Find(dom.ByTag("input"))
	doc.Dispatch(input, "input", "Ship it")
	flush()
	add := container.Find(func(n *dom.Node) bool { return n.Tag == "button" && n.TextContent() == "Add" })
	doc.Dispatch(add, "click")
	flush()

	items := container.FindAll(dom.ByTag("li"))
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if got := items[2].Find(dom.ByTag("span")).TextContent(); got != "Ship it" {
		t.Errorf("new item = %q, want %q", got, "Ship it")
	}
	if got := container.Find(dom.ByTag("p")).TextContent(); got != "3 remaining" {
		t.Errorf("footer = %q, want %q", got, "3 remaining")
	}
	if v, _ := input.Attr("value"); v != "" {
		t.Errorf("input value = %q, want it cleared", v)
	}

	second := items[1]
	doc.Dispatch(items[0].Find(dom.ByTag("button")), "click")
	flush()

	items = container.FindAll(dom.ByTag("li"))
	if len(items) != 2 || items[0] != second {
		t.Errorf("after remove items = %d, first reused = %v; want 2, true", len(items), items[0] == second)
	}
}

func TestServer_Routes(t *testing.T) {
	cfg := config.New()
	srv := httptest.NewServer(newServer(cfg, "counter").routes())
	defer srv.Close()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	code, body := get("/")
	if code != http.StatusOK || !strings.Contains(body, `<div id="app"><div class="counter"`) || !strings.Contains(body, "new WebSocket") {
		t.Errorf("GET / = %d %q", code, body)
	}
	if code, body := get("/healthz"); code != http.StatusOK || body != "OK" {
		t.Errorf("GET /healthz = %d %q", code, body)
	}

	// Open a session and click once so the session metrics move.
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	initial := readFrame(t, conn)
	var button uint64
	for _, op := range initial.Ops {
		if op.Code == protocol.OpAddListener {
			button = op.Node
		}
	}
	ev := &protocol.Frame{Type: protocol.FrameEvent, Payload: protocol.EncodeEvent(&protocol.Event{Seq: 1, Node: button, Name: "click"})}
	if err := conn.WriteMessage(websocket.BinaryMessage, ev.Encode()); err != nil {
		t.Fatal(err)
	}
	update := readFrame(t, conn)
	if len(update.Ops) != 1 || update.Ops[0].Value != "Count: 1" {
		t.Errorf("update ops = %v, want the count text set", update.Ops)
	}

	code, body = get(cfg.Metrics.Path)
	if code != http.StatusOK {
		t.Fatalf("GET %s = %d", cfg.Metrics.Path, code)
	}
	for _, want := range []string{"reactor_active_sessions 1", "reactor_frames_sent_total", "reactor_flushes_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.MutationFrame {
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
	mf, err := protocol.DecodeMutations(f.Payload)
	if err != nil {
		t.Fatalf("DecodeMutations() error = %v", err)
	}
	return mf
}

func TestRunServer_StopsOnCancel(t *testing.T) {
	cfg := config.New()
	cfg.Server.Addr = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, cfg, "counter") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runServer() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not stop")
	}
}

func TestServer_ReloadKeepsAddr(t *testing.T) {
	cfg := config.New()
	cfg.Server.Addr = "127.0.0.1:9999"
	s := newServer(cfg, "counter")

	next := config.New()
	next.Server.Addr = "0.0.0.0:1"
	next.Scheduler.MaxUpdateCount = 7
	s.reload(next)

	got := s.config()
	if got.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("Server.Addr = %q, want the original address", got.Server.Addr)
	}
	if got.Scheduler.MaxUpdateCount != 7 {
		t.Errorf("Scheduler.MaxUpdateCount = %d, want 7", got.Scheduler.MaxUpdateCount)
	}
}
