package remote

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/dom"
	"github.com/vango-dev/reactor/pkg/loop"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// RootID is the id of the mount container. The client maps it to the
// element it mirrors the tree into.
const RootID = 1

// Session errors.
var (
	ErrSessionClosed = errors.New("remote: session closed")
	ErrSendQueueFull = errors.New("remote: send queue full")
)

// Config holds session timeouts.
type Config struct {
	// ReadTimeout closes the session when nothing, not even a pong,
	// arrives for this long.
	ReadTimeout time.Duration

	WriteTimeout time.Duration

	// HeartbeatInterval is the websocket ping period. It must be shorter
	// than ReadTimeout.
	HeartbeatInterval time.Duration

	// SendQueueSize bounds the frames waiting to be written.
	SendQueueSize int
}

// DefaultConfig returns the defaults used by NewSession.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 20 * time.Second,
		SendQueueSize:     64,
	}
}

// Observer receives session activity. *telemetry.Metrics implements it.
type Observer interface {
	SessionStarted()
	SessionEnded()
	FrameSent(ops int)
	ProtocolError(err error)
}

// Option configures a Session.
type Option func(*Session)

// WithConfig replaces the timeouts.
func WithConfig(c Config) Option {
	return func(s *Session) { s.config = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithFlushObserver forwards scheduler flush events to o, typically a
// telemetry collector.
func WithFlushObserver(o reactive.FlushObserver) Option {
	return func(s *Session) { s.observer = o }
}

// WithObserver reports session activity to o.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.stats = o }
}

// WithSchedulerOptions passes options to the session's scheduler, such as
// reactive.WithMaxUpdateCount.
func WithSchedulerOptions(opts ...reactive.SchedulerOption) Option {
	return func(s *Session) { s.schedOpts = append(s.schedOpts, opts...) }
}

// WithPatcherOptions passes options to the session's patcher.
func WithPatcherOptions(opts ...vdom.PatcherOption) Option {
	return func(s *Session) { s.patcherOpts = append(s.patcherOpts, opts...) }
}

// Session mirrors one component app onto a websocket client. The app
// lives on its own loop; every flush that changed the tree is sent as one
// mutation frame, and client events are dispatched on the loop.
type Session struct {
	conn   *websocket.Conn
	root   *component.Options
	config Config
	logger *slog.Logger

	observer    reactive.FlushObserver
	stats       Observer
	patcherOpts []vdom.PatcherOption
	schedOpts   []reactive.SchedulerOption

	loop *loop.Loop
	doc  *dom.Document
	rec  *Recorder
	app  *component.Instance

	send    chan []byte
	done    chan struct{}
	closed  atomic.Bool
	started atomic.Bool
	once    sync.Once

	framesSent atomic.Uint64
	eventsRecv atomic.Uint64
}

// NewSession creates a session for conn rendering root. Nothing happens
// until Run.
func NewSession(conn *websocket.Conn, root *component.Options, opts ...Option) *Session {
	s := &Session{
		conn:   conn,
		root:   root,
		config: DefaultConfig(),
		logger: slog.Default().With("component", "session"),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.send = make(chan []byte, max(s.config.SendQueueSize, 1))
	s.loop = loop.New(loop.WithLogger(s.logger))
	s.doc = dom.New()
	s.rec = NewRecorder(s.doc)
	return s
}

// Run mounts the app, sends the first frame and serves the connection
// until the client goes away, ctx is cancelled or Close is called.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- s.loop.Run(ctx) }()

	if err := s.loop.Do(ctx, s.mount); err != nil {
		s.Close()
		return err
	}
	if s.stats != nil {
		s.stats.SessionStarted()
	}
	s.started.Store(true)

	go s.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	s.readLoop()

	s.Close()
	<-s.loop.Done()
	err := <-loopErr
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) mount() {
	container := s.doc.NewElement("div")
	if id := s.rec.ID(container); id != RootID {
		s.logger.Error("unexpected root id", "id", id)
	}
	opts := []reactive.SchedulerOption{reactive.WithLogger(s.logger)}
	opts = append(opts, s.schedOpts...)
	// The ticker and observer are the session's own.
	opts = append(opts, reactive.WithTicker(s.loop), reactive.WithFlushObserver(flushHook{s}))
	sched := reactive.NewScheduler(opts...)
	s.app = component.NewApp(s.root, component.InstanceOptions{
		Ops:            s.rec,
		PatcherOptions: append(slices.Clip(s.patcherOpts), vdom.AddModules(s.rec.Module())),
		Scheduler:      sched,
		Post: func(fn func()) {
			if err := s.loop.Post(fn); err != nil {
				s.logger.Warn("post failed", "error", err)
			}
		},
		Logger: s.logger,
	})
	s.app.MountInto(container)
	s.sendPending()
}

// flushHook sends the mutations of each flush and forwards flush events.
type flushHook struct{ s *Session }

func (h flushHook) FlushStarted(pending int) {
	if h.s.observer != nil {
		h.s.observer.FlushStarted(pending)
	}
}

func (h flushHook) FlushFinished(ran int, elapsed time.Duration) {
	if h.s.observer != nil {
		h.s.observer.FlushFinished(ran, elapsed)
	}
	h.s.sendPending()
}

func (h flushHook) LoopDetected(w *reactive.Watcher) {
	if h.s.observer != nil {
		h.s.observer.LoopDetected(w)
	}
}

// sendPending queues the recorded mutations, if any, as one frame.
func (s *Session) sendPending() {
	mf := s.rec.Drain()
	if mf == nil {
		return
	}
	frame := &protocol.Frame{Type: protocol.FrameMutations, Payload: protocol.EncodeMutations(mf)}
	if err := s.queue(frame.Encode()); err != nil {
		s.logger.Error("dropping frame", "seq", mf.Seq, "ops", len(mf.Ops), "error", err)
		s.Close()
		return
	}
	if s.stats != nil {
		s.stats.FrameSent(len(mf.Ops))
	}
}

func (s *Session) queue(msg []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.send <- msg:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrSendQueueFull
	}
}

// readLoop reads client frames until the connection fails.
func (s *Session) readLoop() {
	s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.protocolError(err)
			continue
		}
		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEvent(frame.Payload)
		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

func (s *Session) handleEvent(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Warn("event decode error", "error", err)
		s.protocolError(err)
		return
	}
	s.eventsRecv.Add(1)
	args := make([]any, len(ev.Args))
	for i, a := range ev.Args {
		args[i] = a
	}
	if err := s.loop.Post(func() {
		if s.rec.Dispatch(ev.Node, ev.Name, args...) == 0 {
			s.logger.Debug("event without listener", "node", ev.Node, "event", ev.Name)
		}
	}); err != nil {
		s.protocolError(err)
	}
}

// protocolError counts err and reports it to the client.
func (s *Session) protocolError(err error) {
	if s.stats != nil {
		s.stats.ProtocolError(err)
	}
	s.sendError("P001", err.Error())
}

func (s *Session) sendError(code, message string) {
	payload := protocol.EncodeError(&protocol.ErrorMessage{Code: code, Message: message})
	frame := &protocol.Frame{Type: protocol.FrameError, Payload: payload}
	if err := s.queue(frame.Encode()); err != nil {
		s.logger.Debug("error frame not sent", "error", err)
	}
}

// writeLoop is the only writer of the connection. It sends queued frames
// and heartbeats.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				s.logger.Error("write error", "error", err)
				s.Close()
				return
			}
			s.framesSent.Add(1)

		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Error("ping error", "error", err)
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

// Close destroys the app, stops the loop and closes the connection. It is
// safe to call more than once and from any goroutine.
func (s *Session) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.done)

		if s.app != nil && !s.loop.OnLoop() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			if err := s.loop.Do(ctx, s.app.Destroy); err != nil && !errors.Is(err, loop.ErrClosed) {
				s.logger.Warn("destroy failed", "error", err)
			}
			cancel()
		}
		s.loop.Stop()

		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()

		if s.stats != nil && s.started.Load() {
			s.stats.SessionEnded()
		}
		s.logger.Info("session closed",
			"frames_sent", s.framesSent.Load(),
			"events", s.eventsRecv.Load())
	})
}

// Done is closed once Close has run.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
