package server

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/wire"
)

// Transport is the byte stream under a session: a TCP connection or a
// websocket adapted to a stream.
type Transport interface {
	io.ReadWriteCloser
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
}

var sessionIDs atomic.Uint64

// Session is one connected client. Reads happen only on the serve goroutine;
// writes may come from any goroutine and are serialized by writeMu, which is
// the only lock a Send takes.
type Session struct {
	id           uint64
	conn         Transport
	codec        wire.Codec
	writeTimeout time.Duration
	limiter      *rate.Limiter
	log          zerolog.Logger

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
}

func newSession(conn Transport, codec wire.Codec, opts Options) *Session {
	id := sessionIDs.Add(1)
	return &Session{
		id:           id,
		conn:         conn,
		codec:        codec,
		writeTimeout: opts.WriteTimeout,
		limiter:      rate.NewLimiter(rate.Limit(opts.MessageRate), opts.MessageBurst),
		log: log.With().
			Uint64("session", id).
			Str("remote", remoteString(conn)).
			Logger(),
	}
}

func (s *Session) ID() uint64 {
	return s.id
}

// Send writes one frame. A frame that cannot be encoded is dropped; a frame
// that cannot be written closes the session so its read loop cleans up.
func (s *Session) Send(msg internal.Message) error {
	if s.closed.Load() {
		return internal.ErrConnectionClosed
	}

	buf, err := s.codec.Encode(msg)
	if err != nil {
		s.log.Error().Err(err).Str("msg", msg.MsgName()).Msg("[Send] encode failed, frame dropped")
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if _, err := s.conn.Write(buf); err != nil {
		s.log.Warn().Err(err).Str("msg", msg.MsgName()).Msg("[Send] write failed, closing session")
		s.Close()
		return errors.Join(internal.ErrConnectionClosed, err)
	}
	return nil
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		_ = s.conn.Close()
	})
}

// serve reads frames until the client goes away or asks to disconnect, then
// removes the session from every room it joined.
func (s *Session) serve(d *Dispatcher) {
	s.log.Info().Msg("[serve] session opened")
	defer func() {
		left := d.registry.LeaveAll(s)
		s.Close()
		s.log.Info().Int("rooms_left", left).Msg("[serve] session closed")
	}()

	for {
		frame, err := s.codec.ReadFrame(s.conn)
		if err != nil {
			switch {
			case errors.Is(err, internal.ErrConnectionClosed), s.closed.Load():
				s.log.Debug().Msg("[serve] client disconnected")
			default:
				s.log.Warn().Err(err).Msg("[serve] read failed")
			}
			return
		}

		req, err := internal.ParseRequest(frame.Name, frame.Body)
		if err != nil {
			s.log.Debug().Err(err).Str("msg", frame.Name).Msg("[serve] frame dropped")
			continue
		}

		if throttled(req) && !s.limiter.Allow() {
			s.log.Warn().Str("msg", frame.Name).Msg("[serve] rate limit exceeded, frame dropped")
			continue
		}

		if !d.Dispatch(s, req) {
			return
		}
	}
}

// throttled reports whether req counts against the session's rate limit.
// Requests that expect a reply or change membership always go through.
func throttled(req internal.Request) bool {
	switch req.(type) {
	case internal.ChatMessageReq, internal.DrawStrokeReq, internal.UndoLastStrokeReq, internal.ClearCanvasReq:
		return true
	}
	return false
}

func remoteString(conn Transport) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
