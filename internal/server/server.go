package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/game"
	"github.com/scythe504/sketchroom/internal/wire"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	HeaderLen    int
	MaxBodyLen   int
	WriteTimeout time.Duration
	MessageRate  float64
	MessageBurst int
	Version      string
}

// HistorySource serves the archive of finished games over HTTP.
type HistorySource interface {
	RecentGames(ctx context.Context, limit int) ([]internal.GameResult, error)
}

type Server struct {
	registry   *game.Registry
	dispatcher *Dispatcher
	codec      wire.Codec
	opts       Options
	history    HistorySource
	startedAt  time.Time

	mu       sync.Mutex
	sessions map[uint64]*Session
	closing  bool
	wg       sync.WaitGroup
}

// NewServer wires the transports to registry. history may be nil.
func NewServer(registry *game.Registry, opts Options, history HistorySource) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = internal.DefaultWriteTimeout
	}
	if opts.MessageRate <= 0 {
		opts.MessageRate = 30
	}
	if opts.MessageBurst <= 0 {
		opts.MessageBurst = 60
	}
	return &Server{
		registry:   registry,
		dispatcher: NewDispatcher(registry),
		codec:      wire.NewCodec(opts.HeaderLen, opts.MaxBodyLen),
		opts:       opts,
		history:    history,
		startedAt:  time.Now(),
		sessions:   make(map[uint64]*Session),
	}
}

// Run serves the game protocol on tcpAddr and, unless httpAddr is empty,
// HTTP and websocket clients on httpAddr. It returns once ctx is cancelled
// or a listener fails, after every session has been closed.
func (s *Server) Run(ctx context.Context, tcpAddr, httpAddr string) error {
	ln, err := net.Listen("tcp", tcpAddr)
	if err != nil {
		return err
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("[Run] game protocol listening")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	go func() { errs <- s.ServeTCP(ctx, ln) }()

	var httpSrv *http.Server
	if httpAddr != "" {
		httpSrv = &http.Server{
			Addr:              httpAddr,
			Handler:           s.RegisterRoutes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Str("addr", httpAddr).Msg("[Run] http listening")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
				return
			}
			errs <- nil
		}()
	}

	select {
	case <-ctx.Done():
	case err = <-errs:
	}
	cancel()

	if httpSrv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("[Run] http shutdown")
		}
	}
	s.Shutdown()
	return err
}

// ServeTCP accepts connections until ctx is done or ln fails.
func (s *Server) ServeTCP(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.Handle(conn)
		}()
	}
}

// Handle runs a session over conn and blocks until it ends.
func (s *Server) Handle(conn Transport) {
	sess := newSession(conn, s.codec, s.opts)
	if !s.track(sess) {
		sess.Close()
		return
	}
	defer s.untrack(sess)
	sess.serve(s.dispatcher)
}

// Shutdown closes every session, waits for their cleanup and closes the
// registry.
func (s *Server) Shutdown() {
	s.mu.Lock()
	s.closing = true
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
	s.wg.Wait()
	s.registry.Close()
	log.Info().Int("sessions", len(sessions)).Msg("[Shutdown] server stopped")
}

func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) track(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[sess.ID()] = sess
	return true
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess.ID())
}
