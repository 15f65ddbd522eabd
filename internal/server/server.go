// Package server exposes a studio session over HTTP and pushes every state
// change to websocket clients.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/taigrr/avatarfit/internal/config"
	"github.com/taigrr/avatarfit/internal/studio"
)

// Server serves one studio session.
type Server struct {
	session *studio.Session
	cfg     *config.Config
	log     *zap.Logger
	mux     *http.ServeMux

	upgrader     websocket.Upgrader
	clients      map[*websocket.Conn]bool
	clientsMutex sync.Mutex
	startOnce    sync.Once
}

// New creates a server for session. A nil log discards output.
func New(session *studio.Session, cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		session: session,
		cfg:     cfg,
		log:     log.Named("server"),
		mux:     http.NewServeMux(),
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/avatar", s.handleUpload(studio.SlotAvatar))
	s.mux.HandleFunc("POST /api/clothing", s.handleUpload(studio.SlotClothing))
	s.mux.HandleFunc("POST /api/color", s.handleColor)
	s.mux.HandleFunc("POST /api/visibility", s.handleVisibility)
	s.mux.HandleFunc("POST /api/reset", s.handleReset)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/palette", s.handlePalette)
	s.mux.HandleFunc("GET /api/snapshot.png", s.handleSnapshot)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the HTTP handler. Call Start to enable websocket pushes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start forwards session changes to websocket clients until ctx is done.
// It is safe to call more than once.
func (s *Server) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		states, cancel := s.session.Subscribe()
		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					s.closeClients()
					return
				case st, ok := <-states:
					if !ok {
						return
					}
					s.broadcast(st)
				}
			}
		}()
	})
}

// ListenAndServe serves on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
