package devorigin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server manages the HTTP listener of the origin.
type Server struct {
	http     *http.Server
	listener net.Listener
	hub      *Hub
	logger   *zap.Logger
}

// NewServer binds addr. Use ":0" to pick a free port.
func NewServer(p Params, handler http.Handler, hub *Hub, logger *zap.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", p.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", p.Addr, err)
	}
	return &Server{
		http: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: listener,
		hub:      hub,
		logger:   logger,
	}, nil
}

// URL returns the origin base URL clients should use.
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String()
}

// Start begins serving requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("origin listening", zap.String("url", s.URL()))
	err := s.http.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops accepting requests, then closes every socket.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("origin stopping")
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Warn("shutdown", zap.Error(err))
	}
	s.hub.Close()
}
