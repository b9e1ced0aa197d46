// Package http is the default concrete Transport: a single JSON
// envelope POSTed to one dispatch path, routed by the envelope's
// COMMAND field rather than one REST verb per path. Grounded on the
// teacher's chord/http_server.go for the net/http server skeleton,
// generalized to use chi for routing and middleware the way specter's
// gateway package does.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"chordhash/chord"
)

// Dispatcher is the peer-side hook this server forwards every decoded
// envelope to. chord.Peer.Dispatch satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req chord.Envelope) chord.Envelope
}

// Server is the HTTP-framed default Transport endpoint: one POST
// path accepting a JSON Envelope and replying with one.
type Server struct {
	logger *zap.Logger
	peer   Dispatcher
	srv    *http.Server
}

// NewServer builds a chi-routed HTTP server bound to addr, dispatching
// every request body through peer.
func NewServer(addr string, peer Dispatcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{logger: logger, peer: peer}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Post("/chord", s.handleEnvelope)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) handleEnvelope(w http.ResponseWriter, r *http.Request) {
	var req chord.Envelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("decoding inbound envelope failed", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := s.peer.Dispatch(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("encoding outbound envelope failed", zap.Error(err))
	}
}

// ListenAndServe blocks serving until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
