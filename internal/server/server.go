// Package server is the reference backend: the upload, list, download and
// delete endpoints the client talks to, over a pluggable object store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/constants"
	"github.com/filedrop/filedrop/internal/logging"
	"github.com/filedrop/filedrop/internal/storage"
)

// Server serves one storage.Store over HTTP.
type Server struct {
	cfg    *config.ServerConfig
	store  storage.Store
	logger *logging.Logger
	engine *gin.Engine
}

// New builds the router. cfg.Server.Mode selects the gin mode.
func New(cfg *config.ServerConfig, store storage.Store, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	s := &Server{cfg: cfg, store: store, logger: logger}

	r := gin.New()
	r.Use(RequestLogger(logger), gin.Recovery())
	// Multipart parts above this spill to temp files instead of memory.
	r.MaxMultipartMemory = 8 << 20

	r.POST(constants.UploadPath, s.upload)
	r.GET(constants.ListPath, s.list)
	r.GET(constants.DownloadPath+":name", s.download)
	r.DELETE(constants.DeletePath+":name", s.delete)
	r.GET(constants.HealthPath, s.health)

	s.engine = r
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on cfg.Server.Addr until ctx is done, then shuts down
// gracefully within constants.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-errCh
}
