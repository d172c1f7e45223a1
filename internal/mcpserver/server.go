// Package mcpserver exposes the career pilot workflow as MCP tools over streamable HTTP.
package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonathan/career-pilot/internal/logging"
	"github.com/jonathan/career-pilot/internal/pipeline"
)

const (
	implementationName = "career-pilot"
	// StreamPath is where the streamable HTTP handler is mounted
	StreamPath = "/mcp/stream"
)

// Server wraps an MCP SDK server bound to one pipeline controller
type Server struct {
	controller *pipeline.Controller
	logger     *logging.Logger
	mcp        *mcp.Server
}

// New builds the MCP server and registers every tool
func New(controller *pipeline.Controller, logger *logging.Logger, version string) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if version == "" {
		version = "dev"
	}
	s := &Server{
		controller: controller,
		logger:     logger.With("component", "mcp"),
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    implementationName,
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying SDK server
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Handler returns the HTTP handler serving the MCP stream and a health probe
func (s *Server) Handler() http.Handler {
	stream := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(StreamPath, stream)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("MCP HTTP server listening", "addr", addr, "path", StreamPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("MCP HTTP server shutdown with error", "error", err)
		return err
	}
	s.logger.Info("MCP HTTP server shutdown complete")
	return nil
}
