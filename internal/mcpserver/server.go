// Package mcpserver exposes startup evaluation over the Model Context
// Protocol so assistants can evaluate pitches, browse stored evaluations and
// score ad-hoc metrics.
package mcpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"dealflow/internal/logging"
	"dealflow/internal/pipeline"
	"dealflow/internal/startup"
	"dealflow/internal/store"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Transport names accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Server wraps the SDK server with the evaluation collaborators.
type Server struct {
	MCPServer *sdkmcp.Server

	runner   *pipeline.Runner
	recorder *pipeline.Recorder
	store    *store.Store
	prefs    startup.InvestorPreferences
	logger   *slog.Logger
}

// New registers every tool. recorder and st may be nil, in which case
// evaluations are not persisted and the store-backed tools report an error.
func New(runner *pipeline.Runner, recorder *pipeline.Recorder, st *store.Store, prefs startup.InvestorPreferences, logger *slog.Logger) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{
			Name:    "dealflow",
			Version: Version,
		}, nil),
		runner:   runner,
		recorder: recorder,
		store:    st,
		prefs:    prefs,
		logger:   logging.NewComponentLogger(logger, "mcp"),
	}

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "evaluate_startup",
		Description: "Run the full evaluation pipeline on a pitch document path, a pitch video URL or a structured form, and return the memo",
	}, s.evaluateStartup)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_evaluations",
		Description: "List stored evaluations, newest first, optionally filtered by status (completed, failed, needs_review)",
	}, s.listEvaluations)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_deal_note",
		Description: "Return the markdown deal note of a stored evaluation by ID or unique ID prefix",
	}, s.getDealNote)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "score_metrics",
		Description: "Score raw metrics with the four-segment combiner and return segment scores, confidence, curation decision and investor alignment",
	}, s.scoreMetrics)

	return s
}

// Serve runs the server on the named transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case "", TransportStdio:
		s.logger.Info("mcp server starting", logging.String("transport", TransportStdio))
		return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
	case TransportHTTP:
		return s.serveHTTP(ctx, addr)
	default:
		return errors.New("unknown transport " + transport + " (use stdio or http)")
	}
}

// Handler returns the streamable HTTP handler.
func (s *Server) Handler() http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return s.MCPServer
	}, nil)
}

func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening",
			logging.String("transport", TransportHTTP),
			logging.String("addr", addr),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
