package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"legenda/internal/caption"
	"legenda/internal/config"
	"legenda/internal/jobs"
	"legenda/internal/logging"
	"legenda/internal/services"
	"legenda/internal/transcribe"
	"legenda/internal/translate"
	"legenda/internal/upload"
)

// Server exposes the captioning pipeline over HTTP.
type Server struct {
	cfg          *config.Config
	logger       *slog.Logger
	materializer *upload.Materializer
	transcriber  *transcribe.Orchestrator
	captioner    *caption.Captioner
	translator   *translate.Translator
	journal      *jobs.Store

	listener net.Listener
	server   *http.Server
}

// Deps bundles the collaborators a Server needs.
type Deps struct {
	Config       *config.Config
	Logger       *slog.Logger
	Materializer *upload.Materializer
	Transcriber  *transcribe.Orchestrator
	Captioner    *caption.Captioner
	Translator   *translate.Translator
	Journal      *jobs.Store
}

// New constructs the API server. The journal is optional; every other
// collaborator is required.
func New(d Deps) (*Server, error) {
	if d.Config == nil || d.Materializer == nil || d.Transcriber == nil || d.Captioner == nil || d.Translator == nil {
		return nil, errors.New("server: missing collaborators")
	}
	logger := d.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &Server{
		cfg:          d.Config,
		logger:       logging.WithComponent(logger, "api-server"),
		materializer: d.Materializer,
		transcriber:  d.Transcriber,
		captioner:    d.Captioner,
		translator:   d.Translator,
		journal:      d.Journal,
	}

	srv.server = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      30 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/transcribe", s.handleTranscribe)
	mux.HandleFunc("/api/transcribe/video", s.handleTranscribeVideo)
	mux.HandleFunc("/api/translate", s.handleTranslate)
	mux.HandleFunc("/api/translate/languages", s.handleLanguages)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/jobs", s.handleJobs)
	mux.HandleFunc("/api/jobs/", s.handleJob)
	return s.withRequestID(mux)
}

// withRequestID tags every request with a correlation identifier and logs
// its outcome timing.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := services.WithRequestID(r.Context(), id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.Debug("request handled",
			logging.String("request_id", id),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("elapsed", time.Since(start)))
	})
}

// Start begins serving on the configured bind address. Shutdown is tied to
// ctx cancellation.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down and closes the listener.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

// writeFailure maps a pipeline error to {error, detail} with the status the
// error taxonomy dictates.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	fields := []any{logging.Error(err)}
	if id, ok := services.RequestIDFromContext(r.Context()); ok {
		fields = append(fields, logging.String("request_id", id))
	}
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Warn("request rejected", fields...)
	}
	s.writeJSON(w, status, map[string]string{
		"error":  services.Label(err),
		"detail": err.Error(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// jobBegin records a pipeline start in the journal when one is configured.
func (s *Server) jobBegin(ctx context.Context, kind, filename string) int64 {
	if s.journal == nil {
		return 0
	}
	id, err := s.journal.Begin(ctx, kind, filename)
	if err != nil {
		s.logger.Warn("job journal insert failed", logging.Error(err))
		return 0
	}
	return id
}

// jobFinish records the pipeline outcome. Journal failures are logged, never
// surfaced; the journal is observational.
func (s *Server) jobFinish(ctx context.Context, id int64, pipelineErr error) {
	if s.journal == nil || id == 0 {
		return
	}
	var err error
	if pipelineErr != nil {
		err = s.journal.Fail(ctx, id, pipelineErr.Error())
	} else {
		err = s.journal.Complete(ctx, id)
	}
	if err != nil {
		s.logger.Warn("job journal update failed", logging.Error(err))
	}
}

