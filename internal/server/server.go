// Package server exposes the FAQ service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"supportbot/internal/faq"
	"supportbot/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

// Service is what the handlers call.
type Service interface {
	Answer(ctx context.Context, req faq.ChatRequest) (faq.ChatReply, error)
	Onboard(ctx context.Context, req faq.OnboardRequest) (int64, error)
	Ready(ctx context.Context) error
}

// maxBodyBytes caps request bodies on /chat and /onboard.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	AllowedOrigins  []string
	MaxConnections  int // 0 = unlimited
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Logger          *zap.Logger
}

// Server is the SupportBot HTTP API.
type Server struct {
	svc    Service
	opts   Options
	logger *zap.Logger
	router chi.Router
}

// New builds the router.
func New(svc Service, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{svc: svc, opts: opts, logger: logging.For(opts.Logger, logging.CategoryServer)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Post("/chat", s.handleChat)
	r.Post("/onboard", s.handleOnboard)

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then drains in-flight
// requests for up to ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.opts.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.opts.MaxConnections)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("SupportBot API listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down", zap.Duration("drain", s.opts.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		<-errCh
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ready(r.Context()); err != nil {
		s.logger.Warn("Readiness check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "SupportBot API is running"})
}

// decodeBody reads a size-capped JSON body. It writes the error response
// and returns false when the body is unusable.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return false
	}
	return true
}

type chatBody struct {
	Message             *string  `json:"message"`
	BusinessID          *int64   `json:"business_id"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Message == nil {
		writeError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}
	if body.BusinessID == nil {
		writeError(w, http.StatusUnprocessableEntity, "business_id is required")
		return
	}

	reply, err := s.svc.Answer(r.Context(), faq.ChatRequest{
		Message:    *body.Message,
		BusinessID: *body.BusinessID,
		Threshold:  body.SimilarityThreshold,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type onboardReply struct {
	Message    string `json:"message"`
	BusinessID int64  `json:"business_id"`
}

func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var req faq.OnboardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := s.svc.Onboard(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, onboardReply{Message: "Business onboarded successfully", BusinessID: id})
}

// fail maps service errors to 422 or 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, faq.ErrInvalid) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
