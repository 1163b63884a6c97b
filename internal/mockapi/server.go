package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/sagapi"
)

const (
	maxBodyBytes      = 1 << 20
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server routes the mock API onto a Store.
type Server struct {
	store   *Store
	logger  *zap.Logger
	metrics *Metrics
	started time.Time
	now     func() time.Time
}

// NewServer builds a Server. A nil logger disables logging.
func NewServer(store *Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:   store,
		logger:  logger,
		metrics: NewMetrics(),
		started: time.Now(),
		now:     time.Now,
	}
}

// Handler returns the routed API with permissive CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.metrics.wrap("status", s.handleStatus))
	mux.HandleFunc("GET /api/live", s.metrics.wrap("live", s.handleLive))
	mux.HandleFunc("GET /api/events", s.metrics.wrap("events", s.handleEvents))
	mux.HandleFunc("POST /api/event", s.metrics.wrap("event", s.handleEvent))
	mux.HandleFunc("POST /api/event/comment", s.metrics.wrap("comment", s.handleComment))
	mux.HandleFunc("GET /api/config", s.metrics.wrap("config", s.handleGetConfig))
	mux.HandleFunc("POST /api/config", s.metrics.wrap("config", s.handlePostConfig))
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("/", s.metrics.wrap("unknown", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	}))
	return newCORS().Handler(mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mock backend listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen %s: %w", addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Content-Type"},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sagapi.StatusResponse{
		Status:   "idle",
		Message:  "Mock server running",
		Session:  "mock-session",
		Env:      "mock",
		Firmware: "sagtrack-mock v0.1",
	})
}

// handleLive returns one sample drifting slowly around 12% sag.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	t := s.now().Sub(s.started).Seconds()
	wave := func(base, phase float64) *float64 {
		v := math.Round((base+0.8*math.Sin(t/4+phase))*10) / 10
		return &v
	}
	writeJSON(w, http.StatusOK, sagapi.LiveResponse{Live: []sagapi.LiveSample{{
		T:  math.Round(t*10) / 10,
		FL: wave(12.3, 0),
		FR: wave(12.4, 0.5),
		RL: wave(12.1, 1),
		RR: wave(12.0, 1.5),
	}}})
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sagapi.EventsResponse{Events: s.store.Events()})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var data sagapi.EventData
	if err := decodeBody(w, r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := s.store.AddEvent(data)
	if err != nil {
		s.logger.Warn("persist event failed", zap.Error(err))
	}
	s.metrics.events.Inc()
	s.logger.Info("event recorded", zap.Int64("ts", ev.TS), zap.String("type", data.Type), zap.Int("corners", len(data.Springs)))
	writeJSON(w, http.StatusOK, okEvent{OK: true, Event: &ev})
}

type commentBody struct {
	EventTS *int64  `json:"event_ts"`
	Comment *string `json:"comment"`
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	var body commentBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.EventTS == nil || body.Comment == nil {
		writeError(w, http.StatusBadRequest, "missing event_ts or comment")
		return
	}
	ev, err := s.store.AddComment(*body.EventTS, *body.Comment)
	switch {
	case errors.Is(err, ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event not found")
		return
	case err != nil:
		s.logger.Warn("persist comment failed", zap.Error(err))
	}
	s.metrics.comments.Inc()
	s.logger.Info("comment recorded", zap.Int64("event_ts", ev.TS))
	writeJSON(w, http.StatusOK, okEvent{OK: true, Event: &ev})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, okConfig{Config: s.store.Config()})
}

// handlePostConfig accepts {"config": {...}} or a bare configuration object.
func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	patch := body
	if wrapped, ok := body["config"]; ok {
		obj, ok := wrapped.(map[string]any)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid config")
			return
		}
		patch = obj
	}
	cfg, err := s.store.MergeConfig(patch)
	if err != nil {
		s.logger.Warn("persist config failed", zap.Error(err))
	}
	s.logger.Info("config updated", zap.Int("keys", len(patch)))
	writeJSON(w, http.StatusOK, okConfig{OK: true, Config: cfg})
}

type okEvent struct {
	OK    bool          `json:"ok"`
	Event *sagapi.Event `json:"event"`
}

type okConfig struct {
	OK     bool           `json:"ok,omitempty"`
	Config map[string]any `json:"config"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
