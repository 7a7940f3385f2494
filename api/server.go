package api

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"he-demo/config"
	"he-demo/encryption"
	"he-demo/logging"
	"he-demo/models"
	"he-demo/render"
	"he-demo/service"
)

// maxBodyBytes caps JSON bodies and page forms
const maxBodyBytes = 64 << 10

type Server struct {
	cfg      *config.Conf
	sessions *service.SessionStore
	metrics  *service.MetricsCollector
	registry *prometheus.Registry
	limiter  *rate.Limiter
	page     *template.Template
}

type CreateSessionResponse struct {
	SessionID string           `json:"session_id"`
	State     models.DemoState `json:"state"`
}

type RemoveValueRequest struct {
	Index int `json:"index"`
}

type UpdateValueRequest struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type SetKeyRequest struct {
	Key string `json:"key"`
}

type DecryptResponse struct {
	Success   bool             `json:"success"`
	Result    *float64         `json:"result,omitempty"`
	Formatted string           `json:"formatted,omitempty"`
	Error     string           `json:"error,omitempty"`
	State     models.DemoState `json:"state"`
}

type NotificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
}

// NewServer wires the session store, metrics and page template. A nil
// scheduler uses wall-clock timers.
func NewServer(cfg *config.Conf, scheduler service.Scheduler) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := service.NewMetricsCollector(registry)

	page, err := parsePage()
	if err != nil {
		return nil, err
	}

	sessions := service.NewSessionStore(service.SessionStoreOptions{
		TTL: cfg.Session.TTL.D(),
		Timings: service.Timings{
			Encrypt: cfg.Stages.Encrypt.D(),
			Send:    cfg.Stages.Send.D(),
			Compute: cfg.Stages.Compute.D(),
		},
		Scheduler: scheduler,
		Crypto:    encryption.NewCryptoService(encryption.NewMockCKKS()),
		Metrics:   metrics,
	})

	return &Server{
		cfg:      cfg,
		sessions: sessions,
		metrics:  metrics,
		registry: registry,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
		page:     page,
	}, nil
}

// Handler returns the routed handler with rate limiting and request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// JSON API
	mux.HandleFunc("/api/sessions", s.handleCreateSession)
	mux.HandleFunc("/api/state", s.handleGetState)
	mux.HandleFunc("/api/values", s.handleAddValue)
	mux.HandleFunc("/api/values/remove", s.handleRemoveValue)
	mux.HandleFunc("/api/values/update", s.handleUpdateValue)
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/key", s.handleSetKey)
	mux.HandleFunc("/api/key/toggle", s.handleToggleKey)
	mux.HandleFunc("/api/key/generated", s.handleUseGeneratedKey)
	mux.HandleFunc("/api/decrypt", s.handleDecrypt)
	mux.HandleFunc("/api/notifications", s.handleNotifications)
	mux.HandleFunc("/api/metrics", s.handleGetMetrics)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// HTML page
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ui/", s.handleUIAction)

	return s.withLogging(s.withRateLimit(mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sessions.Run(ctx, s.cfg.Session.Sweep.D())

	serverChan := make(chan error, 1)
	go func() {
		logging.Infof("Starting server on %s...", s.cfg.Listen)
		serverChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverChan:
		return err
	case <-ctx.Done():
		logging.Infof("Shutdown signal received, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logging.Infof("Server shutdown completed")
		return nil
	}
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Debugf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	demo, err := s.sessions.Create()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: demo.ID(),
		State:     demo.Snapshot(),
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	demo, ok := s.demoFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, demo.Snapshot())
}

func (s *Server) handleAddValue(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, nil, func(d *service.Demo) error {
		return d.AddValue()
	})
}

func (s *Server) handleRemoveValue(w http.ResponseWriter, r *http.Request) {
	var req RemoveValueRequest
	s.action(w, r, &req, func(d *service.Demo) error {
		return d.RemoveValue(req.Index)
	})
}

func (s *Server) handleUpdateValue(w http.ResponseWriter, r *http.Request) {
	var req UpdateValueRequest
	s.action(w, r, &req, func(d *service.Demo) error {
		return d.UpdateValue(req.Index, req.Text)
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, nil, func(d *service.Demo) error {
		return d.Run()
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, nil, func(d *service.Demo) error {
		return d.Reset()
	})
}

func (s *Server) handleSetKey(w http.ResponseWriter, r *http.Request) {
	var req SetKeyRequest
	s.action(w, r, &req, func(d *service.Demo) error {
		return d.SetCandidateKey(req.Key)
	})
}

func (s *Server) handleToggleKey(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, nil, func(d *service.Demo) error {
		return d.ToggleKeyVisibility()
	})
}

func (s *Server) handleUseGeneratedKey(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, nil, func(d *service.Demo) error {
		return d.UseGeneratedKey()
	})
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	demo, ok := s.demoFromQuery(w, r)
	if !ok {
		return
	}

	sum, err := demo.Decrypt()
	if err != nil {
		if errors.Is(err, encryption.ErrInvalidKey) {
			writeJSON(w, http.StatusUnprocessableEntity, DecryptResponse{
				Success: false,
				Error:   models.InvalidKeyMessage,
				State:   demo.Snapshot(),
			})
			return
		}
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, DecryptResponse{
		Success:   true,
		Result:    &sum,
		Formatted: render.FormatAmount(sum),
		State:     demo.Snapshot(),
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	demo, ok := s.demoFromQuery(w, r)
	if !ok {
		return
	}

	notes := demo.Notifications()
	if notes == nil {
		notes = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, NotificationsResponse{Notifications: notes})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.GetMetrics())
}

// action handles a POST that mutates a demo and answers with its new state.
// A non-nil req is decoded from the body first.
func (s *Server) action(w http.ResponseWriter, r *http.Request, req any, fn func(*service.Demo) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if req != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	demo, ok := s.demoFromQuery(w, r)
	if !ok {
		return
	}

	if err := fn(demo); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, demo.Snapshot())
}

func (s *Server) demoFromQuery(w http.ResponseWriter, r *http.Request) (*service.Demo, bool) {
	id := r.URL.Query().Get("session")
	if id == "" {
		http.Error(w, "Session id is required", http.StatusBadRequest)
		return nil, false
	}

	demo, err := s.sessions.Get(id)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return nil, false
	}
	return demo, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, encryption.ErrInvalidKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrEditorLocked),
		errors.Is(err, service.ErrEmptyKey),
		errors.Is(err, service.ErrNothingToDecrypt),
		errors.Is(err, service.ErrClosed),
		errors.Is(err, models.ErrTooManyValues),
		errors.Is(err, models.ErrTooFewValues):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("failed to encode response: %v", err)
	}
}
