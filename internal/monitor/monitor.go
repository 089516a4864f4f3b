// Package monitor serves the simulated namespace over HTTP: a small JSON API
// for browsing and reading variables, process resource usage, Prometheus
// metrics and, optionally, the streamable MCP endpoint.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"

	"github.com/nvandessel/procsim/internal/namespace"
	"github.com/nvandessel/procsim/internal/ratelimit"
	"github.com/nvandessel/procsim/internal/service"
)

// Options configures a Monitor.
type Options struct {
	// Service answers browse, read and status requests. Required.
	Service *service.Service

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	// MCP is mounted at /mcp when non-nil.
	MCP http.Handler

	// Limiter throttles requests per client address when non-nil.
	Limiter *ratelimit.Limiter

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Monitor is the HTTP front end of a running simulation.
type Monitor struct {
	svc     *service.Service
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	router  *mux.Router
	server  *http.Server
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

type errorRsp struct {
	Error string `json:"error"`
}

// New creates a monitor and registers its routes.
func New(opts Options) *Monitor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Monitor{
		svc:     opts.Service,
		limiter: opts.Limiter,
		logger:  logger,
		router:  mux.NewRouter(),
	}

	r := m.router
	r.Use(m.logRequests)
	if m.limiter != nil {
		r.Use(m.limit)
	}

	api := r.PathPrefix("/api").Methods(http.MethodGet).Subrouter()
	api.HandleFunc("/browse", m.browse)
	api.HandleFunc("/node/{path:.+}", m.node)
	api.HandleFunc("/id/{id}", m.nodeByID)
	api.HandleFunc("/read", m.readMany)
	api.HandleFunc("/read/{path:.+}", m.read)
	api.HandleFunc("/status", m.status)
	api.HandleFunc("/resource", m.listResources)

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	if opts.MCP != nil {
		r.PathPrefix("/mcp").Handler(opts.MCP)
	}

	m.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return m
}

// Handler returns the routed handler, for tests and custom servers.
func (m *Monitor) Handler() http.Handler {
	return m.router
}

// Start serves on listener in the background. Serve errors other than a
// clean shutdown are logged.
func (m *Monitor) Start(listener net.Listener) {
	m.logger.Info("monitoring simulation", "addr", listener.Addr().String())

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("http server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}

func (m *Monitor) browse(w http.ResponseWriter, r *http.Request) {
	res, err := m.svc.Browse(r.URL.Query().Get("path"))
	if err != nil {
		m.writeError(w, err)
		return
	}
	m.writeJSON(w, http.StatusOK, res)
}

func (m *Monitor) node(w http.ResponseWriter, r *http.Request) {
	n, err := m.svc.Space().Lookup(mux.Vars(r)["path"])
	if err != nil {
		m.writeError(w, err)
		return
	}
	m.writeJSON(w, http.StatusOK, m.svc.Describe(n))
}

// nodeByID resolves the identifier reported in NodeInfo.ID.
func (m *Monitor) nodeByID(w http.ResponseWriter, r *http.Request) {
	n, err := m.svc.Space().NodeByID(mux.Vars(r)["id"])
	if err != nil {
		m.writeError(w, err)
		return
	}
	m.writeJSON(w, http.StatusOK, m.svc.Describe(n))
}

func (m *Monitor) read(w http.ResponseWriter, r *http.Request) {
	res, err := m.svc.ReadOne(mux.Vars(r)["path"])
	if err != nil {
		m.writeJSON(w, statusFor(err), res)
		return
	}
	m.writeJSON(w, http.StatusOK, res)
}

// readMany reads every ?path= given, or all variables when none is.
func (m *Monitor) readMany(w http.ResponseWriter, r *http.Request) {
	paths := r.URL.Query()["path"]
	if len(paths) == 0 {
		m.writeJSON(w, http.StatusOK, m.svc.ReadAll())
		return
	}
	m.writeJSON(w, http.StatusOK, m.svc.Read(paths))
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, http.StatusOK, m.svc.Status())
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.writeError(w, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.writeError(w, err)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		m.writeError(w, err)
		return
	}

	m.writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (m *Monitor) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		m.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func (m *Monitor) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(clientKey(r)) {
			m.writeJSON(w, http.StatusTooManyRequests, errorRsp{Error: "rate limit exceeded, please try again shortly"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the remote host without port.
func clientKey(r *http.Request) string {
	host := r.RemoteAddr
	if strings.Contains(host, ":") {
		if h, _, err := net.SplitHostPort(host); err == nil {
			return h
		}
	}
	return host
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, namespace.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, namespace.ErrNotReadable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (m *Monitor) writeError(w http.ResponseWriter, err error) {
	m.writeJSON(w, statusFor(err), errorRsp{Error: err.Error()})
}

func (m *Monitor) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.logger.Warn("writing response", "error", err)
	}
}
