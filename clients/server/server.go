// Package server exposes card rendering over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xob0t/ogcard/pkg/card"
	"github.com/xob0t/ogcard/pkg/fetch"
	"github.com/xob0t/ogcard/pkg/fonts"
	"github.com/xob0t/ogcard/pkg/generator"
	"github.com/xob0t/ogcard/pkg/logger"
)

// Version is reported by GET /health.
const Version = "0.1.0"

const maxBodyBytes = 1 << 20

const usage = `ogcard - share card renderer

Endpoints:
- GET /api/generate.png?text=...&font=...&image=...
- POST /api/generate  {"text": "...", "font": "...", "image": "..."}
- GET /health
`

type ctxKey struct{}

// ── Server ──

type srv struct {
	renderer *card.Renderer
	log      *zap.Logger
}

// NewHandler returns the HTTP handler serving every route.
func NewHandler(r *card.Renderer, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &srv{renderer: r, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/generate.png", s.handleGeneratePNG)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)

	return s.withRequestID(withCORS(mux))
}

// RunServe starts the HTTP server.
func RunServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		port         string
		fontDir      string
		fetchTimeout time.Duration
		debug        bool
	)
	fs.StringVar(&port, "port", "8080", "Port to listen on")
	fs.StringVar(&port, "p", "8080", "Port to listen on")
	fs.StringVar(&fontDir, "font-dir", os.Getenv(fonts.EnvDir), "Directory with kanit-bold.ttf / noto-sans-thai-bold.ttf overrides")
	fs.DurationVar(&fetchTimeout, "fetch-timeout", 15*time.Second, "Timeout for background image downloads (0 = none)")
	fs.BoolVar(&debug, "debug", false, "Verbose development logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, err := logger.New(debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	r := card.NewRenderer(card.Options{
		Fetcher: fetch.New(fetchTimeout, log.Named("fetch")),
		Fonts:   fonts.NewRegistry(fontDir, log.Named("fonts")),
		Logger:  log.Named("card"),
	})

	addr := ":" + port
	hs := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(r, log.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("ogcard listening", zap.String("addr", "http://localhost"+addr))
	return hs.ListenAndServe()
}

// ── Render ──

type generateResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (s *srv) handleGeneratePNG(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, card.RequestFromQuery(r.URL.Query()))
}

func (s *srv) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, code, generateResponse{Error: "read body: " + err.Error()})
		return
	}
	req, err := card.ParseRequest(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Error: "Invalid JSON: " + err.Error()})
		return
	}
	s.render(w, r, req)
}

func (s *srv) render(w http.ResponseWriter, r *http.Request, req card.RenderRequest) {
	log := s.reqLog(r.Context())
	log.Info("generating card",
		zap.Int("text_runes", utf8.RuneCountInString(req.Text)),
		zap.Int("significant", card.CountSignificant(req.Text)),
		zap.String("font", req.Font),
		zap.Bool("image", req.Image != ""))
	log.Debug("request text", zap.String("text", req.Text))
	for _, warning := range card.ValidateRequest(req) {
		log.Debug("request warning", zap.String("warning", warning))
	}

	c, err := s.renderer.Render(r.Context(), req)
	if err != nil {
		log.Error("card generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, generateResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := generator.GenerateToWriter(w, ".png", c.Image); err != nil {
		// Headers are already sent; the client sees a truncated body.
		log.Error("write card", zap.Error(err))
	}
}

// ── Misc routes ──

func (s *srv) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, usage)
}

func (s *srv) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": Version})
}

// ── Middleware ──

func (s *srv) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		log := s.log.With(zap.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, log)))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ── Helpers ──

func (s *srv) reqLog(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return s.log
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
