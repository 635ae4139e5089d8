package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"halo-summarizer/internal/app"
	"halo-summarizer/internal/extract"
	"halo-summarizer/internal/httputil"
	"halo-summarizer/internal/llm"
	"halo-summarizer/internal/notify"
	"halo-summarizer/internal/settings"
	"halo-summarizer/internal/summary"
)

// multipartOverhead is the slack allowed above MaxUploadSize for part headers
// and the style and provider fields.
const multipartOverhead = 1 << 10

type summarizeRequest struct {
	Text     string `json:"text" validate:"max=2000000"`
	Style    string `json:"style" validate:"required,oneof=quick bullets"`
	Provider string `json:"provider" validate:"omitempty,oneof=gemini groq"`
}

type settingsPayload struct {
	Provider     string `json:"aiProvider" validate:"required,oneof=gemini groq"`
	GeminiAPIKey string `json:"geminiApiKey" validate:"max=512"`
	GroqAPIKey   string `json:"groqApiKey" validate:"max=512"`
}

type settingsView struct {
	Provider         llm.ProviderName `json:"aiProvider"`
	GeminiConfigured bool             `json:"geminiConfigured"`
	GroqConfigured   bool             `json:"groqConfigured"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Log.Warn("failed to close dependencies", "err", err)
		}
	}()

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("gateway listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
	deps.Log.Info("gateway stopped")
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log, deps.Config.RequestTimeout)

	r.Group(func(r chi.Router) {
		r.Use(httputil.RateLimit(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst))
		r.Post("/api/summarize", summarizeHandler(deps))
		r.With(middleware.RequestSize(deps.Config.MaxUploadSize+multipartOverhead)).
			Post("/api/summarize/upload", uploadHandler(deps))
	})
	r.Get("/api/settings", getSettingsHandler(deps))
	r.Put("/api/settings", putSettingsHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler())
	}
	return r
}

func summarizeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		respondSummary(deps, w, r, req)
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize
	tooLarge := fmt.Sprintf("file too large (max %d bytes)", maxFileSize)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxFileSize+multipartOverhead {
			httputil.Fail(deps.Log, w, tooLarge, nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.Fail(deps.Log, w, tooLarge, err, http.StatusBadRequest)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, tooLarge, nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text, err := extract.Text(header.Filename, header.Header.Get("Content-Type"), content)
		if errors.Is(err, extract.ErrUnsupportedType) {
			httputil.Fail(deps.Log, w, err.Error(), nil, http.StatusBadRequest)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to extract text", err, http.StatusBadRequest)
			return
		}

		req := summarizeRequest{
			Text:     text,
			Style:    r.FormValue("style"),
			Provider: r.FormValue("provider"),
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		respondSummary(deps, w, r, req)
	}
}

// respondSummary resolves provider and credential from settings, runs the
// pipeline and writes the resulting display state.
func respondSummary(deps app.Deps, w http.ResponseWriter, r *http.Request, req summarizeRequest) {
	ctx := r.Context()
	current, err := deps.Settings.Get(ctx)
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to load settings", err, http.StatusInternalServerError)
		return
	}

	provider := llm.ProviderName(req.Provider)
	if provider == "" {
		provider = current.Provider
	}

	out, err := deps.Pipeline.Summarize(ctx, summary.Request{
		Text:       req.Text,
		Style:      summary.Style(req.Style),
		Provider:   provider,
		Credential: current.Credential(provider),
	})
	outcome := summary.Present(out, err)
	httputil.WriteJSON(w, summary.HTTPStatus(outcome.Kind), outcome)
}

func getSettingsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := deps.Settings.Get(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load settings", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, settingsView{
			Provider:         current.Provider,
			GeminiConfigured: current.GeminiAPIKey != "",
			GroqConfigured:   current.GroqAPIKey != "",
		})
	}
}

func putSettingsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload settingsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&payload); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		next := settings.Settings{
			Provider:     llm.ProviderName(payload.Provider),
			GeminiAPIKey: strings.TrimSpace(payload.GeminiAPIKey),
			GroqAPIKey:   strings.TrimSpace(payload.GroqAPIKey),
		}
		if err := next.Validate(); err != nil {
			httputil.Fail(deps.Log, w, strings.TrimPrefix(err.Error(), settings.ErrInvalid.Error()+": "), err, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		if err := deps.Settings.Save(ctx, next); err != nil {
			httputil.Fail(deps.Log, w, "failed to save settings", err, http.StatusInternalServerError)
			return
		}
		// Publish failures never fail the save.
		if err := deps.Notifier.Publish(ctx, notify.NewEvent(notify.EventSettingsUpdated, next.Provider)); err != nil {
			deps.Log.Warn("failed to publish settings update", "err", err)
		}
		deps.Log.Info("settings saved", "provider", next.Provider)
		w.WriteHeader(http.StatusNoContent)
	}
}
