package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"halo-summarizer/internal/config"
	"halo-summarizer/internal/llm"
	"halo-summarizer/internal/logger"
	"halo-summarizer/internal/notify"
	"halo-summarizer/internal/settings"
	"halo-summarizer/internal/summary"
)

// Deps bundles common runtime dependencies for the gateway.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Settings settings.Store
	Notifier notify.Notifier
	Pipeline *summary.Pipeline
	Registry *prometheus.Registry
}

// Close releases external connections.
func (d Deps) Close() error {
	var errs []error
	if d.Notifier != nil {
		errs = append(errs, d.Notifier.Close())
	}
	if d.Settings != nil {
		errs = append(errs, d.Settings.Close())
	}
	return errors.Join(errs...)
}

// LoadEnv reads an optional .env file into the process environment.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// Build loads env, config, and shared components.
func Build(ctx context.Context) (Deps, error) {
	if err := LoadEnv(); err != nil {
		return Deps{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := summary.NewPrometheusMetrics(reg)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to register metrics: %w", err)
	}

	st, err := buildSettings(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize settings store: %w", err)
	}
	seeded, err := settings.Seed(ctx, st, SettingsFromConfig(cfg))
	if err != nil {
		_ = st.Close()
		return Deps{}, fmt.Errorf("failed to seed settings: %w", err)
	}
	if seeded {
		log.Info("settings seeded from environment")
	}

	n, err := buildNotifier(cfg, log)
	if err != nil {
		_ = st.Close()
		return Deps{}, fmt.Errorf("failed to initialize notifier: %w", err)
	}

	return Deps{
		Config:   cfg,
		Log:      log,
		Settings: st,
		Notifier: n,
		Pipeline: BuildPipeline(cfg, log, metrics),
		Registry: reg,
	}, nil
}

// BuildPipeline wires both provider adapters behind one HTTP client.
func BuildPipeline(cfg config.Config, log *slog.Logger, metrics summary.MetricsRecorder) *summary.Pipeline {
	httpClient := llm.NewHTTPClient(cfg.RequestTimeout)
	return summary.NewPipeline(log, metrics,
		llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiModel, httpClient),
		llm.NewGroqClient(cfg.GroqBaseURL, cfg.GroqModel, httpClient),
	)
}

// SettingsFromConfig maps environment keys onto Settings.
func SettingsFromConfig(cfg config.Config) settings.Settings {
	return settings.Settings{
		Provider:     llm.ProviderName(cfg.AIProvider),
		GeminiAPIKey: cfg.GeminiAPIKey,
		GroqAPIKey:   cfg.GroqAPIKey,
	}
}

func buildSettings(cfg config.Config, log *slog.Logger) (settings.Store, error) {
	switch cfg.SettingsProvider {
	case "memory", "":
		log.Info("using in-memory settings store")
		return settings.NewMemoryStore(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when SETTINGS_PROVIDER=redis")
		}
		st, err := settings.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		log.Info("using Redis settings store", "addr", cfg.RedisAddr)
		return st, nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when SETTINGS_PROVIDER=postgres")
		}
		st, err := settings.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres settings store")
		return st, nil
	default:
		return nil, fmt.Errorf("invalid SETTINGS_PROVIDER: %s (valid options: memory, redis, postgres)", cfg.SettingsProvider)
	}
}

func buildNotifier(cfg config.Config, log *slog.Logger) (notify.Notifier, error) {
	switch cfg.NotifyProvider {
	case "none", "":
		return notify.Noop{}, nil
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when NOTIFY_PROVIDER=nats")
		}
		n, err := notify.ConnectNATS(log, cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS notifier")
		return n, nil
	default:
		return nil, fmt.Errorf("invalid NOTIFY_PROVIDER: %s (valid options: none, nats)", cfg.NotifyProvider)
	}
}

// MetricsHandler exposes the registry in Prometheus text format.
func (d Deps) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})
}
