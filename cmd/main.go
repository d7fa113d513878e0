package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/transitlabs/citymapper/internal/citymapper"
	"github.com/transitlabs/citymapper/internal/config"
	"github.com/transitlabs/citymapper/internal/metrics"
	"github.com/transitlabs/citymapper/internal/models"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main looks up a transit travel time between two coordinates and prints
// the raw API response.
func main() {
	from := flag.String("from", "", `origin as "<lat>,<lng>" (required)`)
	to := flag.String("to", "", `destination as "<lat>,<lng>" (required)`)
	depTime := flag.String("time", "", "arrival time in ISO-8601 format (optional)")
	timeType := flag.String("time-type", "", `time qualifier, must be "arrival" when -time is set`)
	flag.Parse()

	// Create a context that will be canceled when an interrupt signal is
	// received, so a throttle wait can be abandoned cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	origin, err := parsePosition(*from)
	if err != nil {
		log.Fatalf("invalid -from value: %v", err)
	}
	destination, err := parsePosition(*to)
	if err != nil {
		log.Fatalf("invalid -to value: %v", err)
	}

	// Separate registry so only our collectors are exposed.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	client := citymapper.NewClient(
		cfg.APIKey,
		logger,
		citymapper.WithCallLimit(cfg.CallLimit),
		citymapper.WithRate(cfg.Rate),
		citymapper.WithMetrics(appMetrics),
	)

	go startMonitoringServer(ctx, logger, reg, cfg.Port)

	logger.InfoContext(ctx, "Requesting travel time",
		"from", *from, "to", *to, "time", *depTime)

	result, err := client.TravelTime(ctx, citymapper.TravelTimeRequest{
		Origin:      origin,
		Destination: destination,
		Time:        *depTime,
		TimeType:    *timeType,
	})
	if err != nil {
		log.Fatalf("travel time lookup failed: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("failed to render response: %v", err)
	}
	fmt.Println(string(out))
}

// parsePosition converts a "<lat>,<lng>" command-line value into the ordered
// position form.
func parsePosition(value string) (models.Pair, error) {
	const pairLength = 2

	parts := strings.Split(value, ",")
	if len(parts) != pairLength {
		return models.Pair{}, fmt.Errorf("expected \"<lat>,<lng>\", got %q", value)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Pair{}, fmt.Errorf("latitude %q: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Pair{}, fmt.Errorf("longitude %q: %w", parts[1], err)
	}

	return models.Pair{lat, lng}, nil
}

// startMonitoringServer starts an HTTP server that provides health check and
// metrics endpoints for the lifetime of the lookup.
func startMonitoringServer(ctx context.Context, log *slog.Logger, reg *prometheus.Registry, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
		if _, err := writer.Write([]byte("OK")); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		logger = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)

		logger.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return logger
}
