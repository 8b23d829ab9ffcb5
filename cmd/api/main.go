package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	settingsAPI "fin_statements/pkg/api/settings"
	"fin_statements/pkg/api/statements"
	"fin_statements/pkg/core/config"
	"fin_statements/pkg/core/ingest"
	"fin_statements/pkg/core/metrics"
	"fin_statements/pkg/core/schema"
	"fin_statements/pkg/core/session"
	"fin_statements/pkg/core/settings"
	"fin_statements/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	configPath := config.DefaultPath
	if p := os.Getenv("APP_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// Schema and mapping tables are static; a broken table is a build defect.
	if err := schema.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if err := ingest.ValidateMappings(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	metrics.Init(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sources := buildSources(ctx, cfg)
	defaultSource := "synthetic"
	if cfg.AlphaVantage.APIKey != "" {
		defaultSource = string(ingest.SourceAlphaVantage)
	} else {
		fmt.Println("[WARNING] ALPHA_VANTAGE_API_KEY not set; defaulting to synthetic data")
	}

	settingsSvc := settings.NewService(settings.NewFileProvider(cfg.Settings.Path))

	sessions := session.NewManager(cfg.Session.Idle())
	go sessions.Run(ctx, cfg.Session.SweepInterval())

	r := mux.NewRouter()
	statements.NewHandler(sessions, sources, defaultSource, cfg.Server.AllowedOrigin).Register(r)
	settingsAPI.NewHandler(settingsSvc, cfg.Server.AllowedOrigin).Register(r)
	r.Handle("/metrics", promhttp.Handler())

	fmt.Printf("API server starting on %s...\n", cfg.Addr())
	fmt.Println("  - POST  /api/sessions")
	fmt.Println("  - GET   /api/sessions/{id}")
	fmt.Println("  - POST  /api/sessions/{id}/ticker")
	fmt.Println("  - POST  /api/sessions/{id}/import")
	fmt.Println("  - PATCH /api/sessions/{id}/statements/{statement}")
	fmt.Println("  - GET   /api/sessions/{id}/export.xlsx | export.pdf")
	fmt.Println("  - GET   /api/schema, /api/ratios, /api/explain/{statement}/{key}")
	fmt.Println("  - GET   /api/settings, PUT /api/settings")
	fmt.Println("  - GET   /metrics")

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		store.Close()
		log.Fatalf("[FATAL] Server failed to start: %v", err)
	}
}

// buildSources wires the upstream sources. Alpha Vantage goes through the
// snapshot cache when caching is enabled; synthetic data never does.
func buildSources(ctx context.Context, cfg *config.Config) map[string]ingest.Fetcher {
	av := ingest.NewAlphaVantageClient(cfg.AlphaVantage.APIKey,
		ingest.WithBaseURL(cfg.AlphaVantage.BaseURL),
		ingest.WithAnnualReports(cfg.AlphaVantage.AnnualReports),
		ingest.WithRequestsPerMinute(cfg.AlphaVantage.RequestsPerMinute),
		ingest.WithHTTPClient(&http.Client{Timeout: cfg.AlphaVantage.Timeout()}),
	)

	seed := cfg.Synthetic.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sources := map[string]ingest.Fetcher{
		av.Name():   av,
		"synthetic": ingest.NewSynthetic(seed),
	}

	if !cfg.Cache.Enabled {
		return sources
	}
	if cfg.Cache.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.Cache.DatabaseURL); err != nil {
			fmt.Printf("[WARNING] Database unavailable, using file cache: %v\n", err)
		} else {
			fmt.Println("[STORE] Snapshot cache backed by Postgres")
		}
	}
	cache := store.NewSnapshotCache(store.GetPool(), cfg.Cache.Dir, cfg.Cache.TTL())
	sources[av.Name()] = store.NewCachedSource(av, cache)
	return sources
}
