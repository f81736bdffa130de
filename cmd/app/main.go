package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/local/scorefiler/internal/ai"
	cfgpkg "github.com/local/scorefiler/internal/config"
	logpkg "github.com/local/scorefiler/internal/logger"
	"github.com/local/scorefiler/internal/metrics"
	"github.com/local/scorefiler/internal/orchestrator"
	"github.com/local/scorefiler/internal/pdf"
	"github.com/local/scorefiler/internal/storage"
	"github.com/local/scorefiler/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := cfgpkg.FromEnv()

	// Init logging
	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	metrics.Init()

	// Extraction engine
	var client ai.Client
	model := cfg.Extract.OpenAIModel
	switch cfg.Extract.Engine {
	case "anthropic":
		client = ai.NewAnthropicClient()
		model = cfg.Extract.AnthropicModel
	default:
		client = ai.NewOpenAIClient()
	}
	extractor := ai.NewExtractor(client, ai.ExtractorOptions{
		Model:     model,
		Transport: cfg.Extract.Transport,
		Render: pdf.RenderOptions{
			DPI:      cfg.Extract.RenderDPI,
			Quality:  cfg.Extract.RenderQuality,
			MaxPages: cfg.Extract.RenderMaxPages,
		},
		Timeout: cfg.Extract.RequestTimeout,
	})

	// Storage backend
	var stor storage.Client
	switch cfg.Storage.Backend {
	case "s3":
		s3c, err := storage.NewS3Client(context.Background(), cfg.Storage.S3Bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init s3 storage")
		}
		stor = s3c
	default:
		stor = storage.NewDriveClient(cfg.Storage.DriveBaseURL, cfg.Storage.DriveToken)
	}

	rootID := cfg.Storage.RootFolderID
	if rootID == "" && cfg.Storage.Backend == "s3" {
		rootID = cfg.Storage.S3Prefix
	}
	if rootID == "" {
		log.Fatal().Msg("STORAGE_ROOT_FOLDER_ID is required")
	}

	// Optional Redis status mirror
	var sink orchestrator.StatusSink
	if cfg.Status.Mirror {
		rs, err := store.NewRedisStatus(cfg.Status.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init redis status store")
		}
		defer rs.Close()
		sink = orchestrator.NewRedisSink(rs)
	}

	svc := orchestrator.New(orchestrator.Dependencies{
		Extract: extractor,
		Storage: stor,
		Status:  sink,
	}, orchestrator.Options{
		RootFolderID: rootID,
		Concurrency:  cfg.Worker.Concurrency,
	})

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	mux.Handle("/metrics", metrics.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		log.Info().Msgf("HTTP server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("shutdown complete")
}
