package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/drive"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
	"github.com/andresuchdata/inventory-optimizer/internal/repository/postgres"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

// driveCredentials prefers inline JSON from the environment over the configured file.
func driveCredentials(cfg config.DriveConfig) ([]byte, error) {
	if inline := os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON"); inline != "" {
		return []byte(inline), nil
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials %s: %w", cfg.CredentialsFile, err)
	}
	return data, nil
}

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Configure(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx := context.Background()

	credentials, err := driveCredentials(cfg.Drive)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load Google Drive credentials")
	}

	// Initialize Google Drive service
	driveService, err := drive.NewService(ctx, credentials)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	// Datasets are only written to Postgres when it backs the record store
	var writer drive.DatasetWriter
	if cfg.App.RecordStore == "postgres" {
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
		writer = repository.NewIngestRepository(db.DB.DB)
	}

	ingestService := drive.NewIngestService(drive.NewDownloader(driveService), writer, cfg.Drive.FolderID, cfg.App.DataDir)

	r := mux.NewRouter()
	driveHandler := drive.NewHandler(driveService, ingestService)
	driveHandler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%s", cfg.Drive.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Log.Info().Str("addr", addr).Str("folder_id", cfg.Drive.FolderID).Msg("Dataset browser starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatal().Err(err).Msg("Dataset browser stopped")
	}
}
