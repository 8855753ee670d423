package drive

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
)

// DatasetWriter persists a loaded dataset, e.g. repository.IngestRepository.
type DatasetWriter interface {
	IngestDataset(ctx context.Context, ds *domain.Dataset) error
}

// IngestService syncs datasets from Drive and optionally writes them to Postgres.
type IngestService struct {
	downloader *Downloader
	writer     DatasetWriter
	folderID   string
	dataDir    string
}

// NewIngestService wires the downloader. writer may be nil when no database is configured.
func NewIngestService(downloader *Downloader, writer DatasetWriter, folderID, dataDir string) *IngestService {
	return &IngestService{
		downloader: downloader,
		writer:     writer,
		folderID:   folderID,
		dataDir:    dataDir,
	}
}

// Sync downloads the datasets from folderID (the configured folder when empty)
// into the data directory the file record store reads from.
func (s *IngestService) Sync(ctx context.Context, folderID string) ([]string, error) {
	return s.downloader.SyncDatasets(ctx, SyncOptions{
		FolderID:    s.folder(folderID),
		DownloadDir: s.dataDir,
		Datasets:    repository.DatasetNames,
	})
}

// Ingest downloads the datasets into a scratch directory, validates them and
// upserts them through the writer.
func (s *IngestService) Ingest(ctx context.Context, folderID string) (*domain.Dataset, error) {
	if s.writer == nil {
		return nil, fmt.Errorf("ingest requires a database connection")
	}

	scratch, err := os.MkdirTemp("", "drive-ingest-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	if _, err := s.downloader.SyncDatasets(ctx, SyncOptions{
		FolderID:    s.folder(folderID),
		DownloadDir: scratch,
		Datasets:    repository.DatasetNames,
		ConvertXLSX: true,
	}); err != nil {
		return nil, err
	}

	ds, err := repository.NewFileStore(scratch).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load downloaded datasets: %w", err)
	}

	if err := s.writer.IngestDataset(ctx, ds); err != nil {
		return nil, err
	}

	log.Info().
		Int("sales", len(ds.Sales)).
		Int("inventory", len(ds.Inventory)).
		Int("products", len(ds.Products)).
		Msg("Drive datasets ingested")

	return ds, nil
}

func (s *IngestService) folder(folderID string) string {
	if folderID != "" {
		return folderID
	}
	return s.folderID
}
