package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// SyncOptions controls how dataset files are pulled from Google Drive.
type SyncOptions struct {
	FolderID    string
	DownloadDir string
	// Datasets are matched against Drive file names without their extension.
	Datasets []string
	// ConvertXLSX stores spreadsheets as CSV (first sheet) instead of keeping the .xlsx.
	ConvertXLSX bool
}

// Downloader pulls dataset files from a Drive folder.
type Downloader struct {
	source FileSource
}

func NewDownloader(source FileSource) *Downloader {
	return &Downloader{source: source}
}

// SyncDatasets downloads the most recently modified CSV or XLSX file for every
// dataset and returns the local paths in dataset order.
func (d *Downloader) SyncDatasets(ctx context.Context, opts SyncOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	byDataset := make(map[string][]*File)
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		name := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		byDataset[name] = append(byDataset[name], f)
	}

	localPaths := make([]string, 0, len(opts.Datasets))
	for _, dataset := range opts.Datasets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		candidates := byDataset[dataset]
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no Drive file found for dataset %s", dataset)
		}
		// RFC3339 timestamps sort lexically.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].ModifiedTime > candidates[j].ModifiedTime
		})

		path, err := d.download(ctx, candidates[0], dataset, opts)
		if err != nil {
			return nil, err
		}

		log.Info().Str("dataset", dataset).Str("file_id", candidates[0].ID).Str("path", path).Msg("Dataset downloaded from Drive")
		localPaths = append(localPaths, path)
	}

	return localPaths, nil
}

func (d *Downloader) download(ctx context.Context, f *File, dataset string, opts SyncOptions) (string, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	localPath := filepath.Join(opts.DownloadDir, dataset+ext)

	if err := d.downloadTo(ctx, f, localPath); err != nil {
		return "", err
	}

	if ext == ".xlsx" && opts.ConvertXLSX {
		csvPath := filepath.Join(opts.DownloadDir, dataset+".csv")
		if err := convertXLSXToCSV(localPath, csvPath); err != nil {
			return "", fmt.Errorf("failed to convert %s to csv: %w", f.Name, err)
		}
		// Best-effort remove downloaded XLSX
		_ = os.Remove(localPath)
		return csvPath, nil
	}

	// A leftover copy with the other extension would shadow or be shadowed by this one.
	other := ".xlsx"
	if ext == ".xlsx" {
		other = ".csv"
	}
	_ = os.Remove(filepath.Join(opts.DownloadDir, dataset+other))

	return localPath, nil
}

func (d *Downloader) downloadTo(ctx context.Context, f *File, localPath string) error {
	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := d.source.DownloadFile(ctx, f.ID, out); err != nil {
		out.Close()
		return fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	return out.Close()
}
