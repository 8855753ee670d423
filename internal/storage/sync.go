package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

var datasetExtensions = []string{".csv", ".xlsx"}

// SyncDatasets downloads the newest object for each dataset name found under prefix
// into destDir as <name>.csv or <name>.xlsx. Copies with the other extension are
// removed so the downloaded file is the one that gets read.
func SyncDatasets(ctx context.Context, client ObjectStorage, prefix, destDir string, names []string) ([]string, error) {
	listPrefix := strings.TrimSpace(prefix)
	objects, err := client.ListObjects(ctx, listPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", listPrefix, err)
	}

	candidates := make(map[string][]string, len(names))
	for _, obj := range objects {
		base := path.Base(obj.Key)
		ext := strings.ToLower(path.Ext(base))
		if !isDatasetExt(ext) {
			continue
		}
		name := strings.TrimSuffix(base, path.Ext(base))
		candidates[name] = append(candidates[name], obj.Key)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure download dir %s: %w", destDir, err)
	}

	localPaths := make([]string, 0, len(names))
	for _, name := range names {
		keys := candidates[name]
		if len(keys) == 0 {
			return nil, fmt.Errorf("no object found for dataset %s under %s", name, listPrefix)
		}
		sort.Strings(keys)
		key := keys[len(keys)-1]

		ext := strings.ToLower(path.Ext(key))
		localPath := filepath.Join(destDir, name+ext)
		if err := client.DownloadObject(ctx, key, localPath); err != nil {
			return nil, err
		}
		removeOtherExtensions(destDir, name, ext)

		log.Info().Str("dataset", name).Str("key", key).Str("path", localPath).Msg("Dataset synced")
		localPaths = append(localPaths, localPath)
	}

	return localPaths, nil
}

func isDatasetExt(ext string) bool {
	for _, e := range datasetExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func removeOtherExtensions(dir, name, keep string) {
	for _, ext := range datasetExtensions {
		if ext == keep {
			continue
		}
		stale := filepath.Join(dir, name+ext)
		if err := os.Remove(stale); err == nil {
			log.Debug().Str("path", stale).Msg("Removed stale dataset copy")
		}
	}
}
