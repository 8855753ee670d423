package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{prefix: "", key: "/a.csv", want: "a.csv"},
		{prefix: "reports/", key: "2024-01-01/a.csv", want: "reports/2024-01-01/a.csv"},
		{prefix: "reports", key: "reports/a.csv", want: "reports/a.csv"},
		{prefix: "reports", key: "reportsx/a.csv", want: "reports/reportsx/a.csv"},
	}

	for _, tt := range tests {
		if got := ResolveObjectKey(tt.prefix, tt.key); got != tt.want {
			t.Errorf("ResolveObjectKey(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	if err := store.UploadObject(ctx, "reports/run-1/health.csv", []byte("a,b\n"), "text/csv"); err != nil {
		t.Fatalf("UploadObject() error = %v", err)
	}
	if err := store.UploadObject(ctx, "other/x.csv", []byte("x"), "text/csv"); err != nil {
		t.Fatalf("UploadObject() error = %v", err)
	}

	objects, err := store.ListObjects(ctx, "reports/")
	if err != nil {
		t.Fatalf("ListObjects() error = %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "reports/run-1/health.csv" || objects[0].Size != 4 {
		t.Fatalf("ListObjects() = %+v", objects)
	}

	dest := filepath.Join(t.TempDir(), "nested", "health.csv")
	if err := store.DownloadObject(ctx, objects[0].Key, dest); err != nil {
		t.Fatalf("DownloadObject() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "a,b\n" {
		t.Errorf("downloaded %q, %v", data, err)
	}
}

func TestSyncDatasets(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	uploads := map[string]string{
		"datasets/2024-01-01/sales_data.csv":     "old",
		"datasets/2024-01-02/sales_data.csv":     "new",
		"datasets/2024-01-02/products_data.xlsx": "xlsx",
		"datasets/2024-01-02/notes.txt":          "skip",
	}
	for key, body := range uploads {
		if err := store.UploadObject(ctx, key, []byte(body), ""); err != nil {
			t.Fatalf("UploadObject(%s) error = %v", key, err)
		}
	}

	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "products_data.csv"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := SyncDatasets(ctx, store, "datasets/", dest, []string{"sales_data", "products_data"})
	if err != nil {
		t.Fatalf("SyncDatasets() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}

	sales, _ := os.ReadFile(filepath.Join(dest, "sales_data.csv"))
	if string(sales) != "new" {
		t.Errorf("sales_data.csv = %q, want the newest object", sales)
	}
	if _, err := os.Stat(filepath.Join(dest, "products_data.csv")); !os.IsNotExist(err) {
		t.Errorf("stale products_data.csv was not removed")
	}

	if _, err := SyncDatasets(ctx, store, "datasets/", dest, []string{"inventory_data"}); err == nil {
		t.Errorf("SyncDatasets() with a missing dataset error = nil")
	}
}
