package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

type fakeSource struct {
	files    []*File
	contents map[string][]byte
}

func (f *fakeSource) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	return f.files, nil
}

func (f *fakeSource) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	body, ok := f.contents[fileID]
	if !ok {
		return fmt.Errorf("file %s not found", fileID)
	}
	_, err := w.Write(body)
	return err
}

func (f *fakeSource) FindFolderByPath(ctx context.Context, path string) (string, error) {
	if path == "missing" {
		return "", fmt.Errorf("folder not found: %s", path)
	}
	return "folder-" + path, nil
}

func xlsxBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}

func newFakeSource(t *testing.T) *fakeSource {
	return &fakeSource{
		files: []*File{
			{ID: "s-old", Name: "sales_data.csv", ModifiedTime: "2024-01-01T00:00:00Z"},
			{ID: "s-new", Name: "sales_data.csv", ModifiedTime: "2024-02-01T00:00:00Z"},
			{ID: "inv", Name: "inventory_data.csv", ModifiedTime: "2024-02-01T00:00:00Z"},
			{ID: "prod", Name: "products_data.xlsx", ModifiedTime: "2024-02-01T00:00:00Z"},
			{ID: "readme", Name: "README.md"},
		},
		contents: map[string][]byte{
			"s-old": []byte("date,product_id,quantity_sold\n2023-12-01,P1,1\n"),
			"s-new": []byte("date,product_id,quantity_sold,revenue\n2024-01-01,P1,4,40\n"),
			"inv":   []byte("date,product_id,current_stock\n2024-01-01,P1,9\n"),
			"prod": xlsxBytes(t, [][]any{
				{"product_id", "product_name", "category", "supplier", "cost_price"},
				{"P1", "Widget", "Tools", "Supplier A", 10},
			}),
		},
	}
}

func TestDownloaderSyncDatasets(t *testing.T) {
	dir := t.TempDir()
	// A stale CSV copy must not shadow the fresh XLSX download.
	if err := os.WriteFile(filepath.Join(dir, "products_data.csv"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDownloader(newFakeSource(t))
	paths, err := d.SyncDatasets(context.Background(), SyncOptions{
		DownloadDir: dir,
		Datasets:    []string{"sales_data", "inventory_data", "products_data"},
	})
	if err != nil {
		t.Fatalf("SyncDatasets() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "sales_data.csv"),
		filepath.Join(dir, "inventory_data.csv"),
		filepath.Join(dir, "products_data.xlsx"),
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}

	sales, _ := os.ReadFile(want[0])
	if !strings.Contains(string(sales), "2024-01-01") {
		t.Errorf("sales_data.csv = %q, want the most recently modified file", sales)
	}
	if _, err := os.Stat(filepath.Join(dir, "products_data.csv")); !os.IsNotExist(err) {
		t.Error("stale products_data.csv still present")
	}
}

func TestDownloaderConvertsXLSX(t *testing.T) {
	dir := t.TempDir()
	d := NewDownloader(newFakeSource(t))

	paths, err := d.SyncDatasets(context.Background(), SyncOptions{
		DownloadDir: dir,
		Datasets:    []string{"products_data"},
		ConvertXLSX: true,
	})
	if err != nil {
		t.Fatalf("SyncDatasets() error = %v", err)
	}

	if paths[0] != filepath.Join(dir, "products_data.csv") {
		t.Fatalf("path = %s, want converted csv", paths[0])
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "product_id,product_name,category,supplier,cost_price\nP1,Widget,Tools,Supplier A,10\n") {
		t.Errorf("converted csv = %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "products_data.xlsx")); !os.IsNotExist(err) {
		t.Error("downloaded xlsx was not removed after conversion")
	}
}

func TestDownloaderMissingDataset(t *testing.T) {
	d := NewDownloader(newFakeSource(t))
	_, err := d.SyncDatasets(context.Background(), SyncOptions{
		DownloadDir: t.TempDir(),
		Datasets:    []string{"returns_data"},
	})
	if err == nil || !strings.Contains(err.Error(), "returns_data") {
		t.Errorf("error = %v, want missing dataset error", err)
	}
}

type recordingWriter struct {
	ds *domain.Dataset
}

func (w *recordingWriter) IngestDataset(ctx context.Context, ds *domain.Dataset) error {
	w.ds = ds
	return nil
}

func TestIngestServiceIngest(t *testing.T) {
	writer := &recordingWriter{}
	svc := NewIngestService(NewDownloader(newFakeSource(t)), writer, "folder", t.TempDir())

	ds, err := svc.Ingest(context.Background(), "")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if writer.ds != ds {
		t.Error("dataset was not passed to the writer")
	}
	if len(ds.Sales) != 1 || ds.Sales[0].QuantitySold != 4 || len(ds.Products) != 1 || ds.Products[0].CostPrice != 10 {
		t.Errorf("dataset = %+v", ds)
	}
}

func TestHandler(t *testing.T) {
	source := newFakeSource(t)
	dataDir := t.TempDir()
	svc := NewIngestService(NewDownloader(source), nil, "folder", dataDir)

	router := mux.NewRouter()
	NewHandler(source, svc).RegisterRoutes(router)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "list files", method: http.MethodGet, target: "/api/drive/files", wantStatus: http.StatusOK, wantBody: "sales_data.csv"},
		{name: "list unknown path", method: http.MethodGet, target: "/api/drive/files?path=missing", wantStatus: http.StatusNotFound},
		{name: "download without id", method: http.MethodGet, target: "/api/drive/files/download", wantStatus: http.StatusBadRequest},
		{name: "download", method: http.MethodGet, target: "/api/drive/files/download?fileId=inv", wantStatus: http.StatusOK, wantBody: "current_stock"},
		{name: "sync", method: http.MethodPost, target: "/api/drive/sync", wantStatus: http.StatusOK, wantBody: "inventory_data.csv"},
		{name: "ingest without database", method: http.MethodPost, target: "/api/drive/ingest", wantStatus: http.StatusInternalServerError},
		{name: "wrong method", method: http.MethodGet, target: "/api/drive/sync", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && !bytes.Contains(rec.Body.Bytes(), []byte(tt.wantBody)) {
				t.Errorf("body = %s, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestListFilesJSON(t *testing.T) {
	source := newFakeSource(t)
	router := mux.NewRouter()
	NewHandler(source, nil).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drive/files?folderId=abc", nil))

	var files []File
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(files) != len(source.files) {
		t.Errorf("got %d files, want %d", len(files), len(source.files))
	}
}
