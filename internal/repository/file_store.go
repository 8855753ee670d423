package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// datasetExtensions are tried in order when locating a dataset file.
var datasetExtensions = []string{".csv", ".xlsx"}

// FileStore reads the three datasets from CSV or XLSX files in a directory.
type FileStore struct {
	dir    string
	parser *parser
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, parser: newParser()}
}

// Dir returns the directory datasets are read from.
func (s *FileStore) Dir() string {
	return s.dir
}

// Load reads a fresh snapshot on every call.
func (s *FileStore) Load(ctx context.Context) (*domain.Dataset, error) {
	salesRows, err := s.readDataset(ctx, SalesDataset)
	if err != nil {
		return nil, err
	}
	inventoryRows, err := s.readDataset(ctx, InventoryDataset)
	if err != nil {
		return nil, err
	}
	productRows, err := s.readDataset(ctx, ProductsDataset)
	if err != nil {
		return nil, err
	}

	sales, err := s.parser.parseSales(salesRows)
	if err != nil {
		return nil, err
	}
	inventory, err := s.parser.parseInventory(inventoryRows)
	if err != nil {
		return nil, err
	}
	products, err := s.parser.parseProducts(productRows)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("dir", s.dir).
		Int("sales", len(sales)).
		Int("inventory", len(inventory)).
		Int("products", len(products)).
		Msg("Loaded datasets from files")

	return &domain.Dataset{Sales: sales, Inventory: inventory, Products: products}, nil
}

// DatasetPath returns the file backing a dataset, preferring CSV over XLSX.
func (s *FileStore) DatasetPath(name string) (string, error) {
	for _, ext := range datasetExtensions {
		path := filepath.Join(s.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s in %s: %w", name, s.dir, ErrDatasetNotFound)
}

func (s *FileStore) readDataset(ctx context.Context, name string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.DatasetPath(name)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) == ".xlsx" {
		return readXLSX(path)
	}
	return readCSV(path)
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
	}
	return rows, nil
}

// readXLSX returns the rows of the first sheet.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}
