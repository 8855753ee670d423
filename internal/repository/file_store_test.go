package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeCSVDatasets(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "sales_data.csv", "date,product_id,quantity_sold,revenue\n"+
		"2024-01-01,P1,10,100.5\n"+
		"2024-01-02 13:45:00,P1,12,120\n"+
		"\n"+
		"2024-01-02,P2,3,\n")
	writeFile(t, dir, "inventory_data.csv", "\ufeffDate,Product ID,Current Stock\n"+
		"2024-01-01,P1,40\n"+
		"2024-01-03,P1,35\n")
	writeFile(t, dir, "products_data.csv", "product_id,product_name,category,supplier,cost_price\n"+
		"P1,Widget,Tools,Supplier A,10\n"+
		"P2,Gadget,Tools,Supplier B,\"1,250.50\"\n")
}

func TestFileStoreLoadCSV(t *testing.T) {
	dir := t.TempDir()
	writeCSVDatasets(t, dir)

	ds, err := NewFileStore(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(ds.Sales) != 3 || len(ds.Inventory) != 2 || len(ds.Products) != 2 {
		t.Fatalf("got %d sales, %d inventory, %d products", len(ds.Sales), len(ds.Inventory), len(ds.Products))
	}

	wantDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !ds.Sales[1].Date.Equal(wantDate) {
		t.Errorf("sales[1].Date = %v, want %v", ds.Sales[1].Date, wantDate)
	}
	if ds.Sales[0].Revenue != 100.5 || ds.Sales[2].Revenue != 0 {
		t.Errorf("revenues = %v, %v, want 100.5, 0", ds.Sales[0].Revenue, ds.Sales[2].Revenue)
	}
	if ds.Inventory[1].CurrentStock != 35 {
		t.Errorf("inventory[1].CurrentStock = %v, want 35", ds.Inventory[1].CurrentStock)
	}
	if ds.Products[1].CostPrice != 1250.5 || ds.Products[1].Supplier != "Supplier B" {
		t.Errorf("products[1] = %+v", ds.Products[1])
	}
}

func TestFileStoreLoadXLSX(t *testing.T) {
	dir := t.TempDir()
	writeCSVDatasets(t, dir)
	if err := os.Remove(filepath.Join(dir, "products_data.csv")); err != nil {
		t.Fatal(err)
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"product_id", "product_name", "category", "supplier", "cost_price"},
		{"P1", "Widget", "Tools", "Supplier A", 10},
		{"P2", "Gadget", "Tools", "Supplier B", 2.5},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}
	if err := f.SaveAs(filepath.Join(dir, "products_data.xlsx")); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}

	ds, err := NewFileStore(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ds.Products) != 2 || ds.Products[1].CostPrice != 2.5 {
		t.Errorf("products = %+v", ds.Products)
	}
}

func TestFileStoreLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		wantErr error
		wantMsg string
	}{
		{
			name: "missing dataset",
			setup: func(t *testing.T, dir string) {
				writeCSVDatasets(t, dir)
				os.Remove(filepath.Join(dir, "inventory_data.csv"))
			},
			wantErr: ErrDatasetNotFound,
		},
		{
			name: "missing column",
			setup: func(t *testing.T, dir string) {
				writeCSVDatasets(t, dir)
				writeFile(t, dir, "sales_data.csv", "date,product_id\n2024-01-01,P1\n")
			},
			wantMsg: "missing required column: quantity_sold",
		},
		{
			name: "bad number",
			setup: func(t *testing.T, dir string) {
				writeCSVDatasets(t, dir)
				writeFile(t, dir, "sales_data.csv", "date,product_id,quantity_sold\n2024-01-01,P1,ten\n")
			},
			wantMsg: "sales_data line 2",
		},
		{
			name: "bad date",
			setup: func(t *testing.T, dir string) {
				writeCSVDatasets(t, dir)
				writeFile(t, dir, "inventory_data.csv", "date,product_id,current_stock\nyesterday,P1,3\n")
			},
			wantMsg: "inventory_data line 2",
		},
		{
			name: "negative quantity fails validation",
			setup: func(t *testing.T, dir string) {
				writeCSVDatasets(t, dir)
				writeFile(t, dir, "sales_data.csv", "date,product_id,quantity_sold\n2024-01-01,P1,1\n2024-01-02,P1,-4\n")
			},
			wantMsg: "sales_data line 3",
		},
		{
			name: "blank product id fails validation",
			setup: func(t *testing.T, dir string) {
				writeCSVDatasets(t, dir)
				writeFile(t, dir, "products_data.csv", "product_id,supplier,cost_price\n,Supplier A,3\n")
			},
			wantMsg: "products_data line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			_, err := NewFileStore(dir).Load(context.Background())
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "2024-03-05"},
		{value: " 2024-03-05 "},
		{value: "2024-03-05 08:30:00"},
		{value: "2024-03-05T23:59:59+07:00"},
		{value: "2024/03/05"},
		{value: "3/5/2024"},
		{value: "45356"},
		{value: "", wantErr: true},
		{value: "March fifth", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) error = nil", tt.value)
			}
			continue
		}
		if err != nil || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, %v, want %v", tt.value, got, err, want)
		}
	}
}
