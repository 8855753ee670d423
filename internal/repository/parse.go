package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
}

// ParseDate accepts the common export layouts and Excel serial dates, returning
// the calendar date at midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return CalendarDate(t), nil
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return CalendarDate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// CalendarDate truncates t to midnight UTC of its own calendar date.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeHeader(col string) string {
	col = strings.TrimPrefix(col, "\ufeff")
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.ReplaceAll(col, " ", "_")
}

// table wraps header-indexed rows of one dataset.
type table struct {
	name   string
	colMap map[string]int
	rows   [][]string
}

func newTable(name string, rows [][]string, required []string) (*table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header row", name)
	}

	colMap := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		colMap[normalizeHeader(col)] = i
	}

	for _, col := range required {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("%s: missing required column: %s", name, col)
		}
	}

	return &table{name: name, colMap: colMap, rows: rows[1:]}, nil
}

type row struct {
	t      *table
	line   int
	record []string
}

// each calls fn for every non-blank data row. Line numbers count the header as 1.
func (t *table) each(fn func(r row) error) error {
	for i, record := range t.rows {
		if isBlank(record) {
			continue
		}
		if err := fn(row{t: t, line: i + 2, record: record}); err != nil {
			return err
		}
	}
	return nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r row) str(col string) string {
	if idx, ok := r.t.colMap[col]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

func (r row) float(col string) (float64, error) {
	val := strings.ReplaceAll(r.str(col), ",", "")
	if val == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, r.errorf("invalid %s %q", col, val)
	}
	return f, nil
}

func (r row) date(col string) (time.Time, error) {
	t, err := ParseDate(r.str(col))
	if err != nil {
		return time.Time{}, r.errorf("%s: %v", col, err)
	}
	return t, nil
}

func (r row) errorf(format string, args ...any) error {
	return fmt.Errorf("%s line %d: %s", r.t.name, r.line, fmt.Sprintf(format, args...))
}

// parser turns raw dataset rows into validated domain records.
type parser struct {
	validate *validator.Validate
}

func newParser() *parser {
	return &parser{validate: validator.New()}
}

func (p *parser) check(r row, v any) error {
	if err := p.validate.Struct(v); err != nil {
		return r.errorf("%v", err)
	}
	return nil
}

func (p *parser) parseSales(rows [][]string) ([]domain.SalesRecord, error) {
	t, err := newTable(SalesDataset, rows, []string{"date", "product_id", "quantity_sold"})
	if err != nil {
		return nil, err
	}

	sales := make([]domain.SalesRecord, 0, len(t.rows))
	err = t.each(func(r row) error {
		date, err := r.date("date")
		if err != nil {
			return err
		}
		qty, err := r.float("quantity_sold")
		if err != nil {
			return err
		}
		revenue, err := r.float("revenue")
		if err != nil {
			return err
		}

		rec := domain.SalesRecord{Date: date, ProductID: r.str("product_id"), QuantitySold: qty, Revenue: revenue}
		if err := p.check(r, rec); err != nil {
			return err
		}
		sales = append(sales, rec)
		return nil
	})
	return sales, err
}

func (p *parser) parseInventory(rows [][]string) ([]domain.InventorySnapshot, error) {
	t, err := newTable(InventoryDataset, rows, []string{"date", "product_id", "current_stock"})
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.InventorySnapshot, 0, len(t.rows))
	err = t.each(func(r row) error {
		date, err := r.date("date")
		if err != nil {
			return err
		}
		stock, err := r.float("current_stock")
		if err != nil {
			return err
		}

		snap := domain.InventorySnapshot{Date: date, ProductID: r.str("product_id"), CurrentStock: stock}
		if err := p.check(r, snap); err != nil {
			return err
		}
		snapshots = append(snapshots, snap)
		return nil
	})
	return snapshots, err
}

func (p *parser) parseProducts(rows [][]string) ([]domain.Product, error) {
	t, err := newTable(ProductsDataset, rows, []string{"product_id", "supplier", "cost_price"})
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(t.rows))
	err = t.each(func(r row) error {
		cost, err := r.float("cost_price")
		if err != nil {
			return err
		}

		product := domain.Product{
			ProductID:   r.str("product_id"),
			ProductName: r.str("product_name"),
			Category:    r.str("category"),
			Supplier:    r.str("supplier"),
			CostPrice:   cost,
		}
		if err := p.check(r, product); err != nil {
			return err
		}
		products = append(products, product)
		return nil
	})
	return products, err
}
