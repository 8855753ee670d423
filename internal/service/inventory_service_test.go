package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/optimizer"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
)

type stubStore struct {
	mu    sync.Mutex
	ds    *domain.Dataset
	err   error
	loads int
}

func (s *stubStore) Load(ctx context.Context) (*domain.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.ds, nil
}

// memoryCache is an in-process ReportCache that round-trips values through JSON.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, report, fingerprint string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[report+":"+fingerprint]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(payload, dest)
}

func (c *memoryCache) Set(ctx context.Context, report, fingerprint string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[report+":"+fingerprint] = payload
	return nil
}

func (c *memoryCache) InvalidateAll(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string][]byte)
	return n, nil
}

func (c *memoryCache) Close() error { return nil }

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func fixtureDataset() *domain.Dataset {
	return &domain.Dataset{
		Sales: []domain.SalesRecord{
			{Date: day(1), ProductID: "P1", QuantitySold: 10, Revenue: 100},
			{Date: day(2), ProductID: "P1", QuantitySold: 12, Revenue: 120},
			{Date: day(3), ProductID: "P1", QuantitySold: 14, Revenue: 140},
			{Date: day(3), ProductID: "P2", QuantitySold: 1, Revenue: 5},
		},
		Inventory: []domain.InventorySnapshot{
			{Date: day(3), ProductID: "P1", CurrentStock: 50},
			{Date: day(3), ProductID: "P2", CurrentStock: 100},
		},
		Products: []domain.Product{
			{ProductID: "P1", ProductName: "Widget", Category: "Tools", Supplier: "Supplier A", CostPrice: 10},
			{ProductID: "P2", ProductName: "Gizmo", Category: "Toys", Supplier: "Supplier B", CostPrice: 2},
		},
	}
}

func testOptions() Options {
	now := func() time.Time { return time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC) }
	return Options{
		Forecaster:   optimizer.NewForecaster(optimizer.NoJitter(), now),
		ForecastDays: 5,
		Now:          now,
	}
}

func TestInventoryServiceDashboard(t *testing.T) {
	store := &stubStore{ds: fixtureDataset()}
	svc := NewInventoryService(store, nil, testOptions())

	dashboard, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if store.loads != 1 {
		t.Errorf("store loaded %d times, want 1", store.loads)
	}

	wantHealth := domain.HealthMetrics{
		TotalProducts:       2,
		OverstockCount:      1,
		UnderstockCount:     1,
		OptimalCount:        0,
		TotalInventoryValue: 700,
		OverstockValue:      200,
		ServiceLevel:        100,
		HealthScore:         50,
	}
	if dashboard.Health != wantHealth {
		t.Errorf("Health = %+v, want %+v", dashboard.Health, wantHealth)
	}

	if len(dashboard.PurchaseOrders) != 1 {
		t.Fatalf("got %d purchase orders, want 1", len(dashboard.PurchaseOrders))
	}
	po := dashboard.PurchaseOrders[0]
	if po.ProductID != "P1" || po.OrderQuantity != 110 || po.Priority != domain.PriorityHigh || po.EstimatedCost != 1106.5 {
		t.Errorf("purchase order = %+v", po)
	}

	if len(dashboard.SlowMovers) != 1 {
		t.Fatalf("got %d slow movers, want 1", len(dashboard.SlowMovers))
	}
	sm := dashboard.SlowMovers[0]
	if sm.ProductID != "P2" || sm.DaysOfSupply != 100 || sm.PromoRecommendation != domain.PromoBundle {
		t.Errorf("slow mover = %+v", sm)
	}

	if len(dashboard.Forecast) != 10 {
		t.Errorf("got %d forecast points, want 10", len(dashboard.Forecast))
	}
	if !dashboard.GeneratedAt.Equal(time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("GeneratedAt = %v", dashboard.GeneratedAt)
	}
}

func TestInventoryServiceCaching(t *testing.T) {
	ctx := context.Background()
	store := &stubStore{ds: fixtureDataset()}
	c := newMemoryCache()
	svc := NewInventoryService(store, c, testOptions())

	first, err := svc.PurchaseOrders(ctx)
	if err != nil {
		t.Fatalf("PurchaseOrders() error = %v", err)
	}
	if c.hits != 0 {
		t.Fatalf("cache hits = %d after a cold call", c.hits)
	}

	second, err := svc.PurchaseOrders(ctx)
	if err != nil {
		t.Fatalf("PurchaseOrders() error = %v", err)
	}
	if c.hits != 1 {
		t.Errorf("cache hits = %d, want 1", c.hits)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("cached orders %+v differ from computed %+v", second, first)
	}

	changed := fixtureDataset()
	changed.Inventory[0].CurrentStock = 10
	store.ds = changed

	third, err := svc.PurchaseOrders(ctx)
	if err != nil {
		t.Fatalf("PurchaseOrders() error = %v", err)
	}
	if third[0].OrderQuantity != 150 || third[0].Priority != domain.PriorityCritical {
		t.Errorf("order after stock change = %+v, want recomputed", third[0])
	}

	n, err := svc.InvalidateCache(ctx)
	if err != nil || n == 0 {
		t.Errorf("InvalidateCache() = %d, %v", n, err)
	}
}

func TestInventoryServiceCacheKeys(t *testing.T) {
	tests := []struct {
		name   string
		call   func(ctx context.Context, svc *InventoryService) error
		report string
	}{
		{name: "velocity", report: domain.ReportVelocity, call: func(ctx context.Context, svc *InventoryService) error {
			_, err := svc.VelocityProfiles(ctx)
			return err
		}},
		{name: "purchase orders", report: domain.ReportPurchaseOrders, call: func(ctx context.Context, svc *InventoryService) error {
			_, err := svc.PurchaseOrders(ctx)
			return err
		}},
		{name: "slow movers", report: domain.ReportSlowMovers, call: func(ctx context.Context, svc *InventoryService) error {
			_, err := svc.SlowMovers(ctx)
			return err
		}},
		{name: "health", report: domain.ReportHealth, call: func(ctx context.Context, svc *InventoryService) error {
			_, err := svc.Health(ctx)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMemoryCache()
			svc := NewInventoryService(&stubStore{ds: fixtureDataset()}, c, testOptions())
			if err := tt.call(context.Background(), svc); err != nil {
				t.Fatalf("call error = %v", err)
			}

			found := false
			for key := range c.entries {
				if strings.HasPrefix(key, tt.report+":") {
					found = true
				}
			}
			if !found {
				t.Errorf("no cache entry for report %q", tt.report)
			}
		})
	}
}

func TestInventoryServiceForecast(t *testing.T) {
	svc := NewInventoryService(&stubStore{ds: fixtureDataset()}, nil, testOptions())

	tests := []struct {
		name      string
		productID string
		days      int
		wantLen   int
		wantFirst int
		wantErr   error
	}{
		{name: "default horizon", days: 0, wantLen: 5, wantFirst: 15},
		{name: "single product", productID: "P1", days: 3, wantLen: 3, wantFirst: 14},
		{name: "negative horizon", days: -2, wantErr: domain.ErrInvalidHorizon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := svc.Forecast(context.Background(), tt.productID, tt.days)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Forecast() error = %v", err)
			}
			if len(points) != tt.wantLen {
				t.Fatalf("got %d points, want %d", len(points), tt.wantLen)
			}
			if points[0].PredictedDemand != tt.wantFirst {
				t.Errorf("first point = %+v, want demand %d", points[0], tt.wantFirst)
			}
		})
	}
}

func TestInventoryServiceErrors(t *testing.T) {
	unknown := fixtureDataset()
	unknown.Products[1].Supplier = "Supplier Q"

	loadErr := errors.New("disk on fire")

	tests := []struct {
		name    string
		store   *stubStore
		opts    func() Options
		wantErr error
	}{
		{name: "store failure", store: &stubStore{err: loadErr}, opts: testOptions, wantErr: loadErr},
		{name: "empty dataset", store: &stubStore{ds: &domain.Dataset{}}, opts: testOptions, wantErr: domain.ErrEmptyDataset},
		{name: "unknown supplier", store: &stubStore{ds: unknown}, opts: testOptions, wantErr: domain.ErrUnknownSupplier},
		{
			name:  "unknown supplier with default lead time",
			store: &stubStore{ds: unknown},
			opts: func() Options {
				o := testOptions()
				o.LeadTimes = optimizer.NewLeadTimes(nil, 4)
				return o
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewInventoryService(tt.store, nil, tt.opts())
			_, err := svc.Health(context.Background())
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Health() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRecordStore(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{kind: ""},
		{kind: "file"},
		{kind: "mongo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cfg := &config.Config{App: config.AppConfig{RecordStore: tt.kind, DataDir: t.TempDir()}}
			store, closeFn, err := NewRecordStore(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRecordStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer closeFn()
			if _, ok := store.(*repository.FileStore); !ok {
				t.Errorf("store = %T, want *repository.FileStore", store)
			}
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.EngineConfig{
		ForecastDays:          14,
		DashboardForecastDays: 5,
		LeadTimes:             map[string]int{"Supplier Z": 9},
	})

	if opts.ForecastDays != 14 || opts.DashboardForecastDays != 5 {
		t.Errorf("horizons = %d/%d", opts.ForecastDays, opts.DashboardForecastDays)
	}
	if days, err := opts.LeadTimes.Lookup("Supplier Z"); err != nil || days != 9 {
		t.Errorf("Lookup(Supplier Z) = %d, %v", days, err)
	}
	if days, err := opts.LeadTimes.Lookup("Supplier A"); err != nil || days != 7 {
		t.Errorf("Lookup(Supplier A) = %d, %v", days, err)
	}
	if opts.Settings["lead_times"] != "Supplier Z=9" {
		t.Errorf("settings = %v", opts.Settings)
	}
}
