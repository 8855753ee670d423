package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/inventory-optimizer/internal/cache"
	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/optimizer"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
)

// Options tunes an InventoryService.
type Options struct {
	LeadTimes             optimizer.LeadTimes
	Forecaster            *optimizer.Forecaster
	ForecastDays          int
	DashboardForecastDays int
	// Settings are folded into the cache fingerprint; include anything that changes output.
	Settings map[string]string
	Now      func() time.Time
}

// OptionsFromConfig builds service options from the engine settings.
func OptionsFromConfig(cfg config.EngineConfig) Options {
	jitter := optimizer.NoJitter()
	if cfg.JitterEnabled {
		jitter = optimizer.NewUniformJitter(cfg.JitterSeed)
	}

	suppliers := make([]string, 0, len(cfg.LeadTimes))
	for supplier, days := range cfg.LeadTimes {
		suppliers = append(suppliers, supplier+"="+strconv.Itoa(days))
	}
	sort.Strings(suppliers)

	return Options{
		LeadTimes:             optimizer.NewLeadTimes(cfg.LeadTimes, cfg.DefaultLeadTimeDays),
		Forecaster:            optimizer.NewForecaster(jitter, time.Now),
		ForecastDays:          cfg.ForecastDays,
		DashboardForecastDays: cfg.DashboardForecastDays,
		Settings: map[string]string{
			"lead_times":        strings.Join(suppliers, ","),
			"default_lead_time": strconv.Itoa(cfg.DefaultLeadTimeDays),
		},
	}
}

// InventoryService loads a fresh dataset snapshot per call and runs the
// replenishment calculations over it, caching deterministic reports.
type InventoryService struct {
	store      repository.RecordStore
	cache      cache.ReportCache
	leadTimes  optimizer.LeadTimes
	forecaster *optimizer.Forecaster

	forecastDays          int
	dashboardForecastDays int
	settings              map[string]string
	now                   func() time.Time
}

func NewInventoryService(store repository.RecordStore, cacheImpl cache.ReportCache, opts Options) *InventoryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = optimizer.DefaultHorizon
	}
	if opts.DashboardForecastDays <= 0 {
		opts.DashboardForecastDays = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Forecaster == nil {
		opts.Forecaster = optimizer.NewForecaster(nil, opts.Now)
	}
	if opts.LeadTimes.IsZero() {
		opts.LeadTimes = optimizer.DefaultLeadTimes()
	}

	return &InventoryService{
		store:                 store,
		cache:                 cacheImpl,
		leadTimes:             opts.LeadTimes,
		forecaster:            opts.Forecaster,
		forecastDays:          opts.ForecastDays,
		dashboardForecastDays: opts.DashboardForecastDays,
		settings:              opts.Settings,
		now:                   opts.Now,
	}
}

// snapshot is one immutable load of the record store.
type snapshot struct {
	data        *domain.Dataset
	fingerprint string
}

func (s *InventoryService) load(ctx context.Context) (*snapshot, error) {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load datasets: %w", err)
	}
	return &snapshot{data: ds, fingerprint: cache.Fingerprint(ds, s.settings)}, nil
}

// cached returns the report from cache or computes and stores it. Cache failures
// are logged and never fail the request.
func cached[T any](ctx context.Context, c cache.ReportCache, report, fingerprint string, compute func() (T, error)) (T, error) {
	var value T
	if ok, err := c.Get(ctx, report, fingerprint, &value); err == nil && ok {
		return value, nil
	} else if err != nil {
		log.Warn().Err(err).Str("report", report).Msg("inventory: cache get failed")
	}

	value, err := compute()
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, report, fingerprint, value); err != nil {
		log.Warn().Err(err).Str("report", report).Msg("inventory: cache set failed")
	}
	return value, nil
}

func (s *InventoryService) profiles(ctx context.Context, snap *snapshot) ([]domain.VelocityProfile, error) {
	return cached(ctx, s.cache, domain.ReportVelocity, snap.fingerprint, func() ([]domain.VelocityProfile, error) {
		return optimizer.ComputeVelocityProfiles(snap.data.Sales, snap.data.Products, s.leadTimes)
	})
}

func (s *InventoryService) purchaseOrders(ctx context.Context, snap *snapshot) ([]domain.PurchaseOrder, error) {
	return cached(ctx, s.cache, domain.ReportPurchaseOrders, snap.fingerprint, func() ([]domain.PurchaseOrder, error) {
		profiles, err := s.profiles(ctx, snap)
		if err != nil {
			return nil, err
		}
		return optimizer.GeneratePurchaseOrders(profiles, snap.data.Inventory), nil
	})
}

func (s *InventoryService) slowMovers(ctx context.Context, snap *snapshot) ([]domain.SlowMover, error) {
	return cached(ctx, s.cache, domain.ReportSlowMovers, snap.fingerprint, func() ([]domain.SlowMover, error) {
		profiles, err := s.profiles(ctx, snap)
		if err != nil {
			return nil, err
		}
		return optimizer.DetectSlowMovers(profiles, snap.data.Inventory), nil
	})
}

func (s *InventoryService) health(ctx context.Context, snap *snapshot) (domain.HealthMetrics, error) {
	return cached(ctx, s.cache, domain.ReportHealth, snap.fingerprint, func() (domain.HealthMetrics, error) {
		profiles, err := s.profiles(ctx, snap)
		if err != nil {
			return domain.HealthMetrics{}, err
		}
		return optimizer.ComputeHealthMetrics(profiles, snap.data.Inventory)
	})
}

// Forecast predicts daily demand for productID (all products when empty). Forecasts
// carry jitter and are never cached. A zero horizon uses the configured default.
func (s *InventoryService) Forecast(ctx context.Context, productID string, days int) ([]domain.ForecastPoint, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if days == 0 {
		days = s.forecastDays
	}
	return s.forecaster.ForecastDemand(snap.data.Sales, productID, days)
}

func (s *InventoryService) VelocityProfiles(ctx context.Context) ([]domain.VelocityProfile, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.profiles(ctx, snap)
}

func (s *InventoryService) PurchaseOrders(ctx context.Context) ([]domain.PurchaseOrder, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.purchaseOrders(ctx, snap)
}

func (s *InventoryService) SlowMovers(ctx context.Context) ([]domain.SlowMover, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.slowMovers(ctx, snap)
}

func (s *InventoryService) Health(ctx context.Context) (domain.HealthMetrics, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return domain.HealthMetrics{}, err
	}
	return s.health(ctx, snap)
}

// Dashboard builds every overview report from one snapshot in parallel.
func (s *InventoryService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	// Warm the shared profiles once so the parallel reports do not race to compute them.
	if _, err := s.profiles(ctx, snap); err != nil {
		return nil, err
	}

	dashboard := &domain.Dashboard{GeneratedAt: s.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		health, err := s.health(gctx, snap)
		dashboard.Health = health
		return err
	})
	g.Go(func() error {
		orders, err := s.purchaseOrders(gctx, snap)
		dashboard.PurchaseOrders = orders
		return err
	})
	g.Go(func() error {
		movers, err := s.slowMovers(gctx, snap)
		dashboard.SlowMovers = movers
		return err
	})
	g.Go(func() error {
		points, err := s.forecaster.ForecastDemand(snap.data.Sales, "", s.dashboardForecastDays)
		dashboard.Forecast = points
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// InvalidateCache drops every cached report.
func (s *InventoryService) InvalidateCache(ctx context.Context) (int, error) {
	n, err := s.cache.InvalidateAll(ctx)
	if err != nil {
		return 0, err
	}
	log.Info().Int("keys", n).Msg("inventory: report cache invalidated")
	return n, nil
}
