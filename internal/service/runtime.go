package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/cache"
	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
	"github.com/andresuchdata/inventory-optimizer/internal/repository/postgres"
)

// Runtime bundles the inventory service with the connections it holds open.
type Runtime struct {
	Inventory *InventoryService
	Locker    cache.Locker

	closers []func() error
}

// NewRecordStore opens the configured record store ("file" or "postgres").
func NewRecordStore(cfg *config.Config) (repository.RecordStore, func() error, error) {
	switch cfg.App.RecordStore {
	case "", "file":
		return repository.NewFileStore(cfg.App.DataDir), func() error { return nil }, nil
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewRecordStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown record store %q", cfg.App.RecordStore)
	}
}

// NewRuntime wires the record store, report cache and export locker from config.
func NewRuntime(cfg *config.Config) (*Runtime, error) {
	store, closeStore, err := NewRecordStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("record store: %w", err)
	}

	reportCache, locker, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("report cache: %w", err)
	}

	log.Info().
		Str("record_store", cfg.App.RecordStore).
		Bool("cache", cfg.Cache.Enabled).
		Msg("inventory runtime ready")

	return &Runtime{
		Inventory: NewInventoryService(store, reportCache, OptionsFromConfig(cfg.Engine)),
		Locker:    locker,
		closers:   []func() error{reportCache.Close, closeStore},
	}, nil
}

// Close releases every held connection.
func (r *Runtime) Close() error {
	var errs []error
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
