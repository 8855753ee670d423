package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/pipeline"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
	"github.com/andresuchdata/inventory-optimizer/internal/service"
	"github.com/andresuchdata/inventory-optimizer/internal/storage"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

type contextKey string

const runtimeKey contextKey = "runtime"

func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	if dir := c.String("data-dir"); dir != "" {
		cfg.App.DataDir = dir
	}
	if kind := c.String("record-store"); kind != "" {
		cfg.App.RecordStore = kind
	}
	return cfg
}

func initRuntime(c *cli.Context) error {
	rt, err := service.NewRuntime(loadConfig(c))
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, runtimeKey, rt)
	return nil
}

func closeRuntime(c *cli.Context) error {
	if rt, ok := c.Context.Value(runtimeKey).(*service.Runtime); ok && rt != nil {
		return rt.Close()
	}
	return nil
}

func runtimeFrom(c *cli.Context) *service.Runtime {
	rt, _ := c.Context.Value(runtimeKey).(*service.Runtime)
	return rt
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportCommand prints one report as JSON.
func reportCommand(name, usage string, fetch func(ctx context.Context, inv *service.InventoryService) (any, error)) *cli.Command {
	return &cli.Command{
		Name:   name,
		Usage:  usage,
		Before: initRuntime,
		After:  closeRuntime,
		Action: func(c *cli.Context) error {
			v, err := fetch(c.Context, runtimeFrom(c).Inventory)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, v)
		},
	}
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStorage, func(), error) {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {}
	if closer, ok := store.(io.Closer); ok {
		closeFn = func() {
			if err := closer.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close object storage client")
			}
		}
	}
	return store, closeFn, nil
}

func main() {
	app := &cli.App{
		Name:  "report",
		Usage: "Inventory replenishment reports",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Usage: "Directory the file record store reads from", EnvVars: []string{"APP_DATA_DIR"}},
			&cli.StringFlag{Name: "record-store", Usage: "file or postgres", EnvVars: []string{"APP_RECORD_STORE"}},
		},
		Before: func(c *cli.Context) error {
			cfg := config.Load()
			logger.Configure(cfg.App.LogLevel, cfg.App.LogFormat)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "forecast",
				Usage: "Predict daily demand",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "product-id", Usage: "Limit the forecast to one product"},
					&cli.IntFlag{Name: "days", Usage: "Forecast horizon in days (0 uses the configured default)"},
				},
				Before: initRuntime,
				After:  closeRuntime,
				Action: func(c *cli.Context) error {
					points, err := runtimeFrom(c).Inventory.Forecast(c.Context, c.String("product-id"), c.Int("days"))
					if err != nil {
						return err
					}
					return printJSON(c.App.Writer, points)
				},
			},
			reportCommand("velocity", "Per-product velocity profiles", func(ctx context.Context, inv *service.InventoryService) (any, error) {
				return inv.VelocityProfiles(ctx)
			}),
			reportCommand("purchase-orders", "Reorder recommendations by priority", func(ctx context.Context, inv *service.InventoryService) (any, error) {
				return inv.PurchaseOrders(ctx)
			}),
			reportCommand("slow-movers", "Overstocked or stale products with promotions", func(ctx context.Context, inv *service.InventoryService) (any, error) {
				return inv.SlowMovers(ctx)
			}),
			reportCommand("health", "Inventory health metrics", func(ctx context.Context, inv *service.InventoryService) (any, error) {
				return inv.Health(ctx)
			}),
			reportCommand("dashboard", "Health, purchase orders, slow movers and a short forecast", func(ctx context.Context, inv *service.InventoryService) (any, error) {
				return inv.Dashboard(ctx)
			}),
			{
				Name:  "export",
				Usage: "Write every report as CSV and upload it to object storage",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Usage: "Concurrent report workers", Value: 4},
					&cli.IntFlag{Name: "forecast-days", Usage: "Forecast horizon of the exported forecast (0 uses the configured default)"},
					&cli.BoolFlag{Name: "no-upload", Usage: "Keep reports local even when storage is configured"},
				},
				Before: initRuntime,
				After:  closeRuntime,
				Action: runExport,
			},
			{
				Name:  "sync",
				Usage: "Download the newest datasets from object storage into the data dir",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "Object prefix the datasets live under", Value: "datasets"},
				},
				Action: runSync,
			},
			{
				Name:   "invalidate-cache",
				Usage:  "Drop every cached report",
				Before: initRuntime,
				After:  closeRuntime,
				Action: func(c *cli.Context) error {
					n, err := runtimeFrom(c).Inventory.InvalidateCache(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "invalidated %d cached reports\n", n)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("report failed")
	}
}

func runExport(c *cli.Context) error {
	cfg := loadConfig(c)
	rt := runtimeFrom(c)

	var store storage.ObjectStorage
	if !c.Bool("no-upload") {
		s, closeStore, err := openStorage(c.Context, cfg.Storage)
		if err != nil {
			return fmt.Errorf("object storage: %w", err)
		}
		defer closeStore()
		store = s
	}

	exportCfg := pipeline.DefaultExportConfig(cfg.App.OutputDir)
	exportCfg.WorkerCount = c.Int("workers")
	exportCfg.Prefix = cfg.Storage.Prefix
	if ttl := time.Duration(cfg.Cache.LockTTLSeconds) * time.Second; ttl > 0 {
		exportCfg.LockTTL = ttl
	}

	orchestrator := pipeline.NewOrchestrator(exportCfg, store, rt.Locker)
	run, err := orchestrator.Run(c.Context, pipeline.ReportJobs(rt.Inventory, c.Int("forecast-days")))
	if run != nil {
		if perr := printJSON(c.App.Writer, run); perr != nil {
			log.Warn().Err(perr).Msg("failed to print export run")
		}
	}
	return err
}

func runSync(c *cli.Context) error {
	cfg := loadConfig(c)

	store, closeStore, err := openStorage(c.Context, cfg.Storage)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}
	if store == nil {
		return fmt.Errorf("object storage is not configured (set STORAGE_PROVIDER)")
	}
	defer closeStore()

	paths, err := storage.SyncDatasets(c.Context, store, c.String("prefix"), cfg.App.DataDir, repository.DatasetNames)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, paths)
}
