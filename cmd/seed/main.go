package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/repository"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

type contextKey string

const dbKey contextKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newSchemaFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "schema-file",
		Usage:   "SQL file to apply instead of the built-in schema",
		EnvVars: []string{"SEED_SCHEMA_FILE"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	logger.Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	app := &cli.App{
		Name:  "seed",
		Usage: "Load sales, inventory and product datasets into Postgres",
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create the record store tables",
				Flags:  []cli.Flag{newDBURLFlag(), newSchemaFileFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSchema,
			},
			{
				Name:  "datasets",
				Usage: "Upsert the three datasets from a directory",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newSchemaFileFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing sales_data, inventory_data and products_data (.csv or .xlsx)",
						Value:   "./data",
						EnvVars: []string{"APP_DATA_DIR"},
					},
					&cli.BoolFlag{
						Name:  "apply-schema",
						Usage: "Create the tables before loading",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runDatasets,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func schemaDDL(c *cli.Context) (string, error) {
	path := c.String("schema-file")
	if path == "" {
		return repository.Schema, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read schema file: %w", err)
	}
	return string(data), nil
}

func runSchema(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	ddl, err := schemaDDL(c)
	if err != nil {
		return err
	}

	if err := repository.NewIngestRepository(db).ApplySchema(c.Context, ddl); err != nil {
		return err
	}
	log.Info().Msg("Schema applied")
	return nil
}

func runDatasets(c *cli.Context) error {
	if c.Bool("apply-schema") {
		if err := runSchema(c); err != nil {
			return err
		}
	}

	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	start := time.Now()
	store := repository.NewFileStore(c.String("data-dir"))
	ds, err := store.Load(c.Context)
	if err != nil {
		return fmt.Errorf("load datasets from %s: %w", store.Dir(), err)
	}

	if err := repository.NewIngestRepository(db).IngestDataset(c.Context, ds); err != nil {
		return fmt.Errorf("ingest datasets: %w", err)
	}

	log.Info().
		Int("sales", len(ds.Sales)).
		Int("inventory", len(ds.Inventory)).
		Int("products", len(ds.Products)).
		Dur("duration", time.Since(start)).
		Msg("Database seeding completed")
	return nil
}
