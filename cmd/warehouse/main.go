package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ops-warehouse/internal/config"
	"ops-warehouse/internal/database"
	"ops-warehouse/internal/etl"
	"ops-warehouse/internal/warehouse"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	dbType := flag.String("db", "sqlite", "database dialect (mysql, postgres, or sqlite)")
	task := flag.String("task", "all", "task to run (migrate, dates, seed, load, check, export, reset, or all)")
	window := flag.Int("window", 0, "trailing date window in days (overrides config)")
	batches := flag.Int("batches", 0, "number of load batches (overrides config)")
	batchSize := flag.Int("batch-size", 0, "orders per load batch (overrides config)")
	outDir := flag.String("out", "", "export output directory (overrides config)")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		exitCode = 1
		return
	}
	if *window > 0 {
		cfg.Warehouse.DateWindowDays = *window
	}
	if *batches > 0 {
		cfg.Warehouse.LoadBatches = *batches
	}
	if *batchSize > 0 {
		cfg.Warehouse.LoadBatchSize = *batchSize
	}
	if *outDir != "" {
		cfg.Export.OutputDir = *outDir
	}

	driver, err := database.New(*dbType)
	if err != nil {
		log.Printf("%v", err)
		exitCode = 1
		return
	}

	var dsn string
	switch *dbType {
	case database.DialectPostgres:
		dsn = cfg.Databases.Postgres
	case database.DialectMySQL:
		dsn = cfg.Databases.MySQL
	case database.DialectSQLite:
		dsn = cfg.Databases.SQLite
	}
	if err := driver.Connect(dsn); err != nil {
		log.Printf("Failed to connect to %s: %v", *dbType, err)
		exitCode = 1
		return
	}
	defer driver.Close()

	ctx := context.Background()

	tasks := []string{*task}
	if *task == "all" {
		tasks = []string{"migrate", "dates", "seed", "load", "check", "export"}
	}

	for _, name := range tasks {
		if err := runTask(ctx, driver, cfg, name); err != nil {
			log.Printf("Task %s failed: %v", name, err)
			exitCode = 1
			return
		}
	}
}

func runTask(ctx context.Context, db database.Driver, cfg *config.Config, task string) error {
	switch task {
	case "migrate":
		log.Println("Migrating schema and views...")
		return warehouse.Migrate(ctx, db)

	case "dates":
		log.Printf("Generating %d-day date window...", cfg.Warehouse.DateWindowDays)
		rows := warehouse.GenerateDateRange(time.Now(), cfg.Warehouse.DateWindowDays)
		n, err := warehouse.InsertDateRange(ctx, db, rows)
		if err != nil {
			return err
		}
		log.Printf("Inserted %d dim_date rows", n)
		return nil

	case "seed":
		log.Println("Seeding dimensions...")
		return warehouse.SeedDimensions(ctx, db, warehouse.DefaultSeed())

	case "load":
		log.Printf("Loading facts: %d batches of %d orders...", cfg.Warehouse.LoadBatches, cfg.Warehouse.LoadBatchSize)
		report, err := etl.LoadFacts(ctx, db, etl.Options{
			Batches:   cfg.Warehouse.LoadBatches,
			BatchSize: cfg.Warehouse.LoadBatchSize,
		})
		if err != nil {
			return err
		}
		return printJSON(report)

	case "check":
		log.Println("Running data quality checks...")
		results, err := warehouse.RunChecks(ctx, db)
		if err != nil {
			return err
		}
		return printJSON(results)

	case "export":
		log.Printf("Exporting to %s...", cfg.Export.OutputDir)
		report, err := etl.ExportAll(ctx, db, cfg.Export.OutputDir)
		if err != nil {
			return err
		}
		return printJSON(report)

	case "reset":
		log.Println("Dropping all views and tables...")
		return warehouse.Drop(ctx, db)

	default:
		return fmt.Errorf("unsupported task: %s", task)
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
