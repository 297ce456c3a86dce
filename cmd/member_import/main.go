package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"jsmc-rsvp/internal/config"
	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/model"
	"jsmc-rsvp/internal/service"

	"gorm.io/gorm"
)

// openDB is replaced in tests.
var openDB = func(cfg *config.Config) (*gorm.DB, error) { return cfg.OpenGormDB() }

// member_import loads a member directory sheet (.xlsx or .csv) straight into
// the database, the same way POST /api/update-database does.
func main() {
	configFile := flag.String("config", "", "config file path")
	file := flag.String("file", "", "member sheet to import (.xlsx or .csv)")
	replace := flag.Bool("replace", false, "delete existing members before importing")
	dryRun := flag.Bool("dry-run", false, "validate the sheet without writing")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("config.load_failed", "err", err)
	}
	logger.Init(cfg.Log)
	if *file == "" {
		logger.Fatal("member_import.usage", "hint", "-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("member_import.read_failed", "file", *file, "err", err)
	}
	if *dryRun {
		rows, err := service.ParseSheet(*file, bytes.NewReader(data))
		if err != nil {
			logger.Fatal("member_import.parse_failed", "err", err)
		}
		members, err := service.MapMembers(rows)
		if err != nil {
			logger.Fatal("member_import.invalid", "err", err)
		}
		logger.Info("member_import.dry_run_ok", "members", len(members))
		return
	}

	n, err := importSheet(context.Background(), cfg, *file, data, *replace)
	if err != nil {
		logger.Fatal("member_import.failed", "err", err)
	}
	logger.Info("member_import.done", "members", n, "replace", *replace)
}

// importSheet writes the sheet to the configured database and closes the
// connection before returning, whatever the outcome.
func importSheet(ctx context.Context, cfg *config.Config, name string, data []byte, replace bool) (int, error) {
	db, err := openDB(cfg)
	if err != nil {
		return 0, fmt.Errorf("connect db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("db handle: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			return 0, fmt.Errorf("migrate: %w", err)
		}
	}

	imports, err := service.NewImportService(service.NewMemberService(db))
	if err != nil {
		return 0, fmt.Errorf("init import: %w", err)
	}
	defer imports.Close()
	if cfg.Storage.S3.Bucket != "" {
		if archiver, err := service.NewS3Archiver(ctx, cfg.Storage.S3); err == nil {
			imports.SetFileArchiver(archiver)
		} else {
			logger.Warn("s3.init_failed", "err", err)
		}
	}

	return imports.Import(ctx, name, data, replace)
}
