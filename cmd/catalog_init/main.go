package main

import (
	"context"
	"flag"

	"jsmc-rsvp/internal/config"
	"jsmc-rsvp/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

// catalog_init creates the MOI archive database, the rsvp_archive table and
// the NL2SQL knowledge describing it. Put the printed ids into moi.database_id
// and moi.archive_table_id.
func main() {
	configFile := flag.String("config", "etc/config-dev.yaml", "config file")
	flag.Parse()

	logger.Init(config.LogConfig{Level: "info", Console: true})

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("config.load_failed", "err", err)
	}
	client, err := cfg.NewRawClient()
	if err != nil {
		logger.Fatal("moi.client_failed", "err", err)
	}
	ctx := context.Background()
	catalogID := sdk.CatalogID(cfg.MOI.CatalogID)
	if catalogID == 0 {
		catalogID = 1
	}

	dbID, tableID, err := initCatalog(ctx, client, catalogID, cfg.MOI.DatabaseName)
	if err != nil {
		logger.Fatal("catalog.init_failed", "err", err)
	}

	if err := initKnowledge(ctx, client); err != nil {
		logger.Fatal("knowledge.init_failed", "err", err)
	}

	logger.Info("catalog_init.done", "database_id", dbID, "archive_table_id", tableID)
}
