package main

import (
	"context"
	"fmt"
	"strings"

	"jsmc-rsvp/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

const archiveTable = "rsvp_archive"

// Column order must match service.CatalogSync.ArchiveResponses.
var archiveColumns = []sdk.Column{
	{Name: "id", Type: "BIGINT", IsPk: true, Comment: "rsvp_responses.id at archive time"},
	{Name: "program_name", Type: "VARCHAR(200)", Comment: "program the RSVP was made for"},
	{Name: "event_name", Type: "VARCHAR(200)", Comment: "event within the program"},
	{Name: "event_date", Type: "DATE", Comment: "date of the event"},
	{Name: "event_day", Type: "VARCHAR(10)", Comment: "weekday of the event"},
	{Name: "mem_name", Type: "VARCHAR(200)", Comment: "name given on the RSVP"},
	{Name: "mem_phone_number", Type: "VARCHAR(40)", Comment: "phone given on the RSVP"},
	{Name: "mem_email", Type: "VARCHAR(200)", Comment: "email given on the RSVP"},
	{Name: "rsvp_count", Type: "INT", Comment: "adults attending"},
	{Name: "kids_rsvp_count", Type: "INT", Comment: "kids attending"},
	{Name: "rsvp_conf_number", Type: "VARCHAR(6)", Comment: "6-digit confirmation code"},
	{Name: "submitted_at", Type: "DATETIME", Comment: "when the RSVP was submitted"},
	{Name: "archived_at", Type: "DATETIME", Comment: "when the event was cleared"},
}

func initCatalog(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, sdk.TableID, error) {
	dbID, err := ensureDatabase(ctx, client, catalogID, dbName)
	if err != nil {
		return 0, 0, err
	}

	resp, err := client.CreateTable(ctx, &sdk.TableCreateRequest{
		DatabaseID: dbID,
		Name:       archiveTable,
		Columns:    archiveColumns,
		Comment:    "RSVP rows removed from the live ledger after an event completed",
	})
	if err != nil {
		if isDuplicate(err) {
			logger.Info("catalog.table_exists", "name", archiveTable, "hint", "reuse the id from the first run")
			return dbID, 0, nil
		}
		return 0, 0, fmt.Errorf("create table %s: %w", archiveTable, err)
	}
	logger.Info("catalog.table_created", "name", archiveTable, "id", resp.TableID)
	return dbID, resp.TableID, nil
}

func ensureDatabase(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, error) {
	dbResp, err := client.CreateDatabase(ctx, &sdk.DatabaseCreateRequest{
		CatalogID:    catalogID,
		DatabaseName: dbName,
		Comment:      "JSMC RSVP archive",
	})
	if err != nil {
		if isDuplicate(err) {
			logger.Info("catalog.database_exists", "name", dbName)
			return discoverDatabaseID(ctx, client, catalogID, dbName)
		}
		return 0, fmt.Errorf("create database: %w", err)
	}
	logger.Info("catalog.database_created", "id", dbResp.DatabaseID)
	return dbResp.DatabaseID, nil
}

func discoverDatabaseID(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, error) {
	resp, err := client.ListDatabases(ctx, &sdk.DatabaseListRequest{CatalogID: catalogID})
	if err != nil {
		return 0, fmt.Errorf("list databases: %w", err)
	}
	for _, db := range resp.List {
		if db.DatabaseName == dbName {
			logger.Info("catalog.database_discovered", "id", db.DatabaseID)
			return db.DatabaseID, nil
		}
	}
	return 0, fmt.Errorf("database %s not found in catalog %d", dbName, catalogID)
}

func isDuplicate(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") || strings.Contains(s, "already exist") || strings.Contains(s, "conflict")
}
