package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/model"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

// CatalogSync appends cleared RSVP rows to the archive table in the MOI
// catalog before they are deleted locally.
type CatalogSync struct {
	raw        *sdk.RawClient
	sdk        *sdk.SDKClient
	databaseID sdk.DatabaseID
	tableID    sdk.TableID
}

func NewCatalogSync(raw *sdk.RawClient, databaseID, tableID int64) *CatalogSync {
	return &CatalogSync{
		raw:        raw,
		sdk:        sdk.NewSDKClient(raw),
		databaseID: sdk.DatabaseID(databaseID),
		tableID:    sdk.TableID(tableID),
	}
}

func (s *CatalogSync) Ready() bool {
	return s != nil && s.raw != nil && s.databaseID != 0 && s.tableID != 0
}

// ArchiveResponses uploads rows as one CSV file and appends it to the
// archive table. Column order matches cmd/catalog_init.
func (s *CatalogSync) ArchiveResponses(ctx context.Context, rows []model.RsvpResponse) error {
	if !s.Ready() {
		return fmt.Errorf("catalog sync not configured")
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().Format("2006-01-02 15:04:05")

	var buf bytes.Buffer
	for _, r := range rows {
		fmt.Fprintf(&buf, "%d,%s,%s,%s,%s,%s,%s,%s,%d,%d,%s,%s,%s\n",
			r.ID, esc(r.ProgramName), esc(r.EventName), r.EventDate, r.EventDay,
			esc(r.MemName), esc(r.MemPhoneNumber), esc(r.MemEmail),
			r.RsvpCount, r.KidsRsvpCount, r.RsvpConfNumber,
			r.CreatedAt.Format("2006-01-02 15:04:05"), now)
	}
	fileName := fmt.Sprintf("rsvp_%s_%d.csv", time.Now().Format("20060102150405"), rows[0].ID)

	return s.importCSV(ctx, buf.Bytes(), fileName, []sdk.FileAndTableColumnMapping{
		{TableColumn: "id", Column: "id", ColNumInFile: 1},
		{TableColumn: "program_name", Column: "program_name", ColNumInFile: 2},
		{TableColumn: "event_name", Column: "event_name", ColNumInFile: 3},
		{TableColumn: "event_date", Column: "event_date", ColNumInFile: 4},
		{TableColumn: "event_day", Column: "event_day", ColNumInFile: 5},
		{TableColumn: "mem_name", Column: "mem_name", ColNumInFile: 6},
		{TableColumn: "mem_phone_number", Column: "mem_phone_number", ColNumInFile: 7},
		{TableColumn: "mem_email", Column: "mem_email", ColNumInFile: 8},
		{TableColumn: "rsvp_count", Column: "rsvp_count", ColNumInFile: 9},
		{TableColumn: "kids_rsvp_count", Column: "kids_rsvp_count", ColNumInFile: 10},
		{TableColumn: "rsvp_conf_number", Column: "rsvp_conf_number", ColNumInFile: 11},
		{TableColumn: "submitted_at", Column: "submitted_at", ColNumInFile: 12},
		{TableColumn: "archived_at", Column: "archived_at", ColNumInFile: 13},
	})
}

func (s *CatalogSync) importCSV(ctx context.Context, csv []byte, fileName string, mapping []sdk.FileAndTableColumnMapping) error {
	resp, err := s.raw.UploadLocalFile(ctx, bytes.NewReader(csv), fileName, []sdk.FileMeta{{Filename: fileName, Path: "/"}})
	if err != nil {
		return fmt.Errorf("upload %s: %w", fileName, err)
	}
	if len(resp.ConnFileIds) == 0 {
		return fmt.Errorf("upload %s: no conn_file_ids returned", fileName)
	}

	_, err = s.sdk.ImportLocalFileToTable(ctx, &sdk.TableConfig{
		ConnFileIDs:      resp.ConnFileIds,
		NewTable:         false,
		DatabaseID:       s.databaseID,
		TableID:          s.tableID,
		IsColumnName:     false,
		RowStart:         1,
		Conflict:         1,
		ExistedTable:     mapping,
		ExistedTableOpts: sdk.ExistedTableOptions{Method: sdk.ExistedTableOptionAppend},
	})
	if err != nil {
		return fmt.Errorf("import %s: %w", fileName, err)
	}
	logger.Info("catalog_sync.ok", "table", s.tableID, "file", fileName)
	return nil
}

func esc(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
