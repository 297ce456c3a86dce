package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/model"

	"github.com/allegro/bigcache"
	"github.com/google/uuid"
)

const (
	previewTTL    = 10 * time.Minute
	previewSample = 5
)

// ImportService runs the member sheet upload, either directly or as a
// preview that is confirmed with a token.
type ImportService struct {
	members  *MemberService
	files    FileArchiver
	previews *bigcache.BigCache
}

type cachedPreview struct {
	Rows    []SheetRow `json:"rows"`
	Replace bool       `json:"replace"`
}

func NewImportService(members *MemberService) (*ImportService, error) {
	cfg := bigcache.DefaultConfig(previewTTL)
	cfg.Shards = 8
	cfg.MaxEntriesInWindow = 128
	cfg.MaxEntrySize = 16 * 1024
	cfg.HardMaxCacheSize = 64
	cfg.CleanWindow = time.Minute
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("preview cache: %w", err)
	}
	return &ImportService{members: members, previews: cache}, nil
}

func (s *ImportService) SetFileArchiver(a FileArchiver) { s.files = a }

// Import parses and stores the sheet in one go.
func (s *ImportService) Import(ctx context.Context, filename string, data []byte, replace bool) (int, error) {
	rows, err := ParseSheet(filename, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	s.archive(ctx, filename, data)
	n, err := s.members.BulkImport(ctx, rows, replace)
	if err != nil {
		return 0, err
	}
	logger.FromContext(ctx).Info("import.done", "file", filename, "members", n, "replace", replace)
	return n, nil
}

// Preview validates the sheet and parks the parsed rows under a token.
func (s *ImportService) Preview(ctx context.Context, filename string, data []byte, replace bool) (*model.ImportPreview, error) {
	rows, err := ParseSheet(filename, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	members, err := MapMembers(rows)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, invalid("file", "no member rows found")
	}

	payload, err := json.Marshal(cachedPreview{Rows: rows, Replace: replace})
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	token := uuid.NewString()
	if err := s.previews.Set(token, payload); err != nil {
		return nil, fmt.Errorf("cache preview: %w", err)
	}
	s.archive(ctx, filename, data)

	sample := members
	if len(sample) > previewSample {
		sample = sample[:previewSample]
	}
	logger.FromContext(ctx).Info("import.preview", "file", filename, "token", token, "rows", len(members))
	return &model.ImportPreview{Token: token, Rows: len(members), Sample: sample, Replace: replace}, nil
}

// Confirm imports the rows parked by Preview. A token works once.
func (s *ImportService) Confirm(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, invalid("token", "is required")
	}
	payload, err := s.previews.Get(token)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return 0, invalid("token", "preview expired, upload the file again")
	}
	if err != nil {
		return 0, fmt.Errorf("read preview: %w", err)
	}
	_ = s.previews.Delete(token)

	var cached cachedPreview
	if err := json.Unmarshal(payload, &cached); err != nil {
		return 0, fmt.Errorf("decode preview: %w", err)
	}
	n, err := s.members.BulkImport(ctx, cached.Rows, cached.Replace)
	if err != nil {
		return 0, err
	}
	logger.FromContext(ctx).Info("import.confirmed", "token", token, "members", n, "replace", cached.Replace)
	return n, nil
}

// archive is best effort; a failed upload never blocks the import.
func (s *ImportService) archive(ctx context.Context, filename string, data []byte) {
	if s.files == nil {
		return
	}
	key, err := s.files.Archive(ctx, filename, data)
	if err != nil {
		logger.FromContext(ctx).Warn("import.archive_failed", "file", filename, "err", err)
		return
	}
	logger.FromContext(ctx).Info("import.archived", "key", key)
}

func (s *ImportService) Close() error { return s.previews.Close() }
