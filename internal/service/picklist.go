package service

import (
	"context"
	"fmt"
	"strings"

	"jsmc-rsvp/internal/model"

	"gorm.io/gorm"
)

// PickListService owns the flat name lists behind the admin dropdowns.
type PickListService struct{ db *gorm.DB }

func NewPickListService(db *gorm.DB) *PickListService { return &PickListService{db: db} }

func (s *PickListService) AddProgramName(ctx context.Context, name string) (*model.ProgramPick, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("program_name", "is required")
	}
	pick := &model.ProgramPick{ProgramName: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := programPickExists(tx, name)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("program %q: %w", name, ErrAlreadyExists)
		}
		if err := tx.Create(pick).Error; err != nil {
			return fmt.Errorf("insert program pick: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pick, nil
}

func (s *PickListService) AddEventName(ctx context.Context, name string) (*model.EventPick, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("event_name", "is required")
	}
	pick := &model.EventPick{EventName: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := eventPickExists(tx, name)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("event %q: %w", name, ErrAlreadyExists)
		}
		if err := tx.Create(pick).Error; err != nil {
			return fmt.Errorf("insert event pick: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pick, nil
}

func (s *PickListService) ListProgramNames(ctx context.Context) ([]model.ProgramPick, error) {
	picks := []model.ProgramPick{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&picks).Error; err != nil {
		return nil, fmt.Errorf("list program picks: %w", err)
	}
	return picks, nil
}

func (s *PickListService) ListEventNames(ctx context.Context) ([]model.EventPick, error) {
	picks := []model.EventPick{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&picks).Error; err != nil {
		return nil, fmt.Errorf("list event picks: %w", err)
	}
	return picks, nil
}

// The name columns may carry a case-insensitive collation (MySQL), so the
// exact comparison happens here.
func programPickExists(tx *gorm.DB, name string) (bool, error) {
	var rows []model.ProgramPick
	if err := tx.Where("program_name = ?", name).Find(&rows).Error; err != nil {
		return false, fmt.Errorf("query program picks: %w", err)
	}
	for _, r := range rows {
		if r.ProgramName == name {
			return true, nil
		}
	}
	return false, nil
}

func eventPickExists(tx *gorm.DB, name string) (bool, error) {
	var rows []model.EventPick
	if err := tx.Where("event_name = ?", name).Find(&rows).Error; err != nil {
		return false, fmt.Errorf("query event picks: %w", err)
	}
	for _, r := range rows {
		if r.EventName == name {
			return true, nil
		}
	}
	return false, nil
}

// ensurePicks keeps the pick-lists a superset of the catalog names.
func ensurePicks(tx *gorm.DB, programName string, eventNames []string) error {
	found, err := programPickExists(tx, programName)
	if err != nil {
		return err
	}
	if !found {
		if err := tx.Create(&model.ProgramPick{ProgramName: programName}).Error; err != nil {
			return fmt.Errorf("insert program pick: %w", err)
		}
	}
	for _, name := range eventNames {
		found, err := eventPickExists(tx, name)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		if err := tx.Create(&model.EventPick{EventName: name}).Error; err != nil {
			return fmt.Errorf("insert event pick: %w", err)
		}
	}
	return nil
}
