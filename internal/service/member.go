package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jsmc-rsvp/internal/model"

	valid "github.com/asaskevich/govalidator"
	"gorm.io/gorm"
)

// Header aliases, already normalised by normalizeHeader.
var memberColumns = map[string][]string{
	"memberId":    {"memberid", "id", "memberno", "membernumber"},
	"fullName":    {"name", "fullname", "membername"},
	"address":     {"address", "houseaddress", "homeaddress"},
	"phoneNumber": {"phone", "phonenumber", "phoneno", "mobile", "cell"},
	"email":       {"email", "emailaddress"},
}

type MemberService struct{ db *gorm.DB }

func NewMemberService(db *gorm.DB) *MemberService { return &MemberService{db: db} }

// BulkImport inserts one member per row. Existing members are left alone, so
// importing the same sheet twice doubles the directory; replace wipes the
// directory first, inside the same transaction.
func (s *MemberService) BulkImport(ctx context.Context, rows []SheetRow, replace bool) (int, error) {
	members, err := MapMembers(rows)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, invalid("file", "no member rows found")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replace {
			if err := tx.Where("1 = 1").Delete(&model.Member{}).Error; err != nil {
				return fmt.Errorf("clear members: %w", err)
			}
		}
		if err := tx.CreateInBatches(&members, 500).Error; err != nil {
			return fmt.Errorf("insert members: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// MapMembers converts sheet rows to members, failing on the first bad row.
func MapMembers(rows []SheetRow) ([]model.Member, error) {
	members := make([]model.Member, 0, len(rows))
	for _, r := range rows {
		m := model.Member{
			MemberID:    r.lookup(memberColumns["memberId"]),
			FullName:    r.lookup(memberColumns["fullName"]),
			Address:     r.lookup(memberColumns["address"]),
			PhoneNumber: r.lookup(memberColumns["phoneNumber"]),
			Email:       r.lookup(memberColumns["email"]),
		}
		field := fmt.Sprintf("row %d", r.Line)
		switch {
		case m.MemberID == "":
			return nil, invalid(field, "member id is required")
		case m.FullName == "":
			return nil, invalid(field, "name is required")
		case m.Email != "" && !valid.IsEmail(m.Email):
			return nil, invalid(field, "email %q is not valid", m.Email)
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *MemberService) FindByID(ctx context.Context, memberID string) (*model.Member, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, invalid("memberId", "is required")
	}
	var m model.Member
	err := s.db.WithContext(ctx).Where("member_id = ?", memberID).Order("id").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("member %q: %w", memberID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}
	return &m, nil
}

// FindByNameAndAddress matches both fragments case-insensitively; the lowest
// row id wins when several members match.
func (s *MemberService) FindByNameAndAddress(ctx context.Context, name, addressFragment string) (*model.Member, error) {
	name = strings.TrimSpace(name)
	addressFragment = strings.TrimSpace(addressFragment)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if addressFragment == "" {
		return nil, invalid("houseNumber", "is required")
	}
	var m model.Member
	err := s.db.WithContext(ctx).
		Where("LOWER(full_name) LIKE ? ESCAPE '!' AND LOWER(address) LIKE ? ESCAPE '!'",
			containsPattern(name), containsPattern(addressFragment)).
		Order("id").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("member %q at %q: %w", name, addressFragment, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}
	return &m, nil
}

func (s *MemberService) DeleteAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&model.Member{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete members: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *MemberService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Member{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
