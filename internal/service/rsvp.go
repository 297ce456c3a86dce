package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/model"

	valid "github.com/asaskevich/govalidator"
	"gorm.io/gorm"
)

const maxCodeAttempts = 20

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Archiver copies ledger rows somewhere durable before they are cleared.
type Archiver interface {
	ArchiveResponses(ctx context.Context, rows []model.RsvpResponse) error
}

// RsvpService owns the RSVP ledger. Rows keep the program and event names
// they were submitted under; EventID is only used to read the live status.
type RsvpService struct {
	db        *gorm.DB
	outbox    *Outbox
	archive   Archiver
	verifyURL string
	now       func() time.Time
	codes     func() (string, error)
}

func NewRsvpService(db *gorm.DB) *RsvpService {
	return &RsvpService{db: db, now: time.Now, codes: newConfirmationCode}
}

func (s *RsvpService) SetOutbox(o *Outbox)     { s.outbox = o }
func (s *RsvpService) SetArchiver(a Archiver)  { s.archive = a }
func (s *RsvpService) SetVerifyURL(url string) { s.verifyURL = url }

func (s *RsvpService) today() string { return s.now().Format(dateLayout) }

// Submit records one row per selected event, all sharing one new
// confirmation code. Either every row is stored or none is.
func (s *RsvpService) Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResult, error) {
	id := trimIdentity(req.Identity)
	if id.MemName == "" {
		return nil, invalid("memname", "is required")
	}
	if id.MemEmail != "" && !valid.IsEmail(id.MemEmail) {
		return nil, invalid("mememail", "%q is not a valid email", id.MemEmail)
	}
	key := identityKey(id)
	if key == "" {
		return nil, invalid("memphonenumber", "is required when no memberId is given")
	}
	if len(req.Events) == 0 {
		return nil, invalid("events", "select at least one event")
	}

	selections := make([]model.EventSelection, len(req.Events))
	seen := map[string]bool{}
	for i, sel := range req.Events {
		sel.ProgramName = strings.TrimSpace(sel.ProgramName)
		sel.EventName = strings.TrimSpace(sel.EventName)
		if sel.ProgramName == "" || sel.EventName == "" {
			return nil, invalid("events", "programname and eventname are required")
		}
		if err := checkCounts(sel.RsvpCount, sel.KidsRsvpCount); err != nil {
			return nil, err
		}
		if sel.RsvpCount+sel.KidsRsvpCount < 1 {
			return nil, invalid("rsvpcount", "at least one attendee is required for %s", sel.EventName)
		}
		k := sel.ProgramName + "\x00" + sel.EventName
		if seen[k] {
			return nil, invalid("events", "%s / %s selected twice", sel.ProgramName, sel.EventName)
		}
		seen[k] = true
		selections[i] = sel
	}

	var rows []model.RsvpResponse
	var code string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		today := s.today()
		events := make([]*catalogEvent, len(selections))
		for i, sel := range selections {
			ev, err := lookupEvent(tx, sel.ProgramName, sel.EventName)
			if err != nil {
				return err
			}
			if !acceptsRSVPs(&ev.Event, today) {
				return fmt.Errorf("%s / %s: %w", sel.ProgramName, sel.EventName, ErrNotOpen)
			}
			var n int64
			err = tx.Model(&model.RsvpResponse{}).
				Where("event_id = ? AND identity_key = ?", ev.ID, key).Count(&n).Error
			if err != nil {
				return fmt.Errorf("check duplicate: %w", err)
			}
			if n > 0 {
				return fmt.Errorf("%s / %s: %w", sel.ProgramName, sel.EventName, ErrDuplicateRSVP)
			}
			events[i] = ev
		}

		var err error
		if code, err = s.uniqueCode(tx); err != nil {
			return err
		}
		rows = make([]model.RsvpResponse, len(selections))
		for i, sel := range selections {
			rows[i] = model.RsvpResponse{
				EventID:        events[i].ID,
				ProgramName:    events[i].ProgName,
				EventName:      events[i].EventName,
				EventDate:      events[i].EventDate,
				EventDay:       events[i].EventDay,
				MemberID:       id.MemberID,
				MemName:        id.MemName,
				MemAddress:     id.MemAddress,
				MemPhoneNumber: id.MemPhoneNumber,
				MemEmail:       id.MemEmail,
				RsvpCount:      sel.RsvpCount,
				KidsRsvpCount:  sel.KidsRsvpCount,
				RsvpConfNumber: code,
				IdentityKey:    key,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRSVP
			}
			return fmt.Errorf("insert rsvp: %w", err)
		}
		return s.outbox.Enqueue(tx, EventRSVPSubmitted, code, rows)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("rsvp.submitted", "code", code, "events", len(rows), "member_id", id.MemberID)
	return &model.SubmitResult{
		Message:        "RSVP submitted successfully",
		RsvpConfNumber: code,
		Responses:      rows,
	}, nil
}

// FindByConfirmationCode returns every row under code together with the
// current status of its event.
func (s *RsvpService) FindByConfirmationCode(ctx context.Context, code string) ([]model.RsvpView, error) {
	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return nil, invalid("rsvpconfnumber", "must be 6 digits")
	}
	db := s.db.WithContext(ctx)
	var rows []model.RsvpResponse
	if err := db.Where("rsvp_conf_number = ?", code).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query rsvp: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("confirmation %s: %w", code, ErrNotFound)
	}

	today := s.today()
	views := make([]model.RsvpView, len(rows))
	for i, r := range rows {
		ev, err := liveEvent(db, r)
		if err != nil {
			return nil, err
		}
		views[i] = model.RsvpView{RsvpResponse: r}
		if ev != nil {
			views[i].EventStatus = ev.EventStatus
			views[i].Editable = acceptsRSVPs(ev, today)
		}
	}
	return views, nil
}

// UpdateCounts changes the head counts on one row. The caller must present
// the row's confirmation code and the event must still accept RSVPs.
func (s *RsvpService) UpdateCounts(ctx context.Context, id uint, code string, adults, kids int) (*model.RsvpResponse, error) {
	if err := checkCounts(adults, kids); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)

	var row model.RsvpResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&row, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("rsvp %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("query rsvp: %w", err)
		}
		if row.RsvpConfNumber != code {
			return ErrForbidden
		}
		ev, err := liveEvent(tx, row)
		if err != nil {
			return err
		}
		if ev == nil || !acceptsRSVPs(ev, s.today()) {
			return fmt.Errorf("%s / %s: %w", row.ProgramName, row.EventName, ErrNotEditable)
		}
		err = tx.Model(&row).Updates(map[string]any{"rsvp_count": adults, "kids_rsvp_count": kids}).Error
		if err != nil {
			return fmt.Errorf("update rsvp: %w", err)
		}
		row.RsvpCount, row.KidsRsvpCount = adults, kids
		return s.outbox.Enqueue(tx, EventRSVPUpdated, row.RsvpConfNumber, row)
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("rsvp.updated", "id", row.ID, "adults", adults, "kids", kids)
	return &row, nil
}

func (s *RsvpService) FindByProgramAndEvent(ctx context.Context, programName, eventName string) ([]model.RsvpResponse, error) {
	rows := []model.RsvpResponse{}
	err := s.db.WithContext(ctx).
		Where("program_name = ? AND event_name = ?", programName, eventName).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query rsvp: %w", err)
	}
	return rows, nil
}

func (s *RsvpService) DeleteByProgramAndEvent(ctx context.Context, programName, eventName string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("program_name = ? AND event_name = ?", programName, eventName).
		Delete(&model.RsvpResponse{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete rsvp: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ClearCompleted deletes the ledger rows of a completed event, archiving
// them first when an Archiver is set. Without names it picks the most
// recently completed event.
func (s *RsvpService) ClearCompleted(ctx context.Context, req model.ClearRequest) (*model.ClearResult, error) {
	prog := strings.TrimSpace(req.ProgramName)
	evName := strings.TrimSpace(req.EventName)
	if (prog == "") != (evName == "") {
		return nil, invalid("eventname", "programname and eventname go together")
	}

	result := &model.ClearResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if prog == "" {
			var latest model.CompletedEvent
			err := eventRows(tx).
				Select(eventColumns+", e.event_status, e.updated_at").
				Where("e.event_status = ?", model.StatusCompleted).
				Order("e.updated_at DESC, e.id DESC").Limit(1).
				Scan(&latest).Error
			if err != nil {
				return fmt.Errorf("query completed event: %w", err)
			}
			if latest.EventID == 0 {
				return fmt.Errorf("completed event: %w", ErrNotFound)
			}
			prog, evName = latest.ProgramName, latest.EventName
		} else {
			ev, err := lookupEvent(tx, prog, evName)
			if err != nil {
				return err
			}
			if ev.EventStatus != model.StatusCompleted {
				return fmt.Errorf("%s / %s is %s: %w", prog, evName, ev.EventStatus, ErrNotCompleted)
			}
			prog, evName = ev.ProgName, ev.EventName
		}
		result.ProgramName, result.EventName = prog, evName

		var rows []model.RsvpResponse
		err := tx.Where("program_name = ? AND event_name = ?", prog, evName).Order("id").Find(&rows).Error
		if err != nil {
			return fmt.Errorf("query rsvp: %w", err)
		}
		if s.archive != nil && len(rows) > 0 {
			if err := s.archive.ArchiveResponses(ctx, rows); err != nil {
				return fmt.Errorf("archive rsvp: %w", err)
			}
			result.Archived = true
		}
		res := tx.Where("program_name = ? AND event_name = ?", prog, evName).Delete(&model.RsvpResponse{})
		if res.Error != nil {
			return fmt.Errorf("delete rsvp: %w", res.Error)
		}
		result.Deleted = res.RowsAffected
		return s.outbox.Enqueue(tx, EventRSVPCleared, prog+"/"+evName, result)
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("rsvp.cleared", "program", prog, "event", evName,
		"deleted", result.Deleted, "archived", result.Archived)
	return result, nil
}

// ConfirmationQR renders the verify link for an existing code.
func (s *RsvpService) ConfirmationQR(ctx context.Context, code string) ([]byte, error) {
	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return nil, invalid("rsvpconfnumber", "must be 6 digits")
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&model.RsvpResponse{}).Where("rsvp_conf_number = ?", code).Count(&n).Error
	if err != nil {
		return nil, fmt.Errorf("query rsvp: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("confirmation %s: %w", code, ErrNotFound)
	}
	return EncodeQR(s.verifyURL+code, qrSize)
}

func (s *RsvpService) uniqueCode(tx *gorm.DB) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.codes()
		if err != nil {
			return "", fmt.Errorf("generate confirmation code: %w", err)
		}
		var n int64
		if err := tx.Model(&model.RsvpResponse{}).Where("rsvp_conf_number = ?", code).Count(&n).Error; err != nil {
			return "", fmt.Errorf("check confirmation code: %w", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free confirmation code after %d attempts", maxCodeAttempts)
}

func newConfirmationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// liveEvent finds the catalog event behind a ledger row, by id first and by
// name when the id is gone. A nil event means it no longer exists.
func liveEvent(tx *gorm.DB, r model.RsvpResponse) (*model.Event, error) {
	if r.EventID != 0 {
		var ev model.Event
		err := tx.Where("id = ?", r.EventID).Limit(1).Find(&ev).Error
		if err != nil {
			return nil, fmt.Errorf("query event: %w", err)
		}
		if ev.ID != 0 {
			return &ev, nil
		}
	}
	ev, err := lookupEvent(tx, r.ProgramName, r.EventName)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev.Event, nil
}

func checkCounts(adults, kids int) error {
	if adults < 0 {
		return invalid("rsvpcount", "must not be negative")
	}
	if kids < 0 {
		return invalid("kidsrsvpcount", "must not be negative")
	}
	return nil
}

func trimIdentity(id model.Identity) model.Identity {
	return model.Identity{
		MemberID:       strings.TrimSpace(id.MemberID),
		MemName:        strings.TrimSpace(id.MemName),
		MemAddress:     strings.TrimSpace(id.MemAddress),
		MemPhoneNumber: strings.TrimSpace(id.MemPhoneNumber),
		MemEmail:       strings.TrimSpace(id.MemEmail),
	}
}

// identityKey is what the duplicate guard compares: the member id, or for
// guests the lower-cased name plus the digits of the phone number.
func identityKey(id model.Identity) string {
	if id.MemberID != "" {
		return "m:" + id.MemberID
	}
	digits := valid.WhiteList(id.MemPhoneNumber, "0-9")
	if digits == "" {
		return ""
	}
	return "g:" + strings.ToLower(id.MemName) + "|" + digits
}
