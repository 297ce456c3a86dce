package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jsmc-rsvp/internal/model"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

var transitions = map[model.EventStatus][]model.EventStatus{
	model.StatusOpen:   {model.StatusClosed, model.StatusCompleted},
	model.StatusClosed: {model.StatusOpen, model.StatusCompleted},
}

// CatalogService manages programs and their embedded events.
type CatalogService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db, now: time.Now}
}

// AddProgram creates the program, or appends the events when a program with
// that name already exists.
func (s *CatalogService) AddProgram(ctx context.Context, progname string, inputs []model.EventInput) (*model.Program, error) {
	progname = strings.TrimSpace(progname)
	if progname == "" {
		return nil, invalid("progname", "is required")
	}
	if len(inputs) == 0 {
		return nil, invalid("progevent", "at least one event is required")
	}

	events := make([]model.Event, 0, len(inputs))
	names := make([]string, 0, len(inputs))
	seen := map[string]bool{}
	for _, in := range inputs {
		ev, err := normalizeEvent(in)
		if err != nil {
			return nil, err
		}
		if seen[ev.EventName] {
			return nil, invalid("progevent", "event %q listed twice", ev.EventName)
		}
		seen[ev.EventName] = true
		events = append(events, ev)
		names = append(names, ev.EventName)
	}

	var prog model.Program
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("prog_name = ?", progname).First(&prog).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			prog = model.Program{ProgName: progname, Events: events}
			if err := tx.Create(&prog).Error; err != nil {
				return fmt.Errorf("insert program: %w", err)
			}
		case err != nil:
			return fmt.Errorf("query program: %w", err)
		default:
			var existing []model.Event
			if err := tx.Where("program_id = ?", prog.ID).Find(&existing).Error; err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			for _, e := range existing {
				if seen[e.EventName] {
					return fmt.Errorf("event %q in program %q: %w", e.EventName, prog.ProgName, ErrAlreadyExists)
				}
			}
			for i := range events {
				events[i].ProgramID = prog.ID
			}
			if err := tx.Create(&events).Error; err != nil {
				return fmt.Errorf("append events: %w", err)
			}
		}
		if err := ensurePicks(tx, prog.ProgName, names); err != nil {
			return err
		}
		return tx.Preload("Events", orderEvents).First(&prog, prog.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

func (s *CatalogService) ListPrograms(ctx context.Context) ([]model.Program, error) {
	progs := []model.Program{}
	err := s.db.WithContext(ctx).Preload("Events", orderEvents).
		Order("created_at DESC, id DESC").Find(&progs).Error
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return progs, nil
}

// ListOpenEvents flattens every open event whose RSVP cutoff has not passed.
func (s *CatalogService) ListOpenEvents(ctx context.Context) ([]model.OpenEvent, error) {
	rows := []model.OpenEvent{}
	err := eventRows(s.db.WithContext(ctx)).
		Where("e.event_status = ?", model.StatusOpen).
		Where("(e.close_rsvp IS NULL OR e.close_rsvp = '' OR e.close_rsvp >= ?)", s.today()).
		Order("e.event_date, p.prog_name, e.event_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list open events: %w", err)
	}
	return rows, nil
}

func (s *CatalogService) ListEventsForProgram(ctx context.Context, progname string, statuses []model.EventStatus) ([]model.Event, error) {
	if len(statuses) == 0 {
		statuses = []model.EventStatus{model.StatusOpen, model.StatusClosed}
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, invalid("status", "unknown status %q", st)
		}
	}

	events := []model.Event{}
	var prog model.Program
	err := s.db.WithContext(ctx).Where("prog_name = ?", progname).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return events, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query program: %w", err)
	}
	err = s.db.WithContext(ctx).
		Where("program_id = ? AND event_status IN ?", prog.ID, statuses).
		Order("event_date, id").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}

func (s *CatalogService) UpdateEventStatus(ctx context.Context, programID, eventID uint, status model.EventStatus) (*model.Event, error) {
	if !status.Valid() {
		return nil, invalid("eventstatus", "unknown status %q", status)
	}
	var ev model.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND program_id = ?", eventID, programID).First(&ev).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("event %d of program %d: %w", eventID, programID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("query event: %w", err)
		}
		if ev.EventStatus == status {
			return nil
		}
		if !canTransition(ev.EventStatus, status) {
			return fmt.Errorf("%s -> %s: %w", ev.EventStatus, status, ErrInvalidTransition)
		}
		if err := tx.Model(&ev).Update("event_status", status).Error; err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		ev.EventStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListCompletedEvents returns completed events, most recently updated first.
func (s *CatalogService) ListCompletedEvents(ctx context.Context) ([]model.CompletedEvent, error) {
	rows := []model.CompletedEvent{}
	err := eventRows(s.db.WithContext(ctx)).
		Select(eventColumns+", e.event_status, e.updated_at").
		Where("e.event_status = ?", model.StatusCompleted).
		Order("e.updated_at DESC, e.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list completed events: %w", err)
	}
	return rows, nil
}

// CloseExpired closes open events whose RSVP cutoff is before today.
func (s *CatalogService) CloseExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Event{}).
		Where("event_status = ? AND close_rsvp <> '' AND close_rsvp < ?", model.StatusOpen, s.today()).
		Update("event_status", model.StatusClosed)
	if res.Error != nil {
		return 0, fmt.Errorf("close expired events: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *CatalogService) today() string { return s.now().Format(dateLayout) }

const eventColumns = "p.id AS program_id, e.id AS event_id, p.prog_name AS program_name, " +
	"e.event_name, e.event_date, e.event_day, e.close_rsvp"

func eventRows(db *gorm.DB) *gorm.DB {
	return db.Table("program_events AS e").
		Select(eventColumns).
		Joins("JOIN programs AS p ON p.id = e.program_id")
}

func orderEvents(db *gorm.DB) *gorm.DB { return db.Order("program_events.id") }

func canTransition(from, to model.EventStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func normalizeEvent(in model.EventInput) (model.Event, error) {
	name := strings.TrimSpace(in.EventName)
	if name == "" {
		return model.Event{}, invalid("eventname", "is required")
	}
	date := strings.TrimSpace(in.EventDate)
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return model.Event{}, invalid("eventdate", "must be YYYY-MM-DD, got %q", in.EventDate)
	}
	day := d.Weekday().String()
	if given := strings.TrimSpace(in.EventDay); given != "" && !strings.EqualFold(given, day) {
		return model.Event{}, invalid("eventday", "%s is a %s, not %s", date, day, given)
	}

	status := in.EventStatus
	if status == "" {
		status = model.StatusOpen
	}
	if !status.Valid() {
		return model.Event{}, invalid("eventstatus", "unknown status %q", status)
	}

	cutoff := strings.TrimSpace(in.CloseRSVP)
	if cutoff != "" {
		if _, err := time.Parse(dateLayout, cutoff); err != nil {
			return model.Event{}, invalid("closersvp", "must be YYYY-MM-DD, got %q", in.CloseRSVP)
		}
		if cutoff > date {
			return model.Event{}, invalid("closersvp", "must not be after the event date")
		}
	}

	return model.Event{
		EventName:   name,
		EventDate:   date,
		EventDay:    day,
		EventStatus: status,
		CloseRSVP:   cutoff,
	}, nil
}

// catalogEvent is an event together with its program's stored name.
type catalogEvent struct {
	model.Event
	ProgName string `gorm:"column:prog_name"`
}

// lookupEvent resolves a (program, event) name pair to its catalog entry.
// The returned names are the catalog's, which may differ in case from the
// input under a case-insensitive collation.
func lookupEvent(tx *gorm.DB, programName, eventName string) (*catalogEvent, error) {
	var ev catalogEvent
	err := tx.Table("program_events AS e").Select("e.*, p.prog_name").
		Joins("JOIN programs AS p ON p.id = e.program_id").
		Where("p.prog_name = ? AND e.event_name = ?", programName, eventName).
		Order("e.id").Limit(1).Scan(&ev).Error
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	if ev.ID == 0 {
		return nil, fmt.Errorf("event %q of program %q: %w", eventName, programName, ErrNotFound)
	}
	return &ev, nil
}

func acceptsRSVPs(ev *model.Event, today string) bool {
	return ev.EventStatus == model.StatusOpen && (ev.CloseRSVP == "" || today <= ev.CloseRSVP)
}
