package service

import (
	"context"
	"testing"
	"time"

	"jsmc-rsvp/internal/model"
	"jsmc-rsvp/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixedNow is a Wednesday.
var fixedNow = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t       *testing.T
	ctx     context.Context
	db      *gorm.DB
	catalog *CatalogService
	rsvp    *RsvpService
	members *MemberService
	reports *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		t:       t,
		ctx:     context.Background(),
		db:      db,
		catalog: NewCatalogService(db),
		rsvp:    NewRsvpService(db),
		members: NewMemberService(db),
		reports: NewReportService(db),
	}
	f.catalog.now = func() time.Time { return fixedNow }
	f.rsvp.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) addProgram(name string, events ...model.EventInput) *model.Program {
	f.t.Helper()
	prog, err := f.catalog.AddProgram(f.ctx, name, events)
	require.NoError(f.t, err)
	return prog
}

func (f *fixture) event(prog *model.Program, name string) model.Event {
	f.t.Helper()
	for _, e := range prog.Events {
		if e.EventName == name {
			return e
		}
	}
	f.t.Fatalf("event %q not in program %q", name, prog.ProgName)
	return model.Event{}
}

func (f *fixture) setStatus(prog *model.Program, eventName string, status model.EventStatus) {
	f.t.Helper()
	_, err := f.catalog.UpdateEventStatus(f.ctx, prog.ID, f.event(prog, eventName).ID, status)
	require.NoError(f.t, err)
}

func (f *fixture) submit(name, phone string, sels ...model.EventSelection) *model.SubmitResult {
	f.t.Helper()
	res, err := f.rsvp.Submit(f.ctx, model.SubmitRequest{
		Identity: model.Identity{MemName: name, MemPhoneNumber: phone},
		Events:   sels,
	})
	require.NoError(f.t, err)
	return res
}

func ev(name, date string) model.EventInput {
	return model.EventInput{EventName: name, EventDate: date}
}

func sel(prog, event string, adults, kids int) model.EventSelection {
	return model.EventSelection{ProgramName: prog, EventName: event, RsvpCount: adults, KidsRsvpCount: kids}
}
