package service

import (
	"testing"

	"jsmc-rsvp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddProgramAppendsToExistingProgram(t *testing.T) {
	f := newFixture(t)
	f.addProgram("Diwali", ev("Puja", "2025-10-20"))
	prog := f.addProgram("Diwali", ev("Dinner", "2025-10-21"))

	require.Len(t, prog.Events, 2)
	assert.Equal(t, "Puja", prog.Events[0].EventName)
	assert.Equal(t, "Dinner", prog.Events[1].EventName)
	assert.Equal(t, "Monday", prog.Events[0].EventDay)
	assert.Equal(t, model.StatusOpen, prog.Events[1].EventStatus)

	progs, err := f.catalog.ListPrograms(f.ctx)
	require.NoError(t, err)
	assert.Len(t, progs, 1)

	programPicks, err := NewPickListService(f.db).ListProgramNames(f.ctx)
	require.NoError(t, err)
	require.Len(t, programPicks, 1)
	assert.Equal(t, "Diwali", programPicks[0].ProgramName)

	eventPicks, err := NewPickListService(f.db).ListEventNames(f.ctx)
	require.NoError(t, err)
	assert.Len(t, eventPicks, 2)
}

func TestAddProgramRejectsDuplicateEventName(t *testing.T) {
	f := newFixture(t)
	f.addProgram("Diwali", ev("Puja", "2025-10-20"))

	_, err := f.catalog.AddProgram(f.ctx, "Diwali", []model.EventInput{ev("Puja", "2025-10-22")})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = f.catalog.AddProgram(f.ctx, "Holi", []model.EventInput{ev("Colors", "2026-03-03"), ev("Colors", "2026-03-04")})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddProgramValidatesDates(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name  string
		input model.EventInput
		field string
	}{
		{"bad date", model.EventInput{EventName: "A", EventDate: "10/20/2025"}, "eventdate"},
		{"wrong weekday", model.EventInput{EventName: "A", EventDate: "2025-10-20", EventDay: "Friday"}, "eventday"},
		{"cutoff after event", model.EventInput{EventName: "A", EventDate: "2025-10-20", CloseRSVP: "2025-10-21"}, "closersvp"},
		{"unknown status", model.EventInput{EventName: "A", EventDate: "2025-10-20", EventStatus: "Pending"}, "eventstatus"},
		{"blank name", model.EventInput{EventName: " ", EventDate: "2025-10-20"}, "eventname"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.catalog.AddProgram(f.ctx, "Diwali", []model.EventInput{tc.input})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	prog := f.addProgram("Diwali", model.EventInput{EventName: "Puja", EventDate: "2025-10-20", EventDay: "monday"})
	assert.Equal(t, "Monday", prog.Events[0].EventDay)
}

func TestListOpenEventsOnlyReturnsOpenEvents(t *testing.T) {
	f := newFixture(t)
	prog := f.addProgram("Diwali",
		ev("Puja", "2025-10-20"),
		ev("Dinner", "2025-10-21"),
		ev("Garba", "2025-10-22"),
		model.EventInput{EventName: "Rangoli", EventDate: "2025-10-23", CloseRSVP: "2025-09-30"},
	)
	f.setStatus(prog, "Dinner", model.StatusClosed)
	f.setStatus(prog, "Garba", model.StatusCompleted)

	open, err := f.catalog.ListOpenEvents(f.ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Puja", open[0].EventName)
	assert.Equal(t, "Diwali", open[0].ProgramName)
	assert.Equal(t, prog.ID, open[0].ProgramID)
}

func TestUpdateEventStatusIsVisibleImmediately(t *testing.T) {
	f := newFixture(t)
	prog := f.addProgram("Diwali", ev("Puja", "2025-10-20"))
	puja := f.event(prog, "Puja")

	got, err := f.catalog.UpdateEventStatus(f.ctx, prog.ID, puja.ID, model.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, got.EventStatus)

	events, err := f.catalog.ListEventsForProgram(f.ctx, "Diwali", []model.EventStatus{model.StatusClosed})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, puja.ID, events[0].ID)

	open, err := f.catalog.ListOpenEvents(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestUpdateEventStatusTransitions(t *testing.T) {
	f := newFixture(t)
	prog := f.addProgram("Diwali", ev("Puja", "2025-10-20"))
	puja := f.event(prog, "Puja")

	f.setStatus(prog, "Puja", model.StatusClosed)
	f.setStatus(prog, "Puja", model.StatusOpen)
	f.setStatus(prog, "Puja", model.StatusOpen)
	f.setStatus(prog, "Puja", model.StatusCompleted)

	_, err := f.catalog.UpdateEventStatus(f.ctx, prog.ID, puja.ID, model.StatusOpen)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.catalog.UpdateEventStatus(f.ctx, prog.ID, puja.ID+100, model.StatusClosed)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.catalog.UpdateEventStatus(f.ctx, prog.ID, puja.ID, "Archived")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestListEventsForProgramDefaultsToOpenAndClosed(t *testing.T) {
	f := newFixture(t)
	prog := f.addProgram("Diwali", ev("Puja", "2025-10-20"), ev("Dinner", "2025-10-21"), ev("Garba", "2025-10-22"))
	f.setStatus(prog, "Dinner", model.StatusClosed)
	f.setStatus(prog, "Garba", model.StatusCompleted)

	events, err := f.catalog.ListEventsForProgram(f.ctx, "Diwali", nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Puja", events[0].EventName)
	assert.Equal(t, "Dinner", events[1].EventName)

	events, err = f.catalog.ListEventsForProgram(f.ctx, "Unknown", nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListCompletedEventsNewestFirst(t *testing.T) {
	f := newFixture(t)
	prog := f.addProgram("Diwali", ev("Puja", "2025-10-20"), ev("Dinner", "2025-10-21"))
	f.setStatus(prog, "Dinner", model.StatusCompleted)
	f.setStatus(prog, "Puja", model.StatusCompleted)

	done, err := f.catalog.ListCompletedEvents(f.ctx)
	require.NoError(t, err)
	require.Len(t, done, 2)
	assert.Equal(t, "Puja", done[0].EventName)
	assert.Equal(t, model.StatusCompleted, done[0].EventStatus)
}

func TestCloseExpired(t *testing.T) {
	f := newFixture(t)
	f.addProgram("Diwali",
		model.EventInput{EventName: "Puja", EventDate: "2025-10-20", CloseRSVP: "2025-09-30"},
		model.EventInput{EventName: "Dinner", EventDate: "2025-10-21", CloseRSVP: "2025-10-01"},
		ev("Garba", "2025-10-22"),
	)

	n, err := f.catalog.CloseExpired(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	closed, err := f.catalog.ListEventsForProgram(f.ctx, "Diwali", []model.EventStatus{model.StatusClosed})
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "Puja", closed[0].EventName)
}
