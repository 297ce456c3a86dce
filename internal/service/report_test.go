package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	f.addProgram("Holi", ev("Colors", "2025-10-25"))
	f.addProgram("Diwali", ev("Puja", "2025-10-20"), ev("Dinner", "2025-10-20"))
	f.submit("Asha", "555-1", sel("Diwali", "Puja", 2, 1), sel("Holi", "Colors", 1, 0))
	f.submit("Ravi", "555-2", sel("Diwali", "Puja", 3, 2), sel("Diwali", "Dinner", 1, 1))

	stats, err := f.reports.DashboardStats(f.ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "Dinner", stats[0].EventName)
	assert.Equal(t, "Puja", stats[1].EventName)
	assert.Equal(t, "Colors", stats[2].EventName)

	assert.Equal(t, 5, stats[1].TotalRSVPs)
	assert.Equal(t, 3, stats[1].TotalKids)
	assert.Equal(t, 2, stats[1].TotalResponses)
	assert.Equal(t, "Monday", stats[1].EventDay)
	assert.Equal(t, 1, stats[2].TotalResponses)
}

func TestDashboardStatsEmpty(t *testing.T) {
	f := newFixture(t)
	stats, err := f.reports.DashboardStats(f.ctx)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestMemberDetails(t *testing.T) {
	f := newFixture(t)
	f.addProgram("Diwali", ev("Puja", "2025-10-20"))
	f.submit("Asha", "555-1", sel("Diwali", "Puja", 2, 1))
	f.submit("Ravi", "555-2", sel("Diwali", "Puja", 1, 0))

	details, err := f.reports.MemberDetails(f.ctx, "Diwali", "Puja")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Asha", details[0].MemName)
	assert.Equal(t, "555-1", details[0].MemPhoneNumber)
	assert.Equal(t, 2, details[0].RsvpCount)
	assert.Equal(t, 1, details[0].KidsRsvpCount)

	details, err = f.reports.MemberDetails(f.ctx, "Diwali", "Nope")
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestExportReport(t *testing.T) {
	f := newFixture(t)
	f.addProgram("Diwali", ev("Lakshmi Puja", "2025-10-20"))
	f.submit("Asha", "555-1", sel("Diwali", "Lakshmi Puja", 2, 1))
	f.submit("Ravi", "555-2", sel("Diwali", "Lakshmi Puja", 3, 0))

	name, data, err := f.reports.ExportReport(f.ctx, "Diwali", "Lakshmi Puja")
	require.NoError(t, err)
	assert.Equal(t, "Diwali_Lakshmi_Puja_rsvps.xlsx", name)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("RSVPs")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Name", "Phone", "Adults", "Kids"}, rows[0])
	assert.Equal(t, []string{"Asha", "555-1", "2", "1"}, rows[1])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "5", rows[3][2])
	assert.Equal(t, "1", rows[3][3])

	_, _, err = f.reports.ExportReport(f.ctx, "Diwali", "Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
