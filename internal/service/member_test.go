package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberRows() []SheetRow {
	return []SheetRow{
		{Line: 2, Values: map[string]string{"memberid": "M-1", "name": "Asha Patel", "address": "12 Oak Street", "phone": "555-0101", "email": "asha@example.com"}},
		{Line: 3, Values: map[string]string{"memberid": "M-2", "fullname": "Ravi Shah", "homeaddress": "100% Maple Ave", "mobile": "555-0102"}},
		{Line: 4, Values: map[string]string{"memberid": "M-3", "name": "Asha Patel", "address": "12 Oak Street Apt 2"}},
	}
}

func TestBulkImportMapsColumns(t *testing.T) {
	f := newFixture(t)
	n, err := f.members.BulkImport(f.ctx, memberRows(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	m, err := f.members.FindByID(f.ctx, "M-2")
	require.NoError(t, err)
	assert.Equal(t, "Ravi Shah", m.FullName)
	assert.Equal(t, "100% Maple Ave", m.Address)
	assert.Equal(t, "555-0102", m.PhoneNumber)
	assert.Empty(t, m.Email)
}

func TestBulkImportTwiceDoublesRows(t *testing.T) {
	f := newFixture(t)
	_, err := f.members.BulkImport(f.ctx, memberRows(), false)
	require.NoError(t, err)
	_, err = f.members.BulkImport(f.ctx, memberRows(), false)
	require.NoError(t, err)

	n, err := f.members.Count(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)

	first, err := f.members.FindByID(f.ctx, "M-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.ID)
}

func TestBulkImportReplace(t *testing.T) {
	f := newFixture(t)
	_, err := f.members.BulkImport(f.ctx, memberRows(), false)
	require.NoError(t, err)
	_, err = f.members.BulkImport(f.ctx, memberRows()[:1], true)
	require.NoError(t, err)

	n, err := f.members.Count(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestBulkImportRejectsWholeBatchOnBadRow(t *testing.T) {
	f := newFixture(t)
	rows := memberRows()
	rows = append(rows, SheetRow{Line: 5, Values: map[string]string{"memberid": "M-4", "name": "Bad Mail", "email": "not-an-email"}})

	_, err := f.members.BulkImport(f.ctx, rows, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "row 5", verr.Field)

	_, err = f.members.BulkImport(f.ctx, []SheetRow{{Line: 2, Values: map[string]string{"name": "No Id"}}}, false)
	require.ErrorAs(t, err, &verr)

	n, err := f.members.Count(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFindByNameAndAddress(t *testing.T) {
	f := newFixture(t)
	_, err := f.members.BulkImport(f.ctx, memberRows(), false)
	require.NoError(t, err)

	m, err := f.members.FindByNameAndAddress(f.ctx, "asha", "OAK")
	require.NoError(t, err)
	assert.Equal(t, "M-1", m.MemberID)

	m, err = f.members.FindByNameAndAddress(f.ctx, "ravi", "100%")
	require.NoError(t, err)
	assert.Equal(t, "M-2", m.MemberID)

	_, err = f.members.FindByNameAndAddress(f.ctx, "asha", "1_ oak")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.members.FindByNameAndAddress(f.ctx, "asha", "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestFindByIDNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.members.FindByID(f.ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAllMembers(t *testing.T) {
	f := newFixture(t)
	_, err := f.members.BulkImport(f.ctx, memberRows(), false)
	require.NoError(t, err)

	n, err := f.members.DeleteAll(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = f.members.FindByID(f.ctx, "M-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
