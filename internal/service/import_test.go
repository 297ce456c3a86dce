package service

import (
	"context"
	"errors"
	"testing"

	"jsmc-rsvp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const directoryCSV = "memberId,name,address,phone,email\n" +
	"M-1,Asha Patel,12 Oak Street,555-0101,asha@example.com\n" +
	"M-2,Ravi Shah,9 Elm Road,555-0102,\n"

type memArchiver struct {
	keys []string
	err  error
}

func (a *memArchiver) Archive(_ context.Context, name string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, name)
	return "member-imports/" + name, nil
}

func newImportService(t *testing.T) (*ImportService, *MemberService) {
	t.Helper()
	members := NewMemberService(testutil.NewDB(t))
	s, err := NewImportService(members)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, members
}

func TestImportArchivesAndStores(t *testing.T) {
	ctx := context.Background()
	s, members := newImportService(t)
	files := &memArchiver{}
	s.SetFileArchiver(files)

	n, err := s.Import(ctx, "directory.csv", []byte(directoryCSV), false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"directory.csv"}, files.keys)

	files.err = errors.New("s3 down")
	n, err = s.Import(ctx, "directory.csv", []byte(directoryCSV), true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := members.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestPreviewThenConfirm(t *testing.T) {
	ctx := context.Background()
	s, members := newImportService(t)

	preview, err := s.Preview(ctx, "directory.csv", []byte(directoryCSV), false)
	require.NoError(t, err)
	assert.NotEmpty(t, preview.Token)
	assert.Equal(t, 2, preview.Rows)
	require.Len(t, preview.Sample, 2)
	assert.Equal(t, "Asha Patel", preview.Sample[0].FullName)

	count, err := members.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	n, err := s.Confirm(ctx, preview.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.Confirm(ctx, preview.Token)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPreviewRejectsBadSheet(t *testing.T) {
	s, _ := newImportService(t)
	_, err := s.Preview(context.Background(), "directory.csv", []byte("memberId,name\n,No Id\n"), false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "row 2", verr.Field)
}
