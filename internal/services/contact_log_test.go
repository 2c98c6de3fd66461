package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/studylink-backend/pkg/utils"
)

func newTestContactLog(t *testing.T, step time.Duration) *ContactLog {
	t.Helper()
	l := NewContactLog(newTestStore(t), zerolog.Nop())
	l.now = stepClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local), step)
	l.newID = sequentialIDs("c")
	return l
}

func TestListAllNewestFirst(t *testing.T) {
	l := newTestContactLog(t, time.Minute)

	for _, subject := range []string{"t1", "t2", "t3"} {
		_, err := l.Append("Ann", "ann@x.com", subject, "a long enough message", 5)
		require.NoError(t, err)
	}

	all, err := l.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t3", all[0].Subject)
	assert.Equal(t, "t2", all[1].Subject)
	assert.Equal(t, "t1", all[2].Subject)
}

func TestListAllTiesLaterInsertionFirst(t *testing.T) {
	// Zero step: every submission shares one timestamp.
	l := newTestContactLog(t, 0)

	for _, subject := range []string{"first", "second", "third"} {
		_, err := l.Append("Ann", "ann@x.com", subject, "a long enough message", 3)
		require.NoError(t, err)
	}

	all, err := l.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].Subject, all[1].Subject, all[2].Subject})
}

func TestAppendStoresFields(t *testing.T) {
	l := newTestContactLog(t, time.Second)

	sub, err := l.Append("Ann", "ann@x.com", "Hello", "a long enough message", 4)
	require.NoError(t, err)
	assert.Equal(t, "c-1", sub.ID)
	assert.Equal(t, "2026-03-01 09:00:00", sub.SubmittedAt.String())

	all, err := l.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, sub.ID, all[0].ID)
	assert.Equal(t, "Hello", all[0].Subject)
	assert.Equal(t, 4, all[0].Rating)
	assert.True(t, sub.SubmittedAt.Equal(all[0].SubmittedAt.Time))
}

func TestAppendRejectsInvariantViolations(t *testing.T) {
	l := newTestContactLog(t, time.Second)

	for _, rating := range []int{0, 6, -1} {
		_, err := l.Append("Ann", "ann@x.com", "s", "a long enough message", rating)
		var ve *utils.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "rating", ve.Field)
	}

	_, err := l.Append("Ann", "ann@x.com", "s", "too short", 3)
	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "message", ve.Field)

	all, err := l.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCountByEmail(t *testing.T) {
	l := newTestContactLog(t, time.Second)

	for _, email := range []string{"ann@x.com", "bob@x.com", "ann@x.com", "Ann@x.com"} {
		_, err := l.Append("X", email, "s", "a long enough message", 2)
		require.NoError(t, err)
	}

	n, err := l.CountByEmail("ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = l.CountByEmail("nobody@x.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}
