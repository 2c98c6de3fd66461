package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/studylink-backend/internal/database"
	"github.com/AnshRaj112/studylink-backend/pkg/utils"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open(t.TempDir(), zerolog.Nop(), database.UsersCollection, database.ContactsCollection)
	require.NoError(t, err)
	return store
}

func newTestDirectory(t *testing.T, store *database.Store) *UserDirectory {
	t.Helper()
	return NewUserDirectory(store, utils.NewPasswordHasher(1, 1024, 1), zerolog.Nop())
}

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

// sequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
