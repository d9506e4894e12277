package sqlitestore_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/valreg/pkg/sqlitedb"
	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/registrar/registrartest"
	"github.com/screwyprof/valreg/registrar/store/sqlitestore"
	"github.com/screwyprof/valreg/registrar/store/storetest"
)

func TestSQLiteStoreContract(t *testing.T) {
	t.Parallel()

	storetest.RunStoreContract(t, func(t *testing.T) registrar.Store {
		return newTestStore(t)
	})
}

func TestSQLiteStoreBehavior(t *testing.T) {
	t.Parallel()

	t.Run("it initializes the schema idempotently", func(t *testing.T) {
		t.Parallel()

		// Arrange
		db, err := sqlitedb.Open(t.Context(), filepath.Join(t.TempDir(), "valreg.db"))
		require.NoError(t, err)

		store, closer := sqlitestore.New(db)
		t.Cleanup(closer)

		// Act
		require.NoError(t, store.InitSchema(t.Context()))
		err = store.InitSchema(t.Context())

		// Assert
		require.NoError(t, err)
	})

	t.Run("it survives reopening the database file", func(t *testing.T) {
		t.Parallel()

		// Arrange
		path := filepath.Join(t.TempDir(), "valreg.db")

		db, err := sqlitedb.Open(t.Context(), path)
		require.NoError(t, err)
		store, closer := sqlitestore.New(db, sqlitestore.WithClock(registrartest.NewTickClock()))
		require.NoError(t, store.InitSchema(t.Context()))

		created, err := store.CreateRequest(t.Context(), "req-1", storetest.ValidRequest("pk-1"))
		require.NoError(t, err)
		closer()

		// Act
		db, err = sqlitedb.Open(t.Context(), path)
		require.NoError(t, err)
		reopened, closer := sqlitestore.New(db)
		t.Cleanup(closer)

		got, err := reopened.GetRequest(t.Context(), "req-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("it stores timestamps in UTC", func(t *testing.T) {
		t.Parallel()

		// Arrange
		store := newTestStore(t)

		// Act
		created, err := store.CreateRequest(t.Context(), "req-1", storetest.ValidRequest("pk-1"))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, time.UTC, created.RequestDate.Location())
		assert.Equal(t, time.UTC, created.LastUpdated.Location())
	})
}

// newTestStore opens a fresh temp-file database with the schema applied and
// a ticking clock so timestamps strictly increase.
func newTestStore(t *testing.T) *sqlitestore.Store {
	t.Helper()

	db, err := sqlitedb.Open(t.Context(), filepath.Join(t.TempDir(), "valreg.db"))
	require.NoError(t, err)

	store, closer := sqlitestore.New(db, sqlitestore.WithClock(registrartest.NewTickClock()))
	t.Cleanup(closer)

	require.NoError(t, store.InitSchema(t.Context()))

	return store
}
