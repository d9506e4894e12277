//go:build acceptance

package pgxstore_test

import (
	"testing"

	"github.com/screwyprof/valreg/pkg/pgxdb/pgxdbtest"
	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/registrar/registrartest"
	"github.com/screwyprof/valreg/registrar/store/pgxstore"
	"github.com/screwyprof/valreg/registrar/store/storetest"
)

// TestPostgresStoreContract runs the persistence port contract against a real
// PostgreSQL instance with migrations applied. Requires a local server
// reachable with the valreg/valreg credentials.
func TestPostgresStoreContract(t *testing.T) {
	t.Parallel()

	storetest.RunStoreContract(t, func(t *testing.T) registrar.Store {
		pool, _ := pgxdbtest.CreateTestDatabase(t, "../../../migrator/migrations")

		store, closer := pgxstore.New(pool, pgxstore.WithClock(registrartest.NewTickClock()))
		t.Cleanup(closer)

		return store
	})
}
