// Package testdb provides database fixtures for tests.
//
// NewSQLite gives every test its own migrated SQLite database in a temp
// directory, so store, service and API tests stay hermetic and can run
// with t.Parallel().
//
// NewPostgres connects to the database named by DATABASE_URL (or
// CARDS_TEST_DB_URL), applies migrations and skips the test when neither
// variable is set. Combine it with WithTx to keep tests isolated:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.NewPostgres(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        cardStore := postgres.NewPostgresCardStore(tx, nil)
//	        // ...
//	    })
//	}
package testdb
