package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/cognicore/orderline/pkg/orderline/store"
	"github.com/cognicore/orderline/pkg/orderline/store/storetest"
)

// Set ORDERLINE_TEST_POSTGRES_DSN to a disposable database to run these.
func openTest(t *testing.T) store.Store {
	t.Helper()
	dsn := os.Getenv("ORDERLINE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ORDERLINE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	st, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := st.(*postgresStore).db.Exec(ctx, `TRUNCATE restaurants CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestPostgresStoreContract(t *testing.T) {
	storetest.Run(t, openTest)
}

func TestOpenRejectsBadDSN(t *testing.T) {
	if _, err := Open(context.Background(), "postgres://%zz"); err == nil {
		t.Error("Expected error for malformed DSN")
	}
}
