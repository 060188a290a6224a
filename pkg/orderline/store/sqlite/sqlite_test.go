package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cognicore/orderline/pkg/orderline/store"
	"github.com/cognicore/orderline/pkg/orderline/store/storetest"
)

func openTemp(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "menus.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteStoreContract(t *testing.T) {
	storetest.Run(t, openTemp)
}

func TestSQLiteReopenKeepsMenus(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "menus.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	want := storetest.SampleMenu("+15550100")
	if err := st.PutMenu(ctx, want); err != nil {
		t.Fatalf("PutMenu: %v", err)
	}
	st.Close()

	// Schema creation must be idempotent.
	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	got, err := st.GetMenu(ctx, want.Key)
	if err != nil {
		t.Fatalf("GetMenu after reopen: %v", err)
	}
	storetest.AssertMenuEqual(t, want, got)
}

func TestSQLiteDeleteCascades(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	if err := st.PutMenu(ctx, storetest.SampleMenu("+15550100")); err != nil {
		t.Fatalf("PutMenu: %v", err)
	}
	if err := st.DeleteMenu(ctx, "+15550100"); err != nil {
		t.Fatalf("DeleteMenu: %v", err)
	}

	db := st.(*sqliteStore).db
	for _, table := range []string{"categories", "items", "modifier_groups", "modifier_options"} {
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s: expected 0 rows after delete, got %d", table, n)
		}
	}
}

func TestSQLiteConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	want := storetest.SampleMenu("+15550100")
	if err := st.PutMenu(ctx, want); err != nil {
		t.Fatalf("PutMenu: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := st.GetMenu(ctx, want.Key); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent GetMenu: %v", err)
	}
}
