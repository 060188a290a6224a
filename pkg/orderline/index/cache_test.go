package index

import (
	"sync"
	"testing"
)

func TestLRUCacheSetGet(t *testing.T) {
	c, err := NewLRUCache(4)
	if err != nil {
		t.Fatalf("NewLRUCache: %v", err)
	}

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache should miss")
	}

	ix := Build(testMenu())
	c.Set("a", ix)
	got, ok := c.Get("a")
	if !ok || got != ix {
		t.Fatal("expected cached index")
	}
	if c.Len() != 1 {
		t.Errorf("expected len 1, got %d", c.Len())
	}
}

func TestLRUCacheInvalidate(t *testing.T) {
	c, _ := NewLRUCache(4)
	c.Set("a", Build(testMenu()))
	c.Set("b", Build(testMenu()))

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be invalidated")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should survive single-key invalidation")
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestLRUCacheEvicts(t *testing.T) {
	c, _ := NewLRUCache(2)
	c.Set("a", Build(testMenu()))
	c.Set("b", Build(testMenu()))
	c.Set("c", Build(testMenu()))

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should be evicted")
	}
	if c.Len() != 2 {
		t.Errorf("expected len 2, got %d", c.Len())
	}
}

func TestLRUCacheDefaultSize(t *testing.T) {
	if _, err := NewLRUCache(0); err != nil {
		t.Fatalf("zero size should fall back to default: %v", err)
	}
}

func TestLRUCacheConcurrentLastWriterWins(t *testing.T) {
	c, _ := NewLRUCache(4)
	m := testMenu()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set("k", Build(m))
		}()
	}
	wg.Wait()

	ix, ok := c.Get("k")
	if !ok {
		t.Fatal("expected an index after racing builds")
	}
	if res := ix.Search("margherita pizza"); res[0].Item.Name != "Margherita Pizza" {
		t.Errorf("racing builds should be equivalent, got %s", res[0].Item.Name)
	}
}
