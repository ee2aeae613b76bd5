package lang

import "testing"

func TestParseCached_ReusesTrees(t *testing.T) {
	ClearCache()

	a, err := parseCached("a, b@c.com")
	if err != nil {
		t.Fatalf("parseCached failed: %v", err)
	}

	b, err := parseCached("a, b@c.com")
	if err != nil {
		t.Fatalf("parseCached failed: %v", err)
	}

	if a != b {
		t.Error("expected identical sources to share a tree")
	}

	c, err := parseCached("a, b@c.org")
	if err != nil {
		t.Fatalf("parseCached failed: %v", err)
	}

	if c == a {
		t.Error("expected different sources to have different trees")
	}

	if n := cacheLen.Load(); n != 2 {
		t.Errorf("expected 2 cached trees, got %d", n)
	}
}

func TestParseCached_ErrorsNotCached(t *testing.T) {
	ClearCache()

	if _, err := parseCached("(("); err == nil {
		t.Fatal("expected syntax error")
	}

	if n := cacheLen.Load(); n != 0 {
		t.Errorf("expected empty cache, got %d", n)
	}
}

func TestClearCache(t *testing.T) {
	if _, err := parseCached("x@y.com"); err != nil {
		t.Fatalf("parseCached failed: %v", err)
	}

	ClearCache()

	if n := cacheLen.Load(); n != 0 {
		t.Errorf("expected empty cache, got %d", n)
	}

	count := 0
	parseCache.Range(func(any, any) bool {
		count++

		return true
	})

	if count != 0 {
		t.Errorf("expected no entries, got %d", count)
	}
}
