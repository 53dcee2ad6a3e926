package cache

import (
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemo_GetSet(t *testing.T) {
	m := New[string]()
	m.Set("Gaia18", "2018A&A...616A...1G")

	if v, ok := m.Get("Gaia18"); !ok || v != "2018A&A...616A...1G" {
		t.Errorf("Get(Gaia18) = %q, %v", v, ok)
	}
	if v, ok := m.Get("Cutri03"); ok || v != "" {
		t.Errorf("Get(Cutri03) = %q, %v, want zero miss", v, ok)
	}

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMemo_Load(t *testing.T) {
	m := New[int]()
	calls := 0
	final := false
	load := func() (int, bool) {
		calls++
		return calls, final
	}

	if got := m.Load("Reid08", load); got != 1 {
		t.Errorf("first Load = %d, want 1", got)
	}
	if got := m.Load("Reid08", load); got != 2 {
		t.Errorf("non-final result should not be kept, got %d", got)
	}

	final = true
	if got := m.Load("Reid08", load); got != 3 {
		t.Errorf("third Load = %d, want 3", got)
	}
	if got := m.Load("Reid08", load); got != 3 {
		t.Errorf("final result should be kept, got %d", got)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestMemo_Stats(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)
	m.Get("a")
	m.Get("a")
	m.Get("b")

	stats := m.Stats()
	if stats.Items != 1 || stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v, want 1 item, 2 hits, 1 miss", stats)
	}
}

func TestMemo_Concurrent(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Load("Gizi07", func() (int, bool) { return i, true })
		}()
	}
	wg.Wait()

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	if s := m.Stats(); s.Hits+s.Misses != 8 {
		t.Errorf("expected 8 lookups, got %+v", s)
	}
}
