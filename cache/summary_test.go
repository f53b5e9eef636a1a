package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"realty-analyzer/llm"
	"realty-analyzer/utils"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
}

func newMemStore() *memStore { return &memStore{data: make(map[string]string)} }

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func countingGenerator(calls *int, text string, err error) llm.Generator {
	return llm.GeneratorFunc(func(context.Context, string, int) (string, error) {
		*calls++
		return text, err
	})
}

func TestCachedGeneratorServesRepeatsFromStore(t *testing.T) {
	calls := 0
	g := NewCachedGenerator(countingGenerator(&calls, "Pune summary", nil), newMemStore(), time.Hour, utils.NewDiscardLogger())

	for i := 0; i < 3; i++ {
		text, err := g.Generate(context.Background(), "prompt-pune", 100)
		if err != nil || text != "Pune summary" {
			t.Fatalf("Generate #%d: got %q, %v", i, text, err)
		}
	}
	if calls != 1 {
		t.Errorf("underlying calls: got %d, want 1", calls)
	}
}

func TestCachedGeneratorDoesNotCacheFailures(t *testing.T) {
	calls := 0
	store := newMemStore()
	g := NewCachedGenerator(countingGenerator(&calls, "", errors.New("down")), store, time.Hour, utils.NewDiscardLogger())

	for i := 0; i < 2; i++ {
		if _, err := g.Generate(context.Background(), "p", 100); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls != 2 {
		t.Errorf("underlying calls: got %d, want 2", calls)
	}
	if len(store.data) != 0 {
		t.Errorf("store should stay empty, has %d entries", len(store.data))
	}
}

func TestCachedGeneratorBypassesBrokenStore(t *testing.T) {
	calls := 0
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	g := NewCachedGenerator(countingGenerator(&calls, "fresh", nil), store, time.Hour, utils.NewDiscardLogger())

	text, err := g.Generate(context.Background(), "p", 100)
	if err != nil || text != "fresh" {
		t.Errorf("got %q, %v; want fresh, nil", text, err)
	}
}

func TestNewRedisStoreDisabledWithoutAddr(t *testing.T) {
	if s := NewRedisStore("", "", 0); s != nil {
		t.Error("NewRedisStore should return nil for empty addr")
	}
}

func TestSummaryKeyStable(t *testing.T) {
	if summaryKey("a") != summaryKey("a") || summaryKey("a") == summaryKey("b") {
		t.Error("summaryKey must be deterministic and distinct per prompt")
	}
}
