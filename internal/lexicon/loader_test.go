package lexicon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/chainpick/internal/model"
)

type fakeProvider struct {
	mu    sync.Mutex
	lists map[string]map[model.Category]string
	calls map[string]int
	fail  error
	gate  chan struct{}
	hits  atomic.Int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		lists: map[string]map[model.Category]string{},
		calls: map[string]int{},
	}
}

func (p *fakeProvider) set(lang string, cat model.Category, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lists[lang] == nil {
		p.lists[lang] = map[model.Category]string{}
	}
	p.lists[lang][cat] = text
}

func (p *fakeProvider) FetchCategory(ctx context.Context, lang string, cat model.Category) (string, error) {
	if cat == model.CategoryMain {
		p.hits.Add(1)
		if p.gate != nil {
			<-p.gate
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[lang+"/"+string(cat)]++
	if p.fail != nil {
		return "", p.fail
	}
	text, ok := p.lists[lang][cat]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrCategoryUnavailable, lang, cat)
	}
	return text, nil
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoaderFallsBackToEnglishThemedList(t *testing.T) {
	p := newFakeProvider()
	p.set("de", model.CategoryMain, "Schaf\nSchule")
	p.set("en", model.CategoryProfanity, "darn\nheck")

	loader := NewLoader(p, time.Minute, quietLogger())
	lex, err := loader.Load(context.Background(), "german")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lex.Lang != "de" {
		t.Fatalf("lang = %q, want de", lex.Lang)
	}
	if lex.Size(model.CategoryProfanity) != 2 {
		t.Fatalf("expected english profanity fallback, got %v", lex.Words(model.CategoryProfanity))
	}
	if lex.Size(model.CategoryPokemon) != 0 {
		t.Fatalf("expected empty pokemon list")
	}
	if len(lex.Unavailable) != 3 {
		t.Fatalf("unavailable = %v, want pokemon, minerals, rare", lex.Unavailable)
	}
}

func TestLoaderMissingMainFails(t *testing.T) {
	p := newFakeProvider()
	loader := NewLoader(p, time.Minute, quietLogger())
	_, err := loader.Load(context.Background(), "en")
	if !errors.Is(err, ErrNoLexiconAvailable) {
		t.Fatalf("expected ErrNoLexiconAvailable, got %v", err)
	}
	if !errors.Is(err, ErrCategoryUnavailable) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestLoaderCachesUntilTTL(t *testing.T) {
	p := newFakeProvider()
	p.set("en", model.CategoryMain, "quack\nquiz")
	loader := NewLoader(p, time.Minute, quietLogger())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loader.now = func() time.Time { return now }

	first, err := loader.Load(context.Background(), "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := loader.Load(context.Background(), "english")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if first != second || p.hits.Load() != 1 {
		t.Fatalf("expected cached lexicon, fetched %d times", p.hits.Load())
	}

	now = now.Add(2 * time.Minute)
	third, err := loader.Load(context.Background(), "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if third != first {
		t.Fatalf("expected the expired lexicon while refreshing")
	}
	waitFor(t, func() bool { return loader.Cached("en") != first })
	if p.hits.Load() != 2 {
		t.Fatalf("expected one refresh after ttl, fetched %d times", p.hits.Load())
	}
	fourth, err := loader.Load(context.Background(), "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fourth == first || p.hits.Load() != 2 {
		t.Fatalf("expected the refreshed lexicon, fetched %d times", p.hits.Load())
	}
}

func TestLoaderServesStaleWhileRefreshing(t *testing.T) {
	p := newFakeProvider()
	p.set("en", model.CategoryMain, "quack\nquiz")
	loader := NewLoader(p, time.Minute, quietLogger())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loader.now = func() time.Time { return now }

	first, err := loader.Load(context.Background(), "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p.gate = make(chan struct{})
	now = now.Add(2 * time.Minute)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*Lexicon, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = loader.Load(context.Background(), "en")
		}(i)
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		close(p.gate)
		t.Fatalf("expired loads waited for the refresh")
	}
	for i := range results {
		if results[i] != first {
			t.Fatalf("caller %d did not get the stale lexicon", i)
		}
	}

	waitFor(t, func() bool { return p.hits.Load() == 2 })
	close(p.gate)
	waitFor(t, func() bool { return loader.Cached("en") != first })
	if got := p.hits.Load(); got != 2 {
		t.Fatalf("main list fetched %d times, want 2", got)
	}
}

func TestLoaderServesStaleOnRefreshFailure(t *testing.T) {
	p := newFakeProvider()
	p.set("en", model.CategoryMain, "quack")
	loader := NewLoader(p, time.Minute, quietLogger())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loader.now = func() time.Time { return now }

	first, err := loader.Load(context.Background(), "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p.fail = errors.New("disk gone")
	now = now.Add(time.Hour)

	stale, err := loader.Load(context.Background(), "en")
	if err != nil {
		t.Fatalf("expected stale copy, got %v", err)
	}
	if stale != first {
		t.Fatalf("expected the stale lexicon to be served")
	}
	waitFor(t, func() bool { return p.hits.Load() == 2 })

	again, err := loader.Load(context.Background(), "en")
	if err != nil || again != first {
		t.Fatalf("expected the stale lexicon after a failed refresh, got %v", err)
	}
}

func TestLoaderCoalescesConcurrentLoads(t *testing.T) {
	p := newFakeProvider()
	p.set("en", model.CategoryMain, "quack\nquiz")
	p.gate = make(chan struct{})
	loader := NewLoader(p, time.Minute, quietLogger())

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*Lexicon, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = loader.Load(context.Background(), "en")
		}(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for p.hits.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(p.gate)
	wg.Wait()

	if got := p.hits.Load(); got != 1 {
		t.Fatalf("main list fetched %d times, want 1", got)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("caller %d got a different lexicon", i)
		}
	}
}

func TestLoaderHonoursCallerContext(t *testing.T) {
	p := newFakeProvider()
	p.set("en", model.CategoryMain, "quack")
	p.gate = make(chan struct{})
	defer close(p.gate)
	loader := NewLoader(p, time.Minute, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := loader.Load(ctx, "en")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "en"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "en", "main.txt"), []byte("quack\nquiz\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "en", "rare.json"), []byte(`{"words":["quokka"]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "fr"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	p := DirProvider{Dir: dir}
	text, err := p.FetchCategory(context.Background(), "en", model.CategoryRare)
	if err != nil {
		t.Fatalf("fetch rare: %v", err)
	}
	if words := ParseWords(text); len(words) != 1 || words[0] != "quokka" {
		t.Fatalf("rare words = %v", words)
	}
	if _, err := p.FetchCategory(context.Background(), "en", model.CategoryPokemon); !errors.Is(err, ErrCategoryUnavailable) {
		t.Fatalf("expected ErrCategoryUnavailable, got %v", err)
	}

	langs, err := p.Languages()
	if err != nil {
		t.Fatalf("languages: %v", err)
	}
	if len(langs) != 1 || langs[0] != "en" {
		t.Fatalf("languages = %v, want [en]", langs)
	}
}
