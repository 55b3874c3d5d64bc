package lexicon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/verte-zerg/chainpick/internal/model"
)

// DefaultTTL is how long a loaded lexicon is served before a refresh.
const DefaultTTL = 5 * time.Minute

const fallbackLang = "en"

// Loader memoizes lexicons per language. Concurrent loads of one language
// share a single fetch. An expired entry keeps being served while its
// refresh runs in the background, and after a failed refresh.
type Loader struct {
	provider Provider
	ttl      time.Duration
	logger   *log.Logger
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]*Lexicon
	group singleflight.Group
}

// NewLoader returns a loader over provider. A non-positive ttl uses DefaultTTL.
func NewLoader(provider Provider, ttl time.Duration, logger *log.Logger) *Loader {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		provider: provider,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		cache:    make(map[string]*Lexicon),
	}
}

// Load returns the lexicon for lang. A missing entry is fetched and waited
// for; an expired one is returned as is while a refresh starts.
func (l *Loader) Load(ctx context.Context, lang string) (*Lexicon, error) {
	lang = NormalizeLang(lang)
	cached := l.Cached(lang)
	if cached != nil {
		if l.now().Sub(cached.LoadedAt) >= l.ttl {
			l.refresh(ctx, lang)
		}
		return cached, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-l.refresh(ctx, lang):
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Lexicon), nil
	}
}

// refresh starts or joins the fetch for lang. The fetch outlives the
// caller's cancellation and replaces the cached entry on success.
func (l *Loader) refresh(ctx context.Context, lang string) <-chan singleflight.Result {
	return l.group.DoChan(lang, func() (any, error) {
		lex, err := l.fetch(context.WithoutCancel(ctx), lang)
		if err != nil {
			if l.Cached(lang) != nil {
				l.logger.Warn("lexicon refresh failed, serving stale copy", "lang", lang, "err", err)
			}
			return nil, err
		}
		l.mu.Lock()
		l.cache[lang] = lex
		l.mu.Unlock()
		return lex, nil
	})
}

// Cached returns the memoized lexicon for lang without fetching.
func (l *Loader) Cached(lang string) *Lexicon {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache[NormalizeLang(lang)]
}

// Invalidate forgets the memoized lexicon for lang.
func (l *Loader) Invalidate(lang string) {
	l.mu.Lock()
	delete(l.cache, NormalizeLang(lang))
	l.mu.Unlock()
}

func (l *Loader) fetch(ctx context.Context, lang string) (*Lexicon, error) {
	start := l.now()
	lists := make(map[model.Category][]string, len(model.Categories))
	var unavailable []model.Category
	for _, cat := range model.Categories {
		words, err := l.fetchCategory(ctx, lang, cat)
		if err != nil {
			if cat == model.CategoryMain {
				return nil, fmt.Errorf("%w: %s: %w", ErrNoLexiconAvailable, lang, err)
			}
			l.logger.Warn("category unavailable", "lang", lang, "category", cat, "err", err)
			unavailable = append(unavailable, cat)
			continue
		}
		lists[cat] = words
	}

	lex, err := New(lang, lists)
	if err != nil {
		return nil, err
	}
	lex.Unavailable = unavailable
	lex.LoadedAt = l.now()
	l.logger.Info("lexicon loaded", "lang", lang, "words", lex.Size(model.CategoryMain), "took", lex.LoadedAt.Sub(start))
	return lex, nil
}

// fetchCategory loads one list. Themed lists missing for lang fall back to
// the English list of the same category.
func (l *Loader) fetchCategory(ctx context.Context, lang string, cat model.Category) ([]string, error) {
	text, err := l.provider.FetchCategory(ctx, lang, cat)
	var words []string
	if err == nil {
		words = ParseWords(text)
	}
	if len(words) > 0 || cat == model.CategoryMain || lang == fallbackLang {
		return words, err
	}

	fallback, ferr := l.provider.FetchCategory(ctx, fallbackLang, cat)
	if ferr != nil {
		if err != nil {
			return nil, err
		}
		return nil, ferr
	}
	l.logger.Debug("using english list", "lang", lang, "category", cat)
	return ParseWords(fallback), nil
}
