package lexicon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/verte-zerg/chainpick/internal/model"
)

// Provider fetches the raw text of one category list.
type Provider interface {
	FetchCategory(ctx context.Context, lang string, cat model.Category) (string, error)
}

// DirProvider reads lists from <Dir>/<lang>/<category>.txt or .json.
type DirProvider struct {
	Dir string
}

var listExtensions = []string{".txt", ".json"}

// FetchCategory implements Provider.
func (p DirProvider) FetchCategory(ctx context.Context, lang string, cat model.Category) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, ext := range listExtensions {
		path := filepath.Join(p.Dir, lang, string(cat)+ext)
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w: %s/%s not found in %s", ErrCategoryUnavailable, lang, cat, p.Dir)
}

// Languages lists the language directories that carry a main list.
func (p DirProvider) Languages() ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, err
	}
	var langs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		for _, ext := range listExtensions {
			path := filepath.Join(p.Dir, entry.Name(), string(model.CategoryMain)+ext)
			if _, err := os.Stat(path); err == nil {
				langs = append(langs, entry.Name())
				break
			}
		}
	}
	sort.Strings(langs)
	return langs, nil
}
