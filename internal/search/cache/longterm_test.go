package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakePageRepo keeps pages in a map and enforces first-stored-wins the way
// the database's unique index does.
type fakePageRepo struct {
	pages   map[string]string
	saveErr error
	getErr  error
}

func newFakePageRepo() *fakePageRepo {
	return &fakePageRepo{pages: make(map[string]string)}
}

func (f *fakePageRepo) Save(ctx context.Context, pages []*PageDetail) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	for _, p := range pages {
		if _, exists := f.pages[p.URL]; exists {
			continue
		}
		f.pages[p.URL] = p.Details
	}
	return nil
}

func (f *fakePageRepo) GetByURLs(ctx context.Context, urls []string) (map[string]string, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	found := make(map[string]string)
	for _, u := range urls {
		if d, ok := f.pages[u]; ok {
			found[u] = d
		}
	}
	return found, nil
}

func TestLongTermStoreAndLookup(t *testing.T) {
	repo := newFakePageRepo()
	lt := NewLongTerm(repo, zap.NewNop())
	ctx := context.Background()

	lt.Store(ctx, []*PageDetail{
		{URL: "https://example.com/a", Details: "page a text"},
		{URL: "https://example.com/b", Details: "page b text"},
	})

	found := lt.Lookup(ctx, []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"})
	assert.Equal(t, map[string]string{
		"https://example.com/a": "page a text",
		"https://example.com/b": "page b text",
	}, found)
}

func TestLongTermFirstStoredWins(t *testing.T) {
	repo := newFakePageRepo()
	lt := NewLongTerm(repo, zap.NewNop())
	ctx := context.Background()

	lt.Store(ctx, []*PageDetail{{URL: "https://example.com/a", Details: "original"}})
	lt.Store(ctx, []*PageDetail{{URL: "https://example.com/a", Details: "rewritten"}})

	found := lt.Lookup(ctx, []string{"https://example.com/a"})
	assert.Equal(t, "original", found["https://example.com/a"])
}

func TestLongTermStoreSkipsEmptyPages(t *testing.T) {
	repo := newFakePageRepo()
	lt := NewLongTerm(repo, zap.NewNop())

	lt.Store(context.Background(), []*PageDetail{
		{URL: "https://example.com/a", Details: ""},
		{URL: "", Details: "orphan text"},
	})

	assert.Empty(t, repo.pages)
}

func TestLongTermLookupDegradesOnError(t *testing.T) {
	repo := newFakePageRepo()
	repo.getErr = errors.New("database down")
	lt := NewLongTerm(repo, zap.NewNop())

	found := lt.Lookup(context.Background(), []string{"https://example.com/a"})
	assert.Nil(t, found)
}

func TestLongTermStoreSwallowsErrors(t *testing.T) {
	repo := newFakePageRepo()
	repo.saveErr = errors.New("database down")
	lt := NewLongTerm(repo, zap.NewNop())

	// Must not panic or propagate.
	lt.Store(context.Background(), []*PageDetail{{URL: "https://example.com/a", Details: "text"}})
}
