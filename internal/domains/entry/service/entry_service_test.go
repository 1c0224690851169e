package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"bookshelf-backend/internal/domains/entry/model"
	"bookshelf-backend/internal/domains/entry/repository"
	"bookshelf-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache records calls and keeps JSON payloads the way Redis would.
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
	pingErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		m.deletes = append(m.deletes, k)
	}
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return m.pingErr }

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func newTestService(t *testing.T) (*EntryService, *memoryCache) {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewSQLiteRepository(db.DB, "books")
	require.NoError(t, repo.EnsureSchema(context.Background()))

	c := newMemoryCache()
	return NewService(repo, c, time.Minute), c
}

func createReq(t *testing.T, title, author, start string) model.CreateEntryRequest {
	t.Helper()
	req, err := model.CreateEntryForm{Title: title, Author: author, StartDate: start}.ToRequest()
	require.NoError(t, err)
	return req
}

func strPtr(s string) *string { return &s }

func TestEntryService_CreateEntry(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	resp, err := svc.CreateEntry(ctx, createReq(t, "Dune", "Frank Herbert", "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, "Dune", resp.Title)
	assert.Equal(t, "2024-01-01", resp.StartDate)
	assert.Nil(t, resp.EndDate)

	_, err = svc.CreateEntry(ctx, createReq(t, "Dune", "Someone Else", "2024-03-01"))
	assert.ErrorIs(t, err, model.ErrDuplicateEntry)

	// a prefix of an existing title is a different book
	_, err = svc.CreateEntry(ctx, createReq(t, "Du", "Someone Else", "2024-03-01"))
	assert.NoError(t, err)
}

func TestEntryService_CreateEntryValidates(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateEntry(context.Background(), model.CreateEntryRequest{Title: "Dune"})
	assert.True(t, model.IsInvalid(err))
}

func TestEntryService_GetEntryResolves(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateEntry(ctx, createReq(t, "Foundation", "Isaac Asimov", "2024-05-01"))
	require.NoError(t, err)

	resp, err := svc.GetEntry(ctx, "Fnd")
	require.NoError(t, err)
	assert.Equal(t, "Foundation", resp.Title)
	assert.Equal(t, "Isaac Asimov", resp.Author)

	_, err = svc.GetEntry(ctx, "xyz")
	assert.ErrorIs(t, err, model.ErrEntryNotFound)

	_, err = svc.GetEntry(ctx, "fnd")
	assert.ErrorIs(t, err, model.ErrEntryNotFound, "matching is case sensitive")
}

func TestEntryService_GetEntryLastMatchWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateEntry(ctx, createReq(t, "Dune", "Frank Herbert", "2024-01-01"))
	require.NoError(t, err)
	_, err = svc.CreateEntry(ctx, createReq(t, "Dune Messiah", "Frank Herbert", "2024-02-01"))
	require.NoError(t, err)

	titles, err := svc.repo.ListTitles(ctx)
	require.NoError(t, err)
	want := titles[len(titles)-1]

	resp, err := svc.GetEntry(ctx, "Dune")
	require.NoError(t, err)
	assert.Equal(t, want, resp.Title)
}

func TestEntryService_UpdateEntryMerges(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t)

	_, err := svc.CreateEntry(ctx, createReq(t, "Foundation", "Isaac Asimov", "2024-05-01"))
	require.NoError(t, err)
	_, err = svc.ListEntries(ctx)
	require.NoError(t, err)
	require.True(t, c.has(model.CacheKeyAllEntries))

	resp, err := svc.UpdateEntry(ctx, model.UpdateEntryRequest{Title: "Fnd", Notes: strPtr("psychohistory")})
	require.NoError(t, err)
	assert.Equal(t, "Foundation", resp.Title)
	assert.Equal(t, "Isaac Asimov", resp.Author)
	assert.Equal(t, "psychohistory", *resp.Notes)
	assert.False(t, c.has(model.CacheKeyAllEntries), "a change invalidates the list cache")

	// blank update keeps everything
	resp, err = svc.UpdateEntry(ctx, model.UpdateEntryRequest{Title: "Foundation"})
	require.NoError(t, err)
	assert.Equal(t, "psychohistory", *resp.Notes)
	assert.Equal(t, "2024-05-01", resp.StartDate)

	got, err := svc.GetEntry(ctx, "Foundation")
	require.NoError(t, err)
	assert.Equal(t, "psychohistory", *got.Notes)
}

func TestEntryService_UpdateEntryErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.UpdateEntry(ctx, model.UpdateEntryRequest{Title: "Dune"})
	assert.ErrorIs(t, err, model.ErrEntryNotFound)

	_, err = svc.UpdateEntry(ctx, model.UpdateEntryRequest{})
	assert.True(t, model.IsInvalid(err))
}

func TestEntryService_UpdateEntryRejectsEmptyAuthor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateEntry(ctx, createReq(t, "Dune", "Frank Herbert", "2024-01-01"))
	require.NoError(t, err)

	_, err = svc.UpdateEntry(ctx, model.UpdateEntryRequest{Title: "Dune", Author: strPtr("")})
	assert.True(t, model.IsInvalid(err))

	got, err := svc.GetEntry(ctx, "Dune")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", got.Author)
}

func TestEntryService_DeleteEntry(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t)

	_, err := svc.CreateEntry(ctx, createReq(t, "Dune", "Frank Herbert", "2024-01-01"))
	require.NoError(t, err)

	msg, err := svc.DeleteEntry(ctx, "Du")
	require.NoError(t, err)
	assert.Equal(t, "Du was deleted from the database", msg)
	assert.Contains(t, c.deletes, model.CacheKeyAllEntries)

	_, err = svc.GetEntry(ctx, "Dune")
	assert.ErrorIs(t, err, model.ErrEntryNotFound)

	_, err = svc.DeleteEntry(ctx, "Du")
	assert.ErrorIs(t, err, model.ErrEntryNotFound)
}

func TestEntryService_ListEntriesReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t)

	list, err := svc.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.True(t, c.has(model.CacheKeyAllEntries))

	_, err = svc.CreateEntry(ctx, createReq(t, "Dune", "Frank Herbert", "2024-01-01"))
	require.NoError(t, err)
	assert.False(t, c.has(model.CacheKeyAllEntries))

	list, err = svc.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dune", list[0].Title)

	// served from cache: the stored payload wins over the table
	require.NoError(t, c.Set(ctx, model.CacheKeyAllEntries, []model.EntryResponse{}, time.Minute))
	list, err = svc.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEntryService_Health(t *testing.T) {
	svc, c := newTestService(t)

	assert.NoError(t, svc.Health(context.Background()))

	c.pingErr = errors.New("redis down")
	assert.NoError(t, svc.Health(context.Background()), "cache failure only degrades")
}

func TestEntryService_ExportEntries(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateEntry(ctx, createReq(t, "Dune", "Frank Herbert", "2024-01-01"))
	require.NoError(t, err)

	f, err := svc.ExportEntries(ctx)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0])
	// GetRows drops blank trailing cells
	require.GreaterOrEqual(t, len(rows[1]), 3)
	assert.Equal(t, []string{"Dune", "Frank Herbert", "2024-01-01"}, rows[1][:3])
}

// racingRepo runs onList after the store read, before ListEntries fills the cache.
type racingRepo struct {
	repository.Repository
	onList func()
}

func (r *racingRepo) List(ctx context.Context) ([]model.Entry, error) {
	entries, err := r.Repository.List(ctx)
	if r.onList != nil {
		r.onList()
	}
	return entries, err
}

func TestEntryService_ListEntriesSkipsStaleCacheFill(t *testing.T) {
	ctx := context.Background()
	base, c := newTestService(t)

	repo := &racingRepo{Repository: base.repo}
	svc := NewService(repo, c, time.Minute)

	repo.onList = func() {
		repo.onList = nil
		_, err := svc.CreateEntry(ctx, createReq(t, "Dune", "Frank Herbert", "2024-01-01"))
		require.NoError(t, err)
	}

	list, err := svc.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "the read happened before the create")
	assert.False(t, c.has(model.CacheKeyAllEntries), "a stale read must not fill the cache")

	list, err = svc.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, c.has(model.CacheKeyAllEntries))
}
