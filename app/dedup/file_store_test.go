package dedup

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreLoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "processed_entries.json"), 0)

	record, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, record.Total())
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated", content: `{"https://example.com/feed": ["a", "b"`},
		{name: "not json", content: "this is not json"},
		{name: "wrong shape", content: `{"https://example.com/feed": "a"}`},
		{name: "empty", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "processed_entries.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			record, err := NewFileStore(path, 0).Load(context.Background())
			require.NoError(t, err)
			require.NotNil(t, record)
			assert.Equal(t, 0, record.Total())
		})
	}
}

func TestFileStorePersistAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "processed_entries.json")
	store := NewFileStore(path, 0)

	record := NewRecord(0)
	record.MarkSeen("https://example.com/feed", "entry-1")
	record.MarkSeen("https://example.com/feed", "entry-2")
	record.MarkSeen("https://example.org/atom", "entry-1")

	require.NoError(t, store.Persist(ctx, record))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, record.ToMap(), loaded.ToMap())
	assert.True(t, loaded.Seen("https://example.com/feed", "entry-2"))
	assert.False(t, loaded.Seen("https://example.org/atom", "entry-2"))
}

func TestFileStorePersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "processed_entries.json"), 0)

	record := NewRecord(0)
	record.MarkSeen("feed", "a")
	require.NoError(t, store.Persist(context.Background(), record))
	record.MarkSeen("feed", "b")
	require.NoError(t, store.Persist(context.Background(), record))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "processed_entries.json", entries[0].Name())
}

func TestFileStorePersistFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_entries.json")
	store := NewFileStore(path, 0)

	record := NewRecord(0)
	record.MarkSeen("https://example.com/feed", "a")
	record.MarkSeen("https://example.com/feed", "b")
	require.NoError(t, store.Persist(context.Background(), record))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"https://example.com/feed": ["a", "b"]}`, string(data))
}

func TestFileStoreRoundTripWithMutations(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		path := filepath.Join(t.TempDir(), "processed_entries.json")
		store := NewFileStore(path, 0)

		seed := NewRecord(0)
		for i := 0; i < rng.Intn(20); i++ {
			seed.MarkSeen(fmt.Sprintf("feed-%d", rng.Intn(3)), fmt.Sprintf("id-%d", rng.Intn(50)))
		}
		require.NoError(t, store.Persist(ctx, seed))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)

		expected := FromMap(loaded.ToMap(), 0)
		for i := 0; i < rng.Intn(30); i++ {
			feedURL := fmt.Sprintf("feed-%d", rng.Intn(4))
			id := fmt.Sprintf("id-%d", rng.Intn(60))
			loaded.MarkSeen(feedURL, id)
			expected.MarkSeen(feedURL, id)
		}
		require.NoError(t, store.Persist(ctx, loaded))

		reloaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected.ToMap(), reloaded.ToMap(), "round %d", round)
	}
}

func TestFileStoreLoadAppliesCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_entries.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"feed": ["a", "b", "c", "d"]}`), 0644))

	record, err := NewFileStore(path, 2).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, record.ToMap()["feed"])
}

func TestFileStorePersistReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state", "processed_entries.json")
	store := NewFileStore(path, 0)

	first := NewRecord(0)
	first.MarkSeen("feed", "a")
	require.NoError(t, store.Persist(context.Background(), first))

	second := NewRecord(0)
	second.MarkSeen("feed", "b")
	require.NoError(t, store.Persist(context.Background(), second))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"feed": {"b"}}, loaded.ToMap())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
