package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "saves"))
	require.NoError(t, err)

	want := sampleSnapshot()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx, want.SessionID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// No temp files left behind.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	snap := sampleSnapshot()
	require.NoError(t, store.Save(ctx, snap))

	snap.Balance = 999.5
	snap.Tracks.Rate.Level = 7
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 999.5, got.Balance)
	assert.Equal(t, 7, got.Tracks.Rate.Level)
}

func TestFileStore_NotFound(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), testSessionID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_RejectsBadSessionID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "../escape")
	assert.Error(t, err)

	snap := sampleSnapshot()
	snap.SessionID = ""
	assert.Error(t, store.Save(context.Background(), snap))
}

func TestFileStore_CorruptFile(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Path(testSessionID)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`{"checksum":"00","payload":{"version":2}}`), 0o644))

	_, err = store.Load(context.Background(), testSessionID)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileStore_CancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Save(ctx, sampleSnapshot()), context.Canceled)
	_, err = store.Load(ctx, testSessionID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	want := sampleSnapshot()

	require.NoError(t, WriteFile(path, want))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
