package store

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseSlot runs the behaviour every backend must share.
func exerciseSlot(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	data, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, data, "empty slot should read as nil")

	require.NoError(t, s.Write(ctx, []byte(`{"v":1}`)))
	data, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))

	require.NoError(t, s.Write(ctx, []byte(`{"v":2}`)))
	data, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data), "write must overwrite")

	require.NoError(t, s.Purge(ctx))
	data, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, s.Purge(ctx), "purging an empty slot is not an error")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseSlot(t, s)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "authState.json")
	s := NewFileStore(path)
	defer s.Close()
	exerciseSlot(t, s)
}

func TestFileStorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}

	path := filepath.Join(t.TempDir(), "authState.json")
	s := NewFileStore(path)
	require.NoError(t, s.Write(context.Background(), []byte(`{}`)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authdemo.db")
	s, err := OpenSQLite(context.Background(), path, "")
	require.NoError(t, err)
	defer s.Close()
	exerciseSlot(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "authdemo.db")

	first, err := OpenSQLite(ctx, path, DefaultKey)
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, []byte("persisted")))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path, DefaultKey)
	require.NoError(t, err)
	defer second.Close()

	data, err := second.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(data))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{name: "file", cfg: Config{Backend: BackendFile, Path: filepath.Join(dir, "a.json")}, want: &FileStore{}},
		{name: "default backend", cfg: Config{Path: filepath.Join(dir, "b.json")}, want: &FileStore{}},
		{name: "sqlite", cfg: Config{Backend: BackendSQLite, Path: filepath.Join(dir, "c.db")}, want: &SQLiteStore{}},
		{name: "memory", cfg: Config{Backend: BackendMemory}, want: &MemoryStore{}},
		{name: "unknown", cfg: Config{Backend: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "authState.json", filepath.Base(DefaultPath(BackendFile)))
	assert.Equal(t, "authdemo.db", filepath.Base(DefaultPath(BackendSQLite)))
}
