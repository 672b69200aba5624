package badger

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/poiesic/conceptmatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
	assert.False(t, backend.IsReadOnly())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_ReadOnlyMissingDir(t *testing.T) {
	_, err := OpenBackend(filepath.Join(t.TempDir(), "missing"), ReadOnly())
	assert.ErrorIs(t, err, storage.ErrStoreIO)
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path)
	assert.ErrorIs(t, err, storage.ErrStoreIO)
}

func TestOpenBackend_InMemoryReadOnly(t *testing.T) {
	_, err := OpenBackend("", InMemory(), ReadOnly())
	assert.ErrorIs(t, err, storage.ErrStoreIO)
}

func TestBackendClose(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	_, err = backend.Get(context.Background(), storage.TablePhrases, []byte("fever"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestGet(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, Populate(backend, storage.TablePhrases, map[string][]byte{"Fever": {1, 2, 3}}))
	ctx := context.Background()

	value, err := backend.Get(ctx, storage.TablePhrases, []byte("Fever"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, value)

	_, err = backend.Get(ctx, storage.TablePhrases, []byte("fever"))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = backend.Get(ctx, storage.TableLowercase, []byte("Fever"))
	assert.ErrorIs(t, err, storage.ErrNotFound, "tables do not share keys")

	_, err = backend.Get(ctx, storage.Table("bogus"), []byte("Fever"))
	assert.ErrorIs(t, err, storage.ErrUnknownTable)
}

func TestGet_CanceledContext(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = backend.Get(ctx, storage.TablePhrases, []byte("Fever"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, Populate(backend, storage.TableTerms, map[string][]byte{
		"fever":   {0, 0, 0, 2},
		"cough":   {0, 0, 0, 1},
		"patient": {0, 0, 0, 3},
	}))
	require.NoError(t, Populate(backend, storage.TableSources, map[string][]byte{"x": {9}}))

	var keys []string
	for entry, err := range backend.Scan(context.Background(), storage.TableTerms) {
		require.NoError(t, err)
		keys = append(keys, string(entry.Key))
	}
	assert.Equal(t, []string{"cough", "fever", "patient"}, keys)

	// A fresh call restarts the pass; breaking early is allowed.
	count := 0
	for _, err := range backend.Scan(context.Background(), storage.TableTerms) {
		require.NoError(t, err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestScan_UnknownTable(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()

	for entry, err := range backend.Scan(context.Background(), storage.Table("bogus")) {
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, storage.ErrUnknownTable)
	}
}

func TestReadOnlyReopen(t *testing.T) {
	dir := t.TempDir()

	writable, err := OpenBackend(dir)
	require.NoError(t, err)
	require.NoError(t, Populate(writable, storage.TablePhrases, map[string][]byte{"Fever": {7}}))
	require.NoError(t, writable.Close())

	backend, err := OpenBackend(dir, ReadOnly())
	require.NoError(t, err)
	defer backend.Close()
	assert.True(t, backend.IsReadOnly())

	value, err := backend.Get(context.Background(), storage.TablePhrases, []byte("Fever"))
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, value)

	_, err = backend.NewWriter()
	assert.ErrorIs(t, err, storage.ErrReadOnly)
}

func TestConcurrentReads(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, Populate(backend, storage.TablePhrases, map[string][]byte{"Fever": {7}}))

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := backend.Get(context.Background(), storage.TablePhrases, []byte("Fever")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read failed: %v", err)
	}
}
