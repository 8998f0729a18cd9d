package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeRoundTrip(t *testing.T) {
	store := NewStoreAt(filepath.Join(t.TempDir(), "state.bin"))

	require.NoError(t, store.SaveVolume(73))

	volume, err := store.LoadVolume()
	require.NoError(t, err)
	assert.Equal(t, 73, volume)
}

func TestLoadVolumeMissingFile(t *testing.T) {
	store := NewStoreAt(filepath.Join(t.TempDir(), "state.bin"))

	_, err := store.LoadVolume()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadVolumeCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	require.NoError(t, os.WriteFile(path, []byte("not gob data"), 0644))

	store := NewStoreAt(path)

	_, err := store.LoadVolume()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveVolumeOverwrites(t *testing.T) {
	store := NewStoreAt(filepath.Join(t.TempDir(), "state.bin"))

	require.NoError(t, store.SaveVolume(10))
	require.NoError(t, store.SaveVolume(90))

	volume, err := store.LoadVolume()
	require.NoError(t, err)
	assert.Equal(t, 90, volume)
}

func TestSaveVolumeLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreAt(filepath.Join(dir, "state.bin"))

	require.NoError(t, store.SaveVolume(50))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.bin", entries[0].Name())
}

func TestNewStoreUsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	store, err := NewStore()
	require.NoError(t, err)

	require.NoError(t, store.SaveVolume(42))
	_, err = os.Stat(filepath.Join(dir, "ytmirror", "state.bin"))
	assert.NoError(t, err)
}
