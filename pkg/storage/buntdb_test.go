package storage

import (
	"path/filepath"
	"testing"
	"time"

	"atlwatch/pkg/core"

	"github.com/stretchr/testify/require"
)

func TestBuntStorage_LoadEmpty(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	_, exists, err := store.Load()
	require.NoError(t, err)
	require.False(t, exists)
}

func TestBuntStorage_RoundTrip(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	record := core.AtlRecord{
		AllTimeLow:  0.7312,
		LastChecked: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(record))

	loaded, exists, err := store.Load()
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, record.AllTimeLow, loaded.AllTimeLow)
	require.True(t, record.LastChecked.Equal(loaded.LastChecked))
}

func TestBuntStorage_SaveOverwrites(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(core.AtlRecord{AllTimeLow: 1.00}))
	require.NoError(t, store.Save(core.AtlRecord{AllTimeLow: 0.50}))

	loaded, exists, err := store.Load()
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, 0.50, loaded.AllTimeLow)
}

func TestBuntStorage_FilePersistsAcrossReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "atl.db")

	store, err := FromFile(file)
	require.NoError(t, err)

	record := core.AtlRecord{
		AllTimeLow:  0.98,
		LastChecked: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(record))
	require.NoError(t, store.Close())

	reopened, err := FromFile(file)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, exists, err := reopened.Load()
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, record.AllTimeLow, loaded.AllTimeLow)
	require.True(t, record.LastChecked.Equal(loaded.LastChecked))
}
