package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "duskmon.toml")
	store, err := NewStore(path)
	require.NoError(t, err)
	return store, path
}

func TestLoadUnknownKeyReturnsDefaults(t *testing.T) {
	store, _ := newTestStore(t)

	entry := store.Load("acme-4k_3840x2160")
	assert.False(t, entry.Enabled)
	assert.Equal(t, "17:00:00", entry.Start)
	assert.Equal(t, "07:00:00", entry.End)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, path := newTestStore(t)

	saved := Entry{
		Enabled:    true,
		Start:      "20:00:00",
		End:        "06:00:00",
		Name:       "DELL P2419H",
		Resolution: "1920x1080",
	}
	require.NoError(t, store.Save("dell-p2419h_1920x1080", saved))

	// Same store instance.
	assert.Equal(t, saved, store.Load("dell-p2419h_1920x1080"))

	// A fresh store reading the file back.
	reopened, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, saved, reopened.Load("dell-p2419h_1920x1080"))
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.Save("k_1x1", DefaultEntry()))

	_, err := os.Stat(path)
	assert.NoError(t, err, "schedule file should exist after save")
	_, err = os.Stat(path + ".tmp.toml")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestKeys(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Save("b_1x1", DefaultEntry()))
	require.NoError(t, store.Save("a_1x1", DefaultEntry()))

	assert.Equal(t, []string{"a_1x1", "b_1x1"}, store.Keys())
}

func TestInterval(t *testing.T) {
	store, path := newTestStore(t)
	assert.Equal(t, DefaultInterval, store.Interval())

	require.NoError(t, store.SetInterval(30))
	assert.Equal(t, 30, store.Interval())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, 30, reopened.Interval())

	assert.Error(t, store.SetInterval(0))
	assert.Error(t, store.SetInterval(-5))
	assert.Equal(t, 30, store.Interval())
}

func TestUnreadableFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duskmon.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scheduler\ninterval = 5"), 0o644))

	store, err := NewStore(path)
	require.NoError(t, err, "a corrupt file is never fatal")
	assert.Equal(t, DefaultInterval, store.Interval())
	assert.Equal(t, DefaultEntry(), store.Load("any_1x1"))
}

func TestPartialEntryGetsDefaultTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duskmon.toml")
	contents := "[monitors.side_1280x1024]\nenabled = true\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	store, err := NewStore(path)
	require.NoError(t, err)

	entry := store.Load("side_1280x1024")
	assert.True(t, entry.Enabled)
	assert.Equal(t, DefaultStart, entry.Start)
	assert.Equal(t, DefaultEnd, entry.End)
}
