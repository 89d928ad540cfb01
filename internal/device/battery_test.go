package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supply(t *testing.T, root, name, kind, capacity string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "type"), []byte(kind+"\n"), 0o644))
	if capacity != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "capacity"), []byte(capacity+"\n"), 0o644))
	}
}

func TestReadBattery(t *testing.T) {
	root := t.TempDir()
	supply(t, root, "AC", "Mains", "")
	supply(t, root, "BAT0", "Battery", "87")

	pct, err := ReadBattery(root)
	require.NoError(t, err)
	assert.Equal(t, 87, pct)
}

func TestReadBattery_Clamped(t *testing.T) {
	root := t.TempDir()
	supply(t, root, "BAT0", "Battery", "104")

	pct, err := ReadBattery(root)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)
}

func TestReadBattery_None(t *testing.T) {
	root := t.TempDir()
	supply(t, root, "AC", "Mains", "")

	_, err := ReadBattery(root)
	assert.ErrorIs(t, err, ErrNoBattery)

	_, err = ReadBattery(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, ErrNoBattery)
}

func TestReadBattery_Garbage(t *testing.T) {
	root := t.TempDir()
	supply(t, root, "BAT1", "Battery", "lots")

	_, err := ReadBattery(root)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoBattery)
}
