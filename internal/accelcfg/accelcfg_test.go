package accelcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDevicesEnumeratesWorkQueues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dsa0", "numa_node"), "0\n")
	writeFile(t, filepath.Join(root, "dsa0", "wq0.0", "mode"), "shared\n")
	writeFile(t, filepath.Join(root, "dsa0", "wq0.1", "mode"), "dedicated\n")
	writeFile(t, filepath.Join(root, "dsa1", "numa_node"), "1\n")
	// not a dsa device; must be ignored
	writeFile(t, filepath.Join(root, "iax0", "numa_node"), "0\n")

	ctx := &Context{Root: root}
	devices, err := ctx.Devices()
	require.NoError(t, err)
	require.Len(t, devices, 2)

	require.Equal(t, "dsa0", devices[0].Name)
	require.Equal(t, 0, devices[0].NumaNode)
	require.Len(t, devices[0].WorkQueues, 2)
	require.Equal(t, "wq0.0", devices[0].WorkQueues[0].Name)
	require.True(t, devices[0].WorkQueues[0].Shared)
	require.False(t, devices[0].WorkQueues[1].Shared)
	require.Equal(t, "/dev/dsa/wq0.0", devices[0].WorkQueues[0].CharDev)

	require.Equal(t, "dsa1", devices[1].Name)
	require.Equal(t, 1, devices[1].NumaNode)
	require.Empty(t, devices[1].WorkQueues)
}

func TestDevicesMissingNumaNodeDefaultsToZero(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dsa0", "wq0.0", "mode"), "shared\n")

	ctx := &Context{Root: root}
	devices, err := ctx.Devices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.Equal(t, 0, devices[0].NumaNode)
}
