package numa

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

func fixtureTopology(t *testing.T) *SysfsTopology {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node0", "meminfo"), "Node 0 MemTotal:       16777216 kB\n")
	writeFile(t, filepath.Join(root, "node1", "meminfo"), "Node 1 MemTotal:              0 kB\n")
	return &SysfsTopology{Root: root}
}

func TestMaxNode(t *testing.T) {
	topo := fixtureTopology(t)
	max, err := topo.MaxNode()
	require.NoError(t, err)
	require.Equal(t, 1, max)
}

func TestConfiguredNodes(t *testing.T) {
	topo := fixtureTopology(t)
	n, err := topo.ConfiguredNodes()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestNodeHasMemory(t *testing.T) {
	topo := fixtureTopology(t)

	ok, err := topo.NodeHasMemory(0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = topo.NodeHasMemory(1)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = topo.NodeHasMemory(7)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMaxNodeMissingRoot(t *testing.T) {
	topo := &SysfsTopology{Root: filepath.Join(t.TempDir(), "does-not-exist")}
	_, err := topo.MaxNode()
	require.Error(t, err)
}
