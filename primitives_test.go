package dsa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopySmallBelowThreshold(t *testing.T) {
	src := []byte("hello, world")
	dst := make([]byte, len(src))
	got := Copy(dst, src)
	require.Equal(t, src, got)
	require.Same(t, &dst[0], &got[0])
}

func TestMoveSmallBelowThreshold(t *testing.T) {
	src := []byte("overlapping?")
	dst := make([]byte, len(src))
	got := Move(dst, src)
	require.Equal(t, src, got)
}

func TestSetZeroFillsSmall(t *testing.T) {
	dst := []byte{1, 2, 3, 4}
	got := Set(dst, 0)
	require.Equal(t, []byte{0, 0, 0, 0}, got)
}

func TestSetNonZeroValueNeverOffloads(t *testing.T) {
	dst := make([]byte, 4)
	got := Set(dst, 0xAB)
	require.Equal(t, []byte{0xAB, 0xAB, 0xAB, 0xAB}, got)
}

func TestCompareMatchesBytesCompare(t *testing.T) {
	require.Equal(t, 0, Compare([]byte("abc"), []byte("abc")))
	require.Equal(t, -1, Compare([]byte("abc"), []byte("abd")))
	require.Equal(t, 1, Compare([]byte("abd"), []byte("abc")))
}

func TestCallSiteFormat(t *testing.T) {
	site := callSite(1)
	require.Contains(t, site, "primitives_test.go_")
	require.Contains(t, site, "TestCallSiteFormat")
}
