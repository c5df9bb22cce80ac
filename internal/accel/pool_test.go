package accel

import (
	"testing"

	"github.com/arjvik/go-dsa/internal/constants"
	"github.com/stretchr/testify/require"
)

func TestGetBufferSizing(t *testing.T) {
	threshold := constants.OffloadThreshold
	cases := []struct {
		size    int
		wantCap int
	}{
		{100, threshold},
		{threshold, threshold},
		{threshold + 1, 2 * threshold},
		{4 * threshold, 4 * threshold},
		{8*threshold + 1, 8*threshold + 1},
	}
	for _, c := range cases {
		buf := getBuffer(c.size)
		require.Len(t, buf, c.size)
		require.Equal(t, c.wantCap, cap(buf))
		putBuffer(buf)
	}
}

func TestPutBufferOversizeIsDropped(t *testing.T) {
	buf := make([]byte, 8*constants.OffloadThreshold+10)
	require.NotPanics(t, func() { putBuffer(buf) })
}
