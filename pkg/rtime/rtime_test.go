package rtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromUnixNormalizesFrac(t *testing.T) {
	tm := FromUnix(100, 1.25)
	require.Equal(t, int64(101), tm.Sec)
	require.InDelta(t, 0.25, tm.Frac, 1e-9)

	tm2 := FromUnix(100, -0.25)
	require.Equal(t, int64(99), tm2.Sec)
	require.InDelta(t, 0.75, tm2.Frac, 1e-9)
}

func TestCmpAndOrdering(t *testing.T) {
	a := FromUnix(100, 0.1)
	b := FromUnix(100, 0.2)
	c := FromUnix(101, 0.0)
	require.True(t, a.Before(b))
	require.True(t, b.Before(c))
	require.True(t, c.After(a))
	require.True(t, a.Equal(FromUnix(100, 0.1)))
}

func TestFormat(t *testing.T) {
	tm := FromUnix(925776886, 0.46)
	got := Format(tm, "%Y%m%d-%H%M%S.%/ms")
	require.Len(t, got, len("19990504-001446.460"))
}
