package record

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wxpipe/rapio/pkg/rtime"
)

func rec(selections ...string) *Record {
	return New(rtime.Now(), []string{"netcdf", "/x"}, selections, 0)
}

func TestFilterWanted(t *testing.T) {
	f := NewFilter(ParseSelector("Reflectivity:00.5*"), ParseSelector("Velocity"))

	require.True(t, f.Wanted(rec("t", "Reflectivity", "00.50")))
	require.False(t, f.Wanted(rec("t", "Reflectivity", "01.50")))
	require.True(t, f.Wanted(rec("t", "Velocity", "00.50")))
	require.False(t, f.Wanted(rec("t", "Zdr", "00.50")))
}

func TestFilterMessagesAlwaysWanted(t *testing.T) {
	f := NewFilter(ParseSelector("Reflectivity"))
	msg := rec() // no selections => message
	require.True(t, f.Wanted(msg))
}

func TestFilterVolEscapeHatch(t *testing.T) {
	f := NewFilter(ParseSelector("Reflectivity"))
	require.True(t, f.Wanted(rec("t", "Zdr", "vol")))
	require.True(t, f.Wanted(rec("t", "Zdr", "all")))
}

func TestFilterNoSelectorsWantsEverything(t *testing.T) {
	f := NewFilter()
	require.True(t, f.Wanted(rec("t", "Anything", "00.50")))
}
