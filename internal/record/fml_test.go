package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wxpipe/rapio/pkg/rtime"
)

func TestParseFMLCompact(t *testing.T) {
	doc := `<item t="1000.5" p="netcdf /x Reflectivity 00.50 data.netcdf.gz" s="19700101-001640.500 Reflectivity 00.50"/>`
	r, err := ParseFML(doc, "/x", 0)
	require.NoError(t, err)

	require.Equal(t, int64(1000), r.Time.Sec)
	require.InDelta(t, 0.5, r.Time.Frac, 1e-6)
	require.Equal(t, []string{"netcdf", "/x", "Reflectivity", "00.50", "data.netcdf.gz"}, r.Params)
	require.Equal(t, []string{"19700101-001640.500", "Reflectivity", "00.50"}, r.Selections)
}

func TestParseFMLLegacy(t *testing.T) {
	doc := `<item>
  <time fractional="0.057"> 925767275 </time>
  <params>netcdf /RADIALTEST Velocity 00.50 19990503-213435.netcdf </params>
  <selections>19990503-213435.057 Velocity 00.50 </selections>
</item>`
	r, err := ParseFML(doc, "/RADIALTEST", 0)
	require.NoError(t, err)
	require.Equal(t, int64(925767275), r.Time.Sec)
	require.InDelta(t, 0.057, r.Time.Frac, 1e-6)
	require.Equal(t, []string{"netcdf", "/RADIALTEST", "Velocity", "00.50", "19990503-213435.netcdf"}, r.Params)
}

func TestParseFMLLegacyEventMessage(t *testing.T) {
	doc := `<item>
  <time fractional="0"> 1000 </time>
  <params>Event 5</params>
  <selections>ignored Hello</selections>
</item>`
	r, err := ParseFML(doc, "", 0)
	require.NoError(t, err)
	require.True(t, r.IsMessage())
	require.Equal(t, "5", r.KeyValues["Count"])
	require.Equal(t, "Hello", r.KeyValues["MessageText"])
}

func TestMarshalFMLRoundTrip(t *testing.T) {
	r := New(
		rtime.FromUnix(1000, 0.5),
		[]string{"netcdf", "/x", "Reflectivity", "00.50", "data.netcdf.gz"},
		[]string{"19700101-001640.500", "Reflectivity", "00.50"},
		0,
	)
	out := MarshalFML(r)
	require.True(t, strings.Contains(out, `t="1000.50"`))

	got, err := ParseFML(out, "/x", 0)
	require.NoError(t, err)
	require.Equal(t, r.Params, got.Params)
	require.Equal(t, r.Selections, got.Selections)
	require.Equal(t, r.Time.Sec, got.Time.Sec)
}
