package ptree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFindAttr(t *testing.T) {
	doc := `<item t="1000.5" p="netcdf /x Reflectivity"><v n="Key">Value</v></item>`
	n, err := ParseString(doc)
	require.NoError(t, err)
	require.Equal(t, "item", n.Tag)
	require.Equal(t, "1000.5", n.Attr("t"))

	v := n.Find("v")
	require.NotNil(t, v)
	require.Equal(t, "Key", v.Attr("n"))
	require.Equal(t, "Value", v.TrimmedText())
}

func TestParseMultipleChildren(t *testing.T) {
	doc := `<codeindex><item t="1"/><item t="2"/></codeindex>`
	n, err := ParseString(doc)
	require.NoError(t, err)
	items := n.FindAll("item")
	require.Len(t, items, 2)
	require.Equal(t, "1", items[0].Attr("t"))
	require.Equal(t, "2", items[1].Attr("t"))
}
