package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type widget struct{ name string }

func TestFactoryBuildAndDuplicate(t *testing.T) {
	f := NewFactory[*widget]()
	require.NoError(t, f.Register("a", func(params string) (*widget, error) {
		return &widget{name: params}, nil
	}))

	w, err := f.Build("a", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", w.name)

	err = f.Register("a", func(params string) (*widget, error) { return nil, nil })
	require.Error(t, err)
}

func TestFactoryUnknownName(t *testing.T) {
	f := NewFactory[*widget]()
	_, err := f.Build("missing", "")
	require.Error(t, err)
}
