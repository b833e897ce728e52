package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type api interface{ Do() }

type impl struct{}

func (*impl) Do() {}

func TestNotNil(t *testing.T) {
	require.Panics(t, func() { NotNil(nil) })

	var typedNil *impl
	var intf api = typedNil
	require.Panics(t, func() { NotNil(intf) })

	require.NotPanics(t, func() { NotNil(&impl{}) })
	require.NotPanics(t, func() { NotNil(impl{}) })
	require.NotPanics(t, func() { NotNil(3) })
}

func TestNotEmptyStr(t *testing.T) {
	require.Panics(t, func() { NotEmptyStr("", "base url") })
	require.NotPanics(t, func() { NotEmptyStr("x", "base url") })
}
