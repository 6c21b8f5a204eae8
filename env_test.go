package bamboo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLookupWalksParentChain(t *testing.T) {
	e := Init(nil)
	root := e.RootEnv()
	x := e.Intern("X")
	root.DefineOrSet(x, Int(1))

	child := e.NewEnv(root)
	v, err := child.Lookup(x)
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)
}

func TestEnvDefineOrSetNeverWalksParent(t *testing.T) {
	e := Init(nil)
	root := e.RootEnv()
	x := e.Intern("X")
	root.DefineOrSet(x, Int(1))

	child := e.NewEnv(root)
	child.DefineOrSet(x, Int(2))

	childVal, err := child.Lookup(x)
	require.NoError(t, err)
	assert.Equal(t, Int(2), childVal)

	rootVal, err := root.Lookup(x)
	require.NoError(t, err)
	assert.Equal(t, Int(1), rootVal, "shadowing in child must not mutate the parent's binding")
}

func TestEnvLookupUnbound(t *testing.T) {
	e := Init(nil)
	_, err := e.RootEnv().Lookup(e.Intern("NOPE"))
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ErrUnboundSymbol, berr.Kind)
}
