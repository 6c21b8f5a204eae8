package bamboo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"nil", Nil, KindNil},
		{"int", Int(42), KindInteger},
		{"float", Float(3.5), KindFloat},
		{"true", True, KindBoolean},
		{"false", False, KindBoolean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
		})
	}
}

func TestValueAccessors(t *testing.T) {
	n, ok := Int(7).AsInt()
	require.True(t, ok)
	assert.EqualValues(t, 7, n)

	_, ok = Int(7).AsFloat()
	assert.False(t, ok)

	f, ok := Float(1.5).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 1.5, f)

	b, ok := True.AsBool()
	require.True(t, ok)
	assert.True(t, b)
}

func TestIsTruthy(t *testing.T) {
	assert.True(t, isTruthy(Nil))
	assert.True(t, isTruthy(Int(0)))
	assert.True(t, isTruthy(True))
	assert.False(t, isTruthy(False))
}

func TestValuesEqual(t *testing.T) {
	st := NewSymbolTable()
	a := symbolValue(st.Intern("foo"))
	b := symbolValue(st.Intern("FOO"))
	assert.True(t, valuesEqual(a, b), "interning folds case, so FOO and foo are the same symbol")

	heap := NewHeap()
	s1 := Value{kind: KindString, str: heap.allocString("hi")}
	s2 := Value{kind: KindString, str: heap.allocString("hi")}
	assert.True(t, valuesEqual(s1, s2), "strings compare by content")

	p1 := Value{kind: KindPair, pr: heap.allocPair(Int(1), Nil)}
	p2 := Value{kind: KindPair, pr: heap.allocPair(Int(1), Nil)}
	assert.False(t, valuesEqual(p1, p2), "pairs compare by identity, not structural equality")
	assert.True(t, valuesEqual(p1, p1))
}

func TestNewClosureShape(t *testing.T) {
	heap := NewHeap()
	env := heap.allocEnv(nil)
	params := symbolValue(NewSymbolTable().Intern("x"))
	body := Value{kind: KindPair, pr: heap.allocPair(Int(1), Nil)}

	c := newClosure(heap, KindClosure, env, params, body)
	assert.Equal(t, KindClosure, c.Kind())
	assert.Same(t, env, closureEnv(c))
	assert.True(t, valuesEqual(params, closureParams(c)))
}
