package bamboo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readOne(t *testing.T, e *Engine, src string) Value {
	t.Helper()
	r := e.NewReader(src)
	v, err := r.ReadValue()
	require.NoError(t, err)
	return v
}

func TestReadAtoms(t *testing.T) {
	e := Init(nil)
	tests := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"-7", "-7"},
		{"3.5", "3.5"},
		{"#t", "#t"},
		{"#f", "#f"},
		{"foo", "FOO"},
		{"+", "+"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v := readOne(t, e, tt.src)
			assert.Equal(t, tt.want, Sprint(v))
		})
	}
}

func TestReadStringNoEscapes(t *testing.T) {
	e := Init(nil)
	v := readOne(t, e, `"hello \n world"`)
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, `hello \n world`, s, "no escape processing: backslash-n stays literal")
}

func TestReadList(t *testing.T) {
	e := Init(nil)
	v := readOne(t, e, "(1 2 3)")
	items, err := listToSlice(v)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, Int(1), items[0])
	assert.Equal(t, Int(3), items[2])
}

func TestReadEmptyListIsNil(t *testing.T) {
	e := Init(nil)
	v := readOne(t, e, "()")
	assert.True(t, v.IsNil())
}

func TestReadDottedPair(t *testing.T) {
	e := Init(nil)
	v := readOne(t, e, "(1 . 2)")
	require.True(t, v.IsPair())
	assert.Equal(t, Int(1), v.Head())
	assert.Equal(t, Int(2), v.Tail())
}

func TestReadDottedPairErrors(t *testing.T) {
	e := Init(nil)
	cases := []string{
		"(. 1)",     // no left-hand element
		"(1 2 . )",  // no right-hand expression
		"(1 . 2 3)", // extra element after the dotted tail
		"(1 . . 2)", // more than one dot
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			r := e.NewReader(src)
			_, err := r.ReadValue()
			require.Error(t, err)
			var berr *Error
			require.ErrorAs(t, err, &berr)
			assert.Equal(t, ErrSyntax, berr.Kind)
		})
	}
}

func TestReadQuoteShorthand(t *testing.T) {
	e := Init(nil)
	v := readOne(t, e, "'foo")
	items, err := listToSlice(v)
	require.NoError(t, err)
	require.Len(t, items, 2)
	sym, ok := items[0].AsSymbol()
	require.True(t, ok)
	assert.Equal(t, "QUOTE", sym.Name())
}

func TestReadQuoteListRejected(t *testing.T) {
	e := Init(nil)
	r := e.NewReader("'(1 2)")
	_, err := r.ReadValue()
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ErrSyntax, berr.Kind)
}

func TestReadEndOfInput(t *testing.T) {
	e := Init(nil)
	r := e.NewReader("   \n\t  ")
	_, err := r.ReadValue()
	assert.ErrorIs(t, err, ErrEndOfInput)
}

func TestReadNumericOverflow(t *testing.T) {
	e := Init(nil)
	r := e.NewReader("99999999999999999999999999999")
	_, err := r.ReadValue()
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ErrNumericOverflow, berr.Kind)
}

func TestReadNumericUnderflow(t *testing.T) {
	e := Init(nil)
	r := e.NewReader("-99999999999999999999999999999")
	_, err := r.ReadValue()
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, ErrNumericUnderflow, berr.Kind)
}

func TestReadMultipleTopLevelExpressions(t *testing.T) {
	e := Init(nil)
	r := e.NewReader("1 2 3")
	var got []Value
	for {
		v, err := r.ReadValue()
		if err == ErrEndOfInput {
			break
		}
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Len(t, got, 3)
}
