package bamboo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run reads and evaluates every top-level expression in src in order,
// returning the value of the last one — the shape of a small script, the
// way the teacher's tests/basic_test.go drives a grammar fixture through
// its full pipeline rather than testing one production in isolation.
func run(t *testing.T, e *Engine, src string) Value {
	t.Helper()
	r := e.NewReader(src)
	var last Value
	for {
		expr, err := r.ReadValue()
		if err == ErrEndOfInput {
			break
		}
		require.NoError(t, err)
		last, err = e.Eval(expr, e.RootEnv())
		require.NoError(t, err)
	}
	return last
}

func TestEndToEndPositiveScenarios(t *testing.T) {
	t.Run("arithmetic and comparison compose", func(t *testing.T) {
		e := Init(nil)
		v := run(t, e, "(if (< 1 2) (+ 1 2 3) (- 1 2 3))")
		assert.Equal(t, Int(6), v)
	})

	t.Run("recursive definitions see themselves", func(t *testing.T) {
		e := Init(nil)
		v := run(t, e, `
			(define (fib n) (if (< n 2) n (+ (fib (- n 1)) (fib (- n 2)))))
			(fib 10)
		`)
		assert.Equal(t, Int(55), v)
	})

	t.Run("closures capture their defining environment", func(t *testing.T) {
		e := Init(nil)
		v := run(t, e, `
			(define (counter-from n)
			  (lambda () (define n (+ n 1)) n))
			(define c (counter-from 0))
			(c)
			(c)
			(c)
		`)
		assert.Equal(t, Int(3), v)
	})

	t.Run("macros rewrite once into the caller's environment", func(t *testing.T) {
		e := Init(nil)
		v := run(t, e, `
			(define x 100)
			(defmacro (get-x) (quote x))
			(get-x)
		`)
		assert.Equal(t, Int(100), v)
	})

	t.Run("lists round-trip through cons/car/cdr", func(t *testing.T) {
		e := Init(nil)
		v := run(t, e, `(cons 1 (cons 2 (cons 3 nil)))`)
		assert.Equal(t, "(1 2 3)", Sprint(v))
	})

	t.Run("display renders to the configured sink and returns its text", func(t *testing.T) {
		var buf bytes.Buffer
		opts := NewOptions()
		opts.Output = &buf
		e := Init(opts)
		v := run(t, e, `(display "the answer is" 42)`)
		assert.Equal(t, "the answer is42\n", buf.String())
		s, ok := v.AsString()
		require.True(t, ok)
		assert.Equal(t, "the answer is42", s)
	})
}

func TestEndToEndNegativeScenarios(t *testing.T) {
	t.Run("unbound symbol", func(t *testing.T) {
		e := Init(nil)
		_, err := readEval(t, e, "never-defined")
		assertKind(t, err, ErrUnboundSymbol)
	})

	t.Run("wrong arity", func(t *testing.T) {
		e := Init(nil)
		_, err := readEval(t, e, "(cons 1)")
		assertKind(t, err, ErrWrongArity)
	})

	t.Run("wrong type", func(t *testing.T) {
		e := Init(nil)
		_, err := readEval(t, e, "(+ 1 (quote a))")
		assertKind(t, err, ErrWrongType)
	})

	t.Run("syntax error", func(t *testing.T) {
		e := Init(nil)
		r := e.NewReader("(1 2")
		_, err := r.ReadValue()
		assertKind(t, err, ErrSyntax)
	})
}

func readEval(t *testing.T, e *Engine, src string) (Value, error) {
	t.Helper()
	r := e.NewReader(src)
	expr, err := r.ReadValue()
	require.NoError(t, err)
	return e.Eval(expr, e.RootEnv())
}

func assertKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, kind, berr.Kind)
}

func TestInitDestroyLifecycle(t *testing.T) {
	e := Init(nil)
	v, err := e.Eval(Int(42), e.RootEnv())
	require.NoError(t, err)
	assert.Equal(t, Int(42), v)
	e.Destroy()
	assert.Equal(t, 0, e.heap.liveCount())
}

func TestErrorDetailReflectsLastError(t *testing.T) {
	e := Init(nil)
	assert.Empty(t, e.ErrorDetail())
	_, _ = readEval(t, e, "never-defined")
	assert.NotEmpty(t, e.ErrorDetail())
}

func TestGCRunsDuringLongEvaluation(t *testing.T) {
	opts := NewOptions()
	opts.GCThreshold = 16
	e := Init(opts)
	// Builds and discards many intermediate pairs; none of them should
	// accumulate unboundedly since nothing roots the intermediates once
	// a given `cons` call returns.
	run(t, e, `
		(define (build n)
		  (if (= n 0) nil (cons n (build (- n 1)))))
		(define (sum-list lst)
		  (if (nil? lst) 0 (+ (car lst) (sum-list (cdr lst)))))
		(sum-list (build 500))
	`)
	assert.Less(t, e.heap.pairCount, 600, "garbage collection kept the live set bounded")
}
