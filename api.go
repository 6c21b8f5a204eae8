package bamboo

import "io"

// Engine is one embeddable Bamboo interpreter instance: a heap, a
// symbol table, a root environment with every built-in primitive
// already registered, and the diagnostic sink/GC threshold from
// Options. Per spec §5, an Engine is single-threaded and cooperative —
// it and everything reachable from it must not be shared across
// goroutines without external synchronization.
//
// Engine's surface mirrors the teacher's api.go: a handful of thin
// public entry points (Init, Eval, NewReader, RegisterBuiltin) that do
// no work of their own beyond orchestrating already-tested internals.
type Engine struct {
	heap    *Heap
	symbols *SymbolTable
	root    *Env

	out         io.Writer
	gcThreshold int
	gcCounter   int

	lastErr *Error
}

// Init creates a new Engine with every built-in primitive registered in
// its root environment. A nil opts uses NewOptions()'s defaults.
func Init(opts *Options) *Engine {
	if opts == nil {
		opts = NewOptions()
	}
	threshold := opts.GCThreshold
	if threshold <= 0 {
		threshold = defaultGCThreshold
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	e := &Engine{
		heap:        NewHeap(),
		symbols:     NewSymbolTable(),
		out:         out,
		gcThreshold: threshold,
	}
	e.root = e.NewEnv(nil)
	registerPrimitives(e, e.root)
	return e
}

// Destroy tears the engine down, freeing every allocation regardless of
// reachability. Per spec §4.1, this is the only place collect() is
// asked to ignore mark bits. An Engine must not be used after Destroy.
func (e *Engine) Destroy() {
	e.heap.collect(false)
	e.root = nil
}

// RootEnv returns the engine's top-level environment, the one every
// built-in primitive and every top-level DEFINE lands in.
func (e *Engine) RootEnv() *Env {
	return e.root
}

// RegisterBuiltin installs a host primitive under name in the root
// environment, the engine's equivalent of
// original_source/src/bamboo.h's bamboo_env_set_builtin.
func (e *Engine) RegisterBuiltin(name string, fn BuiltinFunc) {
	sym := e.symbols.Intern(name)
	e.root.DefineOrSet(sym, Value{kind: KindBuiltin, bi: &Builtin{Name: sym.Name(), Fn: fn}})
}

// Intern exposes the engine's symbol table so a host can build Values
// referencing the same symbols the reader produces.
func (e *Engine) Intern(name string) *Symbol {
	return e.symbols.Intern(name)
}

// Apply calls fn (a Closure or Builtin Value; any other kind, a Macro
// included, is a wrong-type error) with args already evaluated, the
// re-entrant counterpart to Eval that a host-registered
// primitive can use to call back into a function value it was handed —
// spec §4.6's "primitives may call back into the public apply/eval entry
// points."
func (e *Engine) Apply(fn Value, args []Value) (Value, error) {
	nf, nextExpr, nextEnv, v, done, err := e.dispatchCall(nil, fn, args)
	if err != nil {
		return Value{}, e.fail(err)
	}
	if done {
		return v, nil
	}
	return e.resume(nf, nextExpr, nextEnv)
}

// resume drives the trampoline starting from a frame already built by
// dispatchCall, used by Apply to finish a closure call initiated outside
// of Eval's own loop.
func (e *Engine) resume(stack *frame, expr Value, env *Env) (Value, error) {
	return e.runTrampoline(stack, expr, env)
}

// ErrorDetail returns a description of the most recent *Error produced
// by Eval or a Reader on this engine, mirroring spec §6's
// bamboo_error_detail(). It returns "" if no error has occurred yet.
func (e *Engine) ErrorDetail() string {
	if e.lastErr == nil {
		return ""
	}
	return e.lastErr.Error()
}

// gcTick increments the reduction counter once per main-loop iteration
// of the trampoline and runs a collection pass when it reaches
// gcThreshold, per spec §4.1/§4.5: "increments a counter on each
// iteration of its main loop and calls collect when the counter
// reaches a configured threshold." The counter resets to zero after
// every collection, so a long-running program collects at most once
// per gcThreshold reductions regardless of how many allocations happen
// to be live at the time — unlike a live-count trigger, which would
// fire on every single step once the live set settles above threshold.
func (e *Engine) gcTick(expr Value, env *Env, stack *frame) {
	e.gcCounter++
	if e.gcCounter < e.gcThreshold {
		return
	}
	e.gcCounter = 0
	e.heap.markRoots(expr, env, stack, e.root)
	e.heap.collect(true)
}
