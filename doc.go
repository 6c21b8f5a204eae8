// Package bamboo is an embeddable Lisp interpreter core: a tagged value
// model, a mark-sweep garbage collector, a recursive-descent reader, and a
// trampolined evaluator with proper tail calls, wrapped in a small host
// API (Init/Eval/NewReader/RegisterBuiltin) suitable for embedding in a larger
// Go program.
//
// The engine is single-threaded and cooperative: an *Engine and everything
// reachable from it (its heap, environments, and Values) must not be used
// from more than one goroutine at a time without external synchronization.
package bamboo
