package bamboo

// Heap owns every collectable allocation Bamboo makes: pairs, strings,
// and environments. Each lives on its own intrusive singly-linked list
// with a mark bit embedded directly in the node, so locating an
// allocation's bookkeeping from a live pointer to it is free — there is
// no separate heap-entry record to look up, unlike the C implementation
// this is ported from, which has to recover a heap entry from a payload
// pointer by field offset.
type Heap struct {
	pairs   *Pair
	strings *StringObj
	envs    *Env

	pairCount, stringCount, envCount int
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// allocPair allocates a new cons cell and links it into the heap.
func (h *Heap) allocPair(head, tail Value) *Pair {
	p := &Pair{head: head, tail: tail, next: h.pairs}
	h.pairs = p
	h.pairCount++
	return p
}

// allocString allocates a new string object.
func (h *Heap) allocString(data string) *StringObj {
	s := &StringObj{data: data, next: h.strings}
	h.strings = s
	h.stringCount++
	return s
}

// allocEnv allocates a new environment frame with the given parent.
func (h *Heap) allocEnv(parent *Env) *Env {
	e := &Env{parent: parent, next: h.envs}
	h.envs = e
	h.envCount++
	return e
}

// liveCount reports the number of tracked allocations across all three
// lists. It does not trigger collection; gcTick counts evaluator steps.
func (h *Heap) liveCount() int {
	return h.pairCount + h.stringCount + h.envCount
}

// mark walks everything reachable from v, setting mark bits. It is safe
// on cyclic structures: a node whose mark bit is already set is not
// revisited.
func (h *Heap) mark(v Value) {
	switch v.kind {
	case KindPair, KindClosure, KindMacro:
		h.markPair(v.pr)
	case KindString:
		h.markString(v.str)
	case kindEnv:
		h.markEnv(v.env)
	}
}

func (h *Heap) markPair(p *Pair) {
	if p == nil || p.mark {
		return
	}
	p.mark = true
	h.mark(p.head)
	h.mark(p.tail)
}

func (h *Heap) markString(s *StringObj) {
	if s == nil {
		return
	}
	s.mark = true
}

func (h *Heap) markEnv(e *Env) {
	if e == nil || e.mark {
		return
	}
	e.mark = true
	for _, b := range e.bindings {
		h.mark(b.val)
	}
	h.markEnv(e.parent)
}

// markRoots marks every root the engine currently exposes: the active
// expression and environment, the trampoline stack still in flight, and
// (implicitly, since it never goes away) the symbol table — interned
// symbols are never collected, see SymbolTable.
func (h *Heap) markRoots(expr Value, env *Env, stack *frame, rootEnv *Env) {
	h.mark(expr)
	h.markEnv(env)
	h.markEnv(rootEnv)
	for f := stack; f != nil; f = f.parent {
		h.markEnv(f.env)
		h.mark(f.op)
		for _, p := range f.pending {
			h.mark(p)
		}
		for _, a := range f.argsAcc {
			h.mark(a)
		}
		for _, b := range f.body {
			h.mark(b)
		}
		h.mark(f.ifThen)
		h.mark(f.ifElse)
		h.markEnv(f.macroCallerEnv)
	}
}

// collect sweeps every unmarked allocation from each list. When
// respectMarks is false every allocation is freed unconditionally and
// mark bits are ignored — used by (*Engine).Destroy to tear the whole
// heap down.
func (h *Heap) collect(respectMarks bool) {
	h.pairs, h.pairCount = sweepPairs(h.pairs, respectMarks)
	h.strings, h.stringCount = sweepStrings(h.strings, respectMarks)
	h.envs, h.envCount = sweepEnvs(h.envs, respectMarks)
}

func sweepPairs(head *Pair, respectMarks bool) (*Pair, int) {
	var survivors *Pair
	var tail *Pair
	count := 0
	for p := head; p != nil; {
		next := p.next
		if respectMarks && p.mark {
			p.mark = false
			p.next = nil
			if survivors == nil {
				survivors = p
			} else {
				tail.next = p
			}
			tail = p
			count++
		}
		p = next
	}
	return survivors, count
}

func sweepStrings(head *StringObj, respectMarks bool) (*StringObj, int) {
	var survivors *StringObj
	var tail *StringObj
	count := 0
	for s := head; s != nil; {
		next := s.next
		if respectMarks && s.mark {
			s.mark = false
			s.next = nil
			if survivors == nil {
				survivors = s
			} else {
				tail.next = s
			}
			tail = s
			count++
		}
		s = next
	}
	return survivors, count
}

func sweepEnvs(head *Env, respectMarks bool) (*Env, int) {
	var survivors *Env
	var tail *Env
	count := 0
	for e := head; e != nil; {
		next := e.next
		if respectMarks && e.mark {
			e.mark = false
			e.next = nil
			if survivors == nil {
				survivors = e
			} else {
				tail.next = e
			}
			tail = e
			count++
		}
		e = next
	}
	return survivors, count
}
