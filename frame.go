package bamboo

// special tags what a frame on the trampoline stack is waiting for. A
// plain function/builtin application frame carries sfNone; the special
// forms that need to suspend evaluation partway through (IF, the
// symbol-name form of DEFINE, APPLY, and entering a closure or macro
// body) tag their frame so the "deliver a result" half of eval knows
// what to do with it.
type special uint8

const (
	sfNone special = iota
	sfIf
	sfDefineBind
	sfApply
	sfBody      // executing a closure's (non-tail) body expressions
	sfMacroBody // executing a macro's body, ending in a re-eval step
)

// frame is the trampoline's explicit stack-frame record, per spec §4.5
// and its Design Notes recommendation to prefer an explicit struct over
// heap-allocated pair chains. Conceptually it holds the same six slots
// spec.md describes (parent, env, evaluated-op, pending-args,
// evaluated-args, body); opKnown plus op stands in for "Nil means
// operator not yet evaluated" so a legitimately Nil operator (which can
// never be called anyway) can't be confused with "not yet evaluated."
type frame struct {
	parent *frame
	env    *Env

	special special

	opKnown bool
	op      Value

	pending []Value // argument expressions still to evaluate, source order
	argsAcc []Value // evaluated arguments so far, source order

	body []Value // remaining body expressions (sfBody/sfMacroBody)

	ifThen, ifElse Value // sfIf
	sym            *Symbol // sfDefineBind

	macroCallerEnv *Env // sfMacroBody: env to re-evaluate the expansion in
}
