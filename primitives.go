package bamboo

// registerPrimitives installs every built-in from spec §4.6 into env.
// Each is a BuiltinFunc closed over nothing but its own name, grounded
// directly in the signatures and error contracts spec §4.6 lists.
func registerPrimitives(e *Engine, env *Env) {
	reg := func(name string, fn BuiltinFunc) { e.RegisterBuiltin(name, fn) }

	reg("CAR", biCar)
	reg("CDR", biCdr)
	reg("CONS", biCons)

	reg("+", biAdd)
	reg("-", biSub)
	reg("*", biMul)
	reg("/", biDiv)

	reg("NOT", biNot)
	reg("AND", biAnd)
	reg("OR", biOr)

	reg("=", numericCompare("=", func(a, b float64) bool { return a == b }))
	reg("<", numericCompare("<", func(a, b float64) bool { return a < b }))
	reg(">", numericCompare(">", func(a, b float64) bool { return a > b }))

	reg("EQ?", biEq)

	reg("NIL?", typePredicate(func(v Value) bool { return v.Kind() == KindNil }))
	reg("SYMBOL?", typePredicate(func(v Value) bool { return v.Kind() == KindSymbol }))
	reg("INTEGER?", typePredicate(func(v Value) bool { return v.Kind() == KindInteger }))
	reg("FLOAT?", typePredicate(func(v Value) bool { return v.Kind() == KindFloat }))
	reg("NUMERIC?", typePredicate(func(v Value) bool { return v.Kind() == KindInteger || v.Kind() == KindFloat }))
	reg("BOOLEAN?", typePredicate(func(v Value) bool { return v.Kind() == KindBoolean }))
	reg("STRING?", typePredicate(func(v Value) bool { return v.Kind() == KindString }))
	reg("PAIR?", typePredicate(func(v Value) bool { return v.Kind() == KindPair }))
	reg("BUILTIN?", typePredicate(func(v Value) bool { return v.Kind() == KindBuiltin }))
	reg("CLOSURE?", typePredicate(func(v Value) bool { return v.Kind() == KindClosure }))
	reg("MACRO?", typePredicate(func(v Value) bool { return v.Kind() == KindMacro }))

	reg("DISPLAY", biDisplay)
	reg("CONCAT", biConcat)
	reg("NEWLINE", biNewline)
}

// CAR/CDR accept Pair or Nil, returning Nil for Nil — per spec §4.6, not
// an error, since an empty list's car/cdr is a common, harmless query in
// list-walking code.
func biCar(e *Engine, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, arityError("CAR")
	}
	v := args[0]
	if v.IsNil() {
		return Nil, nil
	}
	if !v.IsPair() {
		return Value{}, typeError("CAR: expected pair or nil")
	}
	return v.Head(), nil
}

func biCdr(e *Engine, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, arityError("CDR")
	}
	v := args[0]
	if v.IsNil() {
		return Nil, nil
	}
	if !v.IsPair() {
		return Value{}, typeError("CDR: expected pair or nil")
	}
	return v.Tail(), nil
}

func biCons(e *Engine, args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, arityError("CONS")
	}
	p := e.heap.allocPair(args[0], args[1])
	return Value{kind: KindPair, pr: p}, nil
}

// asNumber extracts a float64 view of v plus whether it was originally
// an Integer, for ops that need to know if the whole chain stayed
// integral.
func asNumber(v Value) (f float64, isInt bool, ok bool) {
	if iv, ok := v.AsInt(); ok {
		return float64(iv), true, true
	}
	if fv, ok := v.AsFloat(); ok {
		return fv, false, true
	}
	return 0, false, false
}

// biAdd/biSub/biMul implement +, -, * over >=2 numeric arguments,
// accumulated left to right. The result stays Integer only if every
// operand was an Integer; any Float operand promotes the whole
// computation, per spec §4.6. Integer arithmetic wraps on overflow the
// same way Go's native int64 arithmetic does, satisfying spec's
// wrap-on-overflow requirement without extra code.
func biAdd(e *Engine, args []Value) (Value, error) { return numericFold("+", args, addOp) }
func biSub(e *Engine, args []Value) (Value, error) { return numericFold("-", args, subOp) }
func biMul(e *Engine, args []Value) (Value, error) { return numericFold("*", args, mulOp) }

func addOp(a, b int64) int64      { return a + b }
func addOpF(a, b float64) float64 { return a + b }
func subOp(a, b int64) int64      { return a - b }
func subOpF(a, b float64) float64 { return a - b }
func mulOp(a, b int64) int64      { return a * b }
func mulOpF(a, b float64) float64 { return a * b }

func numericFold(name string, args []Value, iop func(a, b int64) int64) (Value, error) {
	if len(args) < 2 {
		return Value{}, arityError(name)
	}
	var fop func(a, b float64) float64
	switch name {
	case "+":
		fop = addOpF
	case "-":
		fop = subOpF
	case "*":
		fop = mulOpF
	}

	allInt := true
	nums := make([]float64, len(args))
	ints := make([]int64, len(args))
	for i, a := range args {
		f, isInt, ok := asNumber(a)
		if !ok {
			return Value{}, typeError(name + ": expected numeric argument")
		}
		nums[i] = f
		if isInt {
			ints[i], _ = a.AsInt()
		} else {
			allInt = false
		}
	}

	if allInt {
		acc := ints[0]
		for _, n := range ints[1:] {
			acc = iop(acc, n)
		}
		return Int(acc), nil
	}
	acc := nums[0]
	for _, n := range nums[1:] {
		acc = fop(acc, n)
	}
	return Float(acc), nil
}

// biDiv always returns a Float, per spec §4.6, regardless of whether
// every operand is an Integer.
func biDiv(e *Engine, args []Value) (Value, error) {
	if len(args) < 2 {
		return Value{}, arityError("/")
	}
	acc, _, ok := asNumber(args[0])
	if !ok {
		return Value{}, typeError("/: expected numeric argument")
	}
	for _, a := range args[1:] {
		n, _, ok := asNumber(a)
		if !ok {
			return Value{}, typeError("/: expected numeric argument")
		}
		acc /= n
	}
	return Float(acc), nil
}

// numericCompare builds =, <, > as a pairwise-adjacent reduction over
// >=2 numeric arguments: every consecutive pair must satisfy cmp, the
// usual Lisp chained-comparison rule (e.g. (< 1 2 3) is true iff 1<2 and
// 2<3).
func numericCompare(name string, cmp func(a, b float64) bool) BuiltinFunc {
	return func(e *Engine, args []Value) (Value, error) {
		if len(args) < 2 {
			return Value{}, arityError(name)
		}
		prev, _, ok := asNumber(args[0])
		if !ok {
			return Value{}, typeError(name + ": expected numeric argument")
		}
		for _, a := range args[1:] {
			n, _, ok := asNumber(a)
			if !ok {
				return Value{}, typeError(name + ": expected numeric argument")
			}
			if !cmp(prev, n) {
				return False, nil
			}
			prev = n
		}
		return True, nil
	}
}

func biEq(e *Engine, args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, arityError("EQ?")
	}
	return Bool(valuesEqual(args[0], args[1])), nil
}

func typePredicate(pred func(Value) bool) BuiltinFunc {
	return func(e *Engine, args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, arityError("type predicate")
		}
		return Bool(pred(args[0])), nil
	}
}

func biNot(e *Engine, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, arityError("NOT")
	}
	return Bool(!isTruthy(args[0])), nil
}

// biAnd and biOr deliberately do NOT implement ordinary short-circuit
// boolean logic. Per spec §9's Open Question, the original engine's
// AND/OR compare pairwise whether adjacent arguments agree on
// truthiness, which is a real, observable (if surprising) discrepancy
// from the usual Lisp semantics. This reproduces that behaviour instead
// of silently correcting it:
//
//   AND args...  ->  #t iff every adjacent pair of args agrees on
//                     truthiness (all-truthy or all-falsy runs "agree";
//                     a truthy value next to a falsy one breaks it)
//   OR  args...  ->  #t iff at least one adjacent pair agrees
//
// So (AND #t #t #t) is #t, but so is (AND #f #f #f) — and a single
// truthy/falsy transition anywhere in the argument list makes AND
// false, which is not what "and" means in any other Lisp. This is
// intentional: flagged, not fixed.
func biAnd(e *Engine, args []Value) (Value, error) {
	if len(args) < 2 {
		return Value{}, arityError("AND")
	}
	agree := true
	prev := isTruthy(args[0])
	for _, a := range args[1:] {
		cur := isTruthy(a)
		if cur != prev {
			agree = false
		}
		prev = cur
	}
	return Bool(agree), nil
}

func biOr(e *Engine, args []Value) (Value, error) {
	if len(args) < 2 {
		return Value{}, arityError("OR")
	}
	agree := false
	prev := isTruthy(args[0])
	for _, a := range args[1:] {
		cur := isTruthy(a)
		if cur == prev {
			agree = true
		}
		prev = cur
	}
	return Bool(agree), nil
}

func biDisplay(e *Engine, args []Value) (Value, error) {
	var out string
	for _, a := range args {
		out += displayText(a)
	}
	out += "\n"
	if _, err := e.out.Write([]byte(out)); err != nil {
		return Value{}, err
	}
	s := e.heap.allocString(out[:len(out)-1])
	return Value{kind: KindString, str: s}, nil
}

func biConcat(e *Engine, args []Value) (Value, error) {
	var out string
	for _, a := range args {
		out += displayText(a)
	}
	s := e.heap.allocString(out)
	return Value{kind: KindString, str: s}, nil
}

func biNewline(e *Engine, args []Value) (Value, error) {
	if len(args) != 0 {
		return Value{}, arityError("NEWLINE")
	}
	if _, err := e.out.Write([]byte("\n")); err != nil {
		return Value{}, err
	}
	return Nil, nil
}
