package bamboo

// Eval reduces expr to a value in env, using an explicit trampoline
// (see frame.go) instead of Go-level recursion so that a tail call in
// Bamboo code never grows the Go call stack, per spec §4.5's tail-call
// requirement. The loop alternates between two phases: "reduce expr" and
// "deliver result to the current frame" (pendingResult selects which).
func (e *Engine) Eval(expr Value, env *Env) (Value, error) {
	return e.runTrampoline(nil, expr, env)
}

// runTrampoline is Eval's loop, parameterized over a starting stack so
// Apply can resume a call it already partially dispatched (see
// dispatchCall) without duplicating this logic.
func (e *Engine) runTrampoline(stack *frame, expr Value, env *Env) (Value, error) {
	var result Value
	pendingResult := false

	for {
		if !pendingResult {
			e.gcTick(expr, env, stack)

			if sym, ok := expr.AsSymbol(); ok {
				v, err := env.Lookup(sym)
				if err != nil {
					return Value{}, e.fail(err)
				}
				result, pendingResult = v, true
				continue
			}
			if !expr.IsPair() {
				result, pendingResult = expr, true
				continue
			}

			head := expr.Head()
			tail := expr.Tail()

			if sym, ok := head.AsSymbol(); ok {
				if handled, v, nextExpr, nextEnv, pushed, err := e.specialForm(sym.Name(), tail, env, stack); handled {
					if err != nil {
						return Value{}, e.fail(err)
					}
					if pushed != nil {
						stack = pushed
						expr, env, pendingResult = nextExpr, nextEnv, false
						continue
					}
					result, pendingResult = v, true
					continue
				}
			}

			args, err := listToSlice(tail)
			if err != nil {
				return Value{}, e.fail(typeError("combination must be a proper list"))
			}
			stack = &frame{parent: stack, env: env, pending: args}
			expr, pendingResult = head, false
			continue
		}

		// Deliver `result` to the current frame, or finish.
		if stack == nil {
			return result, nil
		}
		f := stack

		switch f.special {
		case sfIf:
			stack = f.parent
			if isTruthy(result) {
				expr = f.ifThen
			} else {
				expr = f.ifElse
			}
			env = f.env
			pendingResult = false

		case sfDefineBind:
			f.env.DefineOrSet(f.sym, result)
			stack = f.parent
			result = symbolValue(f.sym)
			pendingResult = true

		case sfBody:
			if len(f.body) == 0 {
				stack = f.parent
				pendingResult = true
				continue
			}
			next := f.body[0]
			f.body = f.body[1:]
			if len(f.body) == 0 {
				stack = f.parent // tail position: reuse the caller's frame
			}
			expr = next
			env = f.env
			pendingResult = false

		case sfMacroBody:
			if len(f.body) == 0 {
				stack = f.parent
				expr = result
				env = f.macroCallerEnv
				pendingResult = false
				continue
			}
			next := f.body[0]
			f.body = f.body[1:]
			expr = next
			env = f.env
			pendingResult = false

		case sfApply:
			f.argsAcc = append(f.argsAcc, result)
			if len(f.pending) > 0 {
				expr = f.pending[0]
				f.pending = f.pending[1:]
				env = f.env
				pendingResult = false
				continue
			}
			n := len(f.argsAcc)
			fn := f.argsAcc[0]
			listVal := f.argsAcc[n-1]
			extra := f.argsAcc[1 : n-1]
			spread, err := listToSlice(listVal)
			if err != nil {
				return Value{}, e.fail(typeError("APPLY: last argument must be a proper list"))
			}
			finalArgs := make([]Value, 0, len(extra)+len(spread))
			finalArgs = append(finalArgs, extra...)
			finalArgs = append(finalArgs, spread...)
			stack = f.parent
			nf, nextExpr, nextEnv, v, done, err := e.dispatchCall(stack, fn, finalArgs)
			if err != nil {
				return Value{}, e.fail(err)
			}
			if done {
				result, pendingResult = v, true
			} else {
				stack, expr, env, pendingResult = nf, nextExpr, nextEnv, false
			}

		default: // sfNone: a plain function/builtin call frame
			if !f.opKnown {
				f.op = result
				f.opKnown = true
				if f.op.Kind() == KindMacro {
					nf, nextExpr, nextEnv, err := e.enterMacro(f)
					if err != nil {
						return Value{}, e.fail(err)
					}
					stack, expr, env, pendingResult = nf, nextExpr, nextEnv, false
					continue
				}
			} else {
				f.argsAcc = append(f.argsAcc, result)
			}
			if len(f.pending) > 0 {
				expr = f.pending[0]
				f.pending = f.pending[1:]
				env = f.env
				pendingResult = false
				continue
			}
			nf, nextExpr, nextEnv, v, done, err := e.dispatchCall(f.parent, f.op, f.argsAcc)
			if err != nil {
				return Value{}, e.fail(err)
			}
			stack = nf
			if done {
				result, pendingResult = v, true
			} else {
				expr, env, pendingResult = nextExpr, nextEnv, false
			}
		}
	}
}

// fail records err for ErrorDetail() before returning it, matching the
// interpreter-wide error_detail() retrieval in spec §6.
func (e *Engine) fail(err error) error {
	if be, ok := err.(*Error); ok {
		e.lastErr = be
	}
	return err
}

// dispatchCall applies fn to args. For a Builtin it runs immediately and
// reports done=true with the result. For a Closure it builds the child
// environment, binds parameters, and either finishes immediately (empty
// body, unreachable given LAMBDA/DEFINE's arity but handled defensively)
// or resumes the trampoline at the first body expression, returning the
// frame to continue on (nil parent frame included, i.e. possibly no
// frame at all when the body is a single tail expression).
func (e *Engine) dispatchCall(parent *frame, fn Value, args []Value) (nf *frame, nextExpr Value, nextEnv *Env, result Value, done bool, err error) {
	switch fn.Kind() {
	case KindBuiltin:
		bi := fn.bi
		v, err := bi.Fn(e, args)
		if err != nil {
			return nil, Value{}, nil, Value{}, false, err
		}
		return parent, Value{}, nil, v, true, nil

	case KindClosure:
		childEnv := e.NewEnv(closureEnv(fn))
		if err := bindParams(e.heap, childEnv, closureParams(fn), args); err != nil {
			return nil, Value{}, nil, Value{}, false, err
		}
		body, err := listToSlice(closureBody(fn))
		if err != nil {
			return nil, Value{}, nil, Value{}, false, typeError("closure body must be a proper list")
		}
		if len(body) == 0 {
			return parent, Value{}, nil, Nil, true, nil
		}
		if len(body) == 1 {
			return parent, body[0], childEnv, Value{}, false, nil
		}
		bf := &frame{parent: parent, special: sfBody, env: childEnv, body: body[1:]}
		return bf, body[0], childEnv, Value{}, false, nil

	default:
		return nil, Value{}, nil, Value{}, false, typeError("not callable: " + fn.Kind().String())
	}
}

// enterMacro binds a macro call's unevaluated argument expressions
// (f.pending) to the macro's parameters and resumes the trampoline
// inside the macro's body, tagged sfMacroBody so the body's final value
// gets fed back through Eval in the caller's environment instead of
// being returned directly — the one-shot rewrite semantics of spec §4.5.
// Unlike a closure's body, a macro body is never tail-popped early: it
// always has a post-step (the re-evaluation), so its frame stays on the
// stack for every body expression.
func (e *Engine) enterMacro(f *frame) (*frame, Value, *Env, error) {
	childEnv := e.NewEnv(closureEnv(f.op))
	if err := bindParams(e.heap, childEnv, closureParams(f.op), f.pending); err != nil {
		return nil, Value{}, nil, err
	}
	body, err := listToSlice(closureBody(f.op))
	if err != nil {
		return nil, Value{}, nil, typeError("macro body must be a proper list")
	}
	if len(body) == 0 {
		return nil, Value{}, nil, typeError("macro body must not be empty")
	}
	f.special = sfMacroBody
	f.macroCallerEnv = f.env
	f.env = childEnv
	f.pending = nil
	f.body = body[1:]
	return f, body[0], childEnv, nil
}

// bindParams implements spec §4.5's parameter binding rules: a bare
// symbol captures the whole argument list; a proper list requires an
// exact match; an improper (dotted) list binds its named prefix
// positionally and its final symbol to the remaining arguments.
func bindParams(heap *Heap, env *Env, params Value, args []Value) error {
	i := 0
	cur := params
	for {
		if sym, ok := cur.AsSymbol(); ok {
			env.DefineOrSet(sym, sliceToList(heap, args[i:]))
			return nil
		}
		if cur.IsNil() {
			if i != len(args) {
				return arityError("wrong number of arguments")
			}
			return nil
		}
		if !cur.IsPair() {
			return typeError("malformed parameter list")
		}
		headSym, ok := cur.Head().AsSymbol()
		if !ok {
			return typeError("parameter must be a symbol")
		}
		if i >= len(args) {
			return arityError("too few arguments")
		}
		env.DefineOrSet(headSym, args[i])
		i++
		cur = cur.Tail()
	}
}

// specialForm dispatches the six special forms of spec §4.5 by name.
// handled is false when name isn't a special form at all (an ordinary
// combination). When handled, either err is set, or pushed is non-nil
// and (v, nextExpr, nextEnv) describe how to resume the trampoline, or
// pushed is nil and v is the form's immediate result.
func (e *Engine) specialForm(name string, argsList Value, env *Env, stack *frame) (handled bool, v Value, nextExpr Value, nextEnv *Env, pushed *frame, err error) {
	switch name {
	case "QUOTE":
		args, lerr := listToSlice(argsList)
		if lerr != nil || len(args) != 1 {
			return true, Value{}, Value{}, nil, nil, arityError("QUOTE")
		}
		return true, args[0], Value{}, nil, nil, nil

	case "IF":
		args, lerr := listToSlice(argsList)
		if lerr != nil || len(args) != 3 {
			return true, Value{}, Value{}, nil, nil, arityError("IF")
		}
		f := &frame{parent: stack, env: env, special: sfIf, ifThen: args[1], ifElse: args[2]}
		return true, Value{}, args[0], env, f, nil

	case "DEFINE":
		args, lerr := listToSlice(argsList)
		if lerr != nil || len(args) < 2 {
			return true, Value{}, Value{}, nil, nil, arityError("DEFINE")
		}
		if sym, ok := args[0].AsSymbol(); ok {
			if len(args) != 2 {
				return true, Value{}, Value{}, nil, nil, arityError("DEFINE")
			}
			f := &frame{parent: stack, env: env, special: sfDefineBind, sym: sym}
			return true, Value{}, args[1], env, f, nil
		}
		if !args[0].IsPair() {
			return true, Value{}, Value{}, nil, nil, typeError("DEFINE target must be a symbol or (name . params)")
		}
		nameSym, ok := args[0].Head().AsSymbol()
		if !ok {
			return true, Value{}, Value{}, nil, nil, typeError("DEFINE lambda-shorthand name must be a symbol")
		}
		params := args[0].Tail()
		body := sliceToList(e.heap, args[1:])
		closure := newClosure(e.heap, KindClosure, env, params, body)
		env.DefineOrSet(nameSym, closure)
		return true, symbolValue(nameSym), Value{}, nil, nil, nil

	case "LAMBDA":
		args, lerr := listToSlice(argsList)
		if lerr != nil || len(args) < 2 {
			return true, Value{}, Value{}, nil, nil, arityError("LAMBDA")
		}
		body := sliceToList(e.heap, args[1:])
		closure := newClosure(e.heap, KindClosure, env, args[0], body)
		return true, closure, Value{}, nil, nil, nil

	case "DEFMACRO":
		args, lerr := listToSlice(argsList)
		if lerr != nil || len(args) < 2 {
			return true, Value{}, Value{}, nil, nil, arityError("DEFMACRO")
		}
		if !args[0].IsPair() {
			return true, Value{}, Value{}, nil, nil, typeError("DEFMACRO target must be (name . params)")
		}
		nameSym, ok := args[0].Head().AsSymbol()
		if !ok {
			return true, Value{}, Value{}, nil, nil, typeError("DEFMACRO name must be a symbol")
		}
		params := args[0].Tail()
		body := sliceToList(e.heap, args[1:])
		macro := newClosure(e.heap, KindMacro, env, params, body)
		env.DefineOrSet(nameSym, macro)
		return true, symbolValue(nameSym), Value{}, nil, nil, nil

	case "APPLY":
		args, lerr := listToSlice(argsList)
		if lerr != nil || len(args) < 2 {
			return true, Value{}, Value{}, nil, nil, arityError("APPLY")
		}
		f := &frame{parent: stack, env: env, special: sfApply, pending: args[1:]}
		return true, Value{}, args[0], env, f, nil
	}
	return false, Value{}, Value{}, nil, nil, nil
}

// listToSlice walks a proper list into a Go slice, in order. It returns
// an error if the chain doesn't terminate in Nil.
func listToSlice(v Value) ([]Value, error) {
	var out []Value
	for {
		if v.IsNil() {
			return out, nil
		}
		if !v.IsPair() {
			return nil, typeError("improper list")
		}
		out = append(out, v.Head())
		v = v.Tail()
	}
}

// sliceToList builds a proper list out of items, allocating the
// necessary pairs through heap, in source order.
func sliceToList(heap *Heap, items []Value) Value {
	result := Nil
	for i := len(items) - 1; i >= 0; i-- {
		p := heap.allocPair(items[i], result)
		result = Value{kind: KindPair, pr: p}
	}
	return result
}
