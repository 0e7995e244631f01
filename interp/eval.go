package interp

// Environments are alists: a list of (symbol . value) cons pairs, newest
// binding first, terminated by Nil. A lexical scope is introduced by
// consing fresh pairs onto the *captured* env pointer rather than mutating
// it, so a closure's captured environment is unaffected by bindings
// introduced at later call sites.

// assoc returns the (symbol . value) pair bound to sym in env, or Nil if
// unbound.
func assoc(nilCell, sym, env *Cell) *Cell {
	for isCons(env) {
		pair := env.car
		if isCons(pair) && pair.car == sym {
			return pair
		}
		env = env.cdr
	}
	return nilCell
}

// extend conses a fresh (sym . val) pair onto env, without mutating env.
func extend(sym, val, env *Cell) *Cell {
	return cons(cons(sym, val), env)
}

// extendTop adds a binding directly into the interpreter's global
// environment, the effect of top-level "define".
func (interp *Interpreter) extendTop(sym, val *Cell) {
	interp.globalEnv = extend(sym, val, interp.globalEnv)
}

const maxEvalDepth = 4096

// evalState carries the per-Eval-call depth counter. Each top-level
// Eval/EvalString call starts this fresh at zero rather than inheriting
// whatever ambient Go call depth happens to exist.
type evalState struct {
	depth int
}

// Eval evaluates expr in the interpreter's global environment, recovering
// any recoverable LispError into the Error singleton and re-raising fatal
// ones. This is the library's single entry point for evaluation; the
// tail-call loop inside never recurses through Eval itself.
func (interp *Interpreter) Eval(expr *Cell) *Cell {
	return interp.recoverFrame(
		func(le *LispError) *Cell { return interp.Error },
		func() *Cell {
			st := &evalState{}
			mark := interp.gc.pushRoot(expr)
			defer interp.gc.popRoot(mark)
			return interp.eval(expr, interp.globalEnv, st)
		},
	)
}

// EvalString reads and evaluates every expression in src in turn, returning
// the value of the last one (or Nil for an empty/whitespace-only source).
func (interp *Interpreter) EvalString(src string) *Cell {
	p := NewStringInPort(src)
	result := interp.Nil
	for {
		expr, err := interp.Read(p)
		if err != nil {
			return interp.Error
		}
		if expr == nil {
			return result
		}
		result = interp.Eval(expr)
	}
}

// eval is the tail-call-optimized core: special forms that evaluate "in
// tail position" (if/cond/progn/while/proc application) reassign exp/env
// and loop, rather than recursing through Go's call stack.
func (interp *Interpreter) eval(exp, env *Cell, st *evalState) *Cell {
	st.depth++
	defer func() { st.depth-- }()
	limit := maxEvalDepth
	if interp.opts.MaxDepth > 0 {
		limit = interp.opts.MaxDepth
	}
	if st.depth > limit {
		throwLisp(CodeRecoverable, "eval: recursion depth exceeded")
	}

tail:
	if interp.sig.Load() {
		interp.sig.Store(false)
		throwLisp(CodeRecoverable, "evaluation interrupted")
	}

	switch {
	case exp == interp.Nil || exp == nil:
		return interp.Nil
	case exp == interp.Tee:
		return interp.Tee
	case isInt(exp), isFloat(exp), isStr(exp), isHash(exp), isIO(exp), isProc(exp), isFProc(exp), isSubr(exp), isUser(exp):
		return exp
	case isSym(exp):
		pair := assoc(interp.Nil, exp, env)
		if pair == interp.Nil {
			throwLisp(CodeRecoverable, "unbound symbol: %s", symVal(exp))
		}
		return pair.cdr
	case isCons(exp):
		head := exp.car
		switch head {
		case interp.Quote:
			return car(exp.cdr)
		case interp.If:
			test := interp.eval(car(exp.cdr), env, st)
			if test != interp.Nil {
				exp = car(exp.cdr.cdr)
			} else {
				rest := exp.cdr.cdr.cdr
				if rest == interp.Nil {
					return interp.Nil
				}
				exp = car(rest)
			}
			goto tail
		case interp.Lambda:
			return mkProcCell(car(exp.cdr), exp.cdr.cdr, env, mkString(""))
		case interp.FLambda:
			return mkFProcCell(car(exp.cdr), exp.cdr.cdr, env, mkString(""))
		case interp.Define:
			name := car(exp.cdr)
			val := interp.eval(car(exp.cdr.cdr), env, st)
			interp.extendTop(name, val)
			return name
		case interp.Set:
			name := car(exp.cdr)
			val := interp.eval(car(exp.cdr.cdr), env, st)
			pair := assoc(interp.Nil, name, env)
			if pair == interp.Nil {
				throwLisp(CodeRecoverable, "set!: unbound symbol: %s", symVal(name))
			}
			pair.cdr = val
			return val
		case interp.Progn:
			body := exp.cdr
			if body == interp.Nil {
				return interp.Nil
			}
			for body.cdr != interp.Nil {
				interp.eval(body.car, env, st)
				body = body.cdr
			}
			exp = body.car
			goto tail
		case interp.Cond:
			clauses := exp.cdr
			for isCons(clauses) {
				clause := clauses.car
				test := interp.eval(car(clause), env, st)
				if test != interp.Nil {
					exp = cons(interp.Progn, clause.cdr)
					goto tail
				}
				clauses = clauses.cdr
			}
			return interp.Nil
		case interp.Let:
			bindings := car(exp.cdr)
			body := exp.cdr.cdr
			newEnv := env
			for isCons(bindings) {
				b := bindings.car
				sym := car(b)
				val := interp.eval(car(b.cdr), env, st)
				newEnv = extend(sym, val, newEnv)
				bindings = bindings.cdr
			}
			env = newEnv
			exp = cons(interp.Progn, body)
			goto tail
		case interp.While:
			test := car(exp.cdr)
			body := exp.cdr.cdr
			for interp.eval(test, env, st) != interp.Nil {
				interp.eval(cons(interp.Progn, body), env, st)
			}
			return interp.Nil
		case interp.Env:
			return env
		case interp.Error:
			args := interp.evlis(exp.cdr, env, st)
			p := NewStringOutPort()
			interp.Print(args, p)
			throwLisp(CodeRecoverable, "(error %s)", p.String())
		}

		proc := interp.eval(head, env, st)
		if isFProc(proc) {
			args := exp.cdr
			newEnv, body, ok := interp.bindArgs(proc, args, procEnv(proc))
			if !ok {
				throwLisp(CodeRecoverable, "wrong number of arguments to f-expression")
			}
			env = newEnv
			exp = cons(interp.Progn, body)
			goto tail
		}

		args := interp.evlis(exp.cdr, env, st)

		switch {
		case isSubr(proc):
			return proc.subr.fn(interp, args)
		case isProc(proc):
			newEnv, body, ok := interp.bindArgs(proc, args, procEnv(proc))
			if !ok {
				throwLisp(CodeRecoverable, "wrong number of arguments to procedure")
			}
			env = newEnv
			exp = cons(interp.Progn, body)
			goto tail
		case isInPort(proc) && args == interp.Nil:
			line, ok := proc.port.Getdelim('\n')
			if !ok {
				return interp.Error
			}
			return mkString(line)
		default:
			throwLisp(CodeRecoverable, "not callable: %s", proc.tag.String())
		}
	}
	return interp.Nil
}

// evlis evaluates each element of a proper argument list in order.
func (interp *Interpreter) evlis(list, env *Cell, st *evalState) *Cell {
	if !isCons(list) {
		return interp.Nil
	}
	head := interp.eval(list.car, env, st)
	return cons(head, interp.evlis(list.cdr, env, st))
}

// bindArgs extends callEnv (the captured environment of the procedure or
// f-expression) with proc's formal parameters
// bound to args. An improper (dotted) parameter list binds its fixed
// prefix positionally and the trailing symbol to the remaining arguments;
// a proper (fixed-length) list still demands an exact-length match.
func (interp *Interpreter) bindArgs(proc, args, callEnv *Cell) (env, body *Cell, ok bool) {
	params := procArgs(proc)
	env = callEnv
	for isCons(params) {
		if !isCons(args) {
			return nil, nil, false
		}
		env = extend(params.car, args.car, env)
		params = params.cdr
		args = args.cdr
	}
	if params != interp.Nil {
		// improper list tail: bind remaining args (possibly Nil) to it.
		env = extend(params, args, env)
	} else if args != interp.Nil {
		return nil, nil, false
	}
	return env, procCode(proc), true
}

/*************************** argument validation ***************************/

// validate checks args (a proper list) against format, a string of the
// single-letter type codes `s d c L p r S P h F f u b i o Z a x I l C A`,
// panicking with a recoverable LispError on mismatch. An unrecognized code
// is a programming error in the primitive's own declaration, not a
// user-facing one, so it panics unconditionally.
func (interp *Interpreter) validate(fname, format string, args *Cell) {
	expect := len(stripSpaces(format))
	if listLen(args) != expect {
		throwLisp(CodeRecoverable, "%s: expected %d arguments, got %d", fname, expect, listLen(args))
	}
	rest := args
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == ' ' {
			continue
		}
		if !isCons(rest) {
			throwLisp(CodeRecoverable, "%s: too few arguments", fname)
		}
		arg := rest.car
		if !validateOne(interp, c, arg) {
			throwLisp(CodeRecoverable, "%s: argument %d: wrong type for format '%c'", fname, i, c)
		}
		rest = rest.cdr
	}
}

func stripSpaces(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

func validateOne(interp *Interpreter, code byte, arg *Cell) bool {
	switch code {
	case 's':
		return isSym(arg)
	case 'd':
		return isInt(arg)
	case 'c':
		return isCons(arg)
	case 'L':
		return isCons(arg) || arg == interp.Nil
	case 'p':
		return isProc(arg)
	case 'r':
		return isSubr(arg)
	case 'S':
		return isStr(arg)
	case 'P':
		return isIO(arg)
	case 'h':
		return isHash(arg)
	case 'F':
		return isFProc(arg)
	case 'f':
		return isFloat(arg)
	case 'u':
		return isUser(arg)
	case 'b':
		return arg == interp.Nil || arg == interp.Tee
	case 'i':
		return isInPort(arg)
	case 'o':
		return isOutPort(arg)
	case 'Z':
		return isAsciiz(arg)
	case 'a':
		return isArith(arg)
	case 'x':
		return isCallable(arg)
	case 'I':
		return isInPort(arg) || isStr(arg)
	case 'l':
		return isProc(arg) || isFProc(arg)
	case 'C':
		return isAsciiz(arg) || isInt(arg)
	case 'A':
		return true
	default:
		throwLisp(CodeFatal, "invalid validation format code: %q", code)
		return false
	}
}
