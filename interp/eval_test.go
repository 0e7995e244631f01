package interp

import "testing"

func evalSrc(t *testing.T, interp *Interpreter, src string) *Cell {
	t.Helper()
	return interp.EvalString(src)
}

func TestEvalSelfEvaluating(t *testing.T) {
	interp := New(Options{})
	r := evalSrc(t, interp, "42")
	if !isInt(r) || intVal(r) != 42 {
		t.Errorf("expected 42, got %#v", r)
	}
}

func TestEvalQuote(t *testing.T) {
	interp := New(Options{})
	r := evalSrc(t, interp, "(quote (1 2 3))")
	if listLen(r) != 3 {
		t.Errorf("expected unevaluated list of length 3, got %#v", r)
	}
}

func TestEvalIf(t *testing.T) {
	interp := New(Options{})
	r := evalSrc(t, interp, "(if t 1 2)")
	if intVal(r) != 1 {
		t.Errorf("expected 1, got %#v", r)
	}
	r = evalSrc(t, interp, "(if nil 1 2)")
	if intVal(r) != 2 {
		t.Errorf("expected 2, got %#v", r)
	}
}

func TestEvalDefineAndLookup(t *testing.T) {
	interp := New(Options{})
	evalSrc(t, interp, "(define x 10)")
	r := evalSrc(t, interp, "x")
	if intVal(r) != 10 {
		t.Errorf("expected 10, got %#v", r)
	}
}

func TestEvalSetBang(t *testing.T) {
	interp := New(Options{})
	evalSrc(t, interp, "(define x 1)")
	evalSrc(t, interp, "(set! x 2)")
	r := evalSrc(t, interp, "x")
	if intVal(r) != 2 {
		t.Errorf("expected 2, got %#v", r)
	}
}

func TestEvalLambdaApplication(t *testing.T) {
	interp := New(Options{})
	evalSrc(t, interp, "(define add1 (lambda (x) x))")
	r := evalSrc(t, interp, "(add1 5)")
	if intVal(r) != 5 {
		t.Errorf("expected 5, got %#v", r)
	}
}

func TestEvalVariadicLambda(t *testing.T) {
	interp := New(Options{})
	// improper parameter list: fixed prefix "a", trailing symbol "rest"
	evalSrc(t, interp, "(define f (lambda (a . rest) rest))")
	r := evalSrc(t, interp, "(f 1 2 3)")
	if listLen(r) != 2 {
		t.Errorf("expected rest-list of length 2, got %#v", r)
	}
}

func TestEvalProperArityMismatchErrors(t *testing.T) {
	interp := New(Options{})
	evalSrc(t, interp, "(define f (lambda (a b) a))")
	r := evalSrc(t, interp, "(f 1)")
	if r != interp.Error {
		t.Errorf("expected Error singleton on arity mismatch, got %#v", r)
	}
}

func TestEvalProgn(t *testing.T) {
	interp := New(Options{})
	r := evalSrc(t, interp, "(progn 1 2 3)")
	if intVal(r) != 3 {
		t.Errorf("expected last progn value 3, got %#v", r)
	}
}

func TestEvalCond(t *testing.T) {
	interp := New(Options{})
	r := evalSrc(t, interp, "(cond (nil 1) (t 2) (t 3))")
	if intVal(r) != 2 {
		t.Errorf("expected first truthy clause value 2, got %#v", r)
	}
}

func TestEvalLet(t *testing.T) {
	interp := New(Options{})
	r := evalSrc(t, interp, "(let ((a 1) (b 2)) (if a b a))")
	if intVal(r) != 2 {
		t.Errorf("expected 2, got %#v", r)
	}
}

func TestEvalWhile(t *testing.T) {
	interp := New(Options{})
	interp.AddSubr("dec", func(in *Interpreter, args *Cell) *Cell {
		return mkInt(intVal(car(args)) - 1)
	}, "d", "decrements an integer")
	interp.AddSubr("zero?", func(in *Interpreter, args *Cell) *Cell {
		if intVal(car(args)) == 0 {
			return in.Tee
		}
		return in.Nil
	}, "d", "reports whether an integer is zero")

	evalSrc(t, interp, "(define i 3)")
	evalSrc(t, interp, "(while (if (zero? i) nil t) (set! i (dec i)))")
	r := evalSrc(t, interp, "i")
	if intVal(r) != 0 {
		t.Errorf("expected while loop to count i down to 0, got %#v", r)
	}
}

func TestEvalErrorFormRecovers(t *testing.T) {
	interp := New(Options{})
	r := evalSrc(t, interp, "(error 1)")
	if r != interp.Error {
		t.Errorf("expected (error 1) to recover to the Error singleton, got %#v", r)
	}
	// the interpreter must remain usable after recovering from an error
	r = evalSrc(t, interp, "42")
	if intVal(r) != 42 {
		t.Errorf("expected interpreter to keep working after a recovered error, got %#v", r)
	}
}

func TestEvalUnboundSymbolRecovers(t *testing.T) {
	interp := New(Options{})
	r := evalSrc(t, interp, "undefined-name")
	if r != interp.Error {
		t.Errorf("expected Error singleton for unbound symbol, got %#v", r)
	}
}

func TestEvalFLambdaReceivesUnevaluatedArgs(t *testing.T) {
	interp := New(Options{})
	evalSrc(t, interp, "(define f (flambda (a) (quote ok)))")
	// the argument "undefined-name" would error if evaluated; an f-expr
	// must not evaluate it.
	r := evalSrc(t, interp, "(f undefined-name)")
	if symVal(r) != "ok" {
		t.Errorf("expected symbol ok, got %#v", r)
	}
}

func TestAddSubrCallable(t *testing.T) {
	interp := New(Options{})
	interp.AddSubr("add", func(in *Interpreter, args *Cell) *Cell {
		in.ValidateArgs("add", "dd", args)
		return mkInt(intVal(car(args)) + intVal(car(cdr(args))))
	}, "dd", "adds two integers")
	r := evalSrc(t, interp, "(add 2 3)")
	if intVal(r) != 5 {
		t.Errorf("expected 5, got %#v", r)
	}
}

func TestAddSubrValidationRejectsWrongType(t *testing.T) {
	interp := New(Options{})
	interp.AddSubr("add", func(in *Interpreter, args *Cell) *Cell {
		in.ValidateArgs("add", "dd", args)
		return mkInt(intVal(car(args)) + intVal(car(cdr(args))))
	}, "dd", "adds two integers")
	r := evalSrc(t, interp, `(add 2 "nope")`)
	if r != interp.Error {
		t.Errorf("expected Error singleton for validation failure, got %#v", r)
	}
}
