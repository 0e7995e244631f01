package interp

import "testing"

func printToString(t *testing.T, interp *Interpreter, c *Cell) string {
	t.Helper()
	p := NewStringOutPort()
	if err := interp.Print(c, p); err != nil {
		t.Fatalf("Print: %v", err)
	}
	return p.String()
}

func TestPrintAtoms(t *testing.T) {
	interp := New(Options{})
	if got := printToString(t, interp, mkInt(42)); got != "42" {
		t.Errorf("expected \"42\", got %q", got)
	}
	if got := printToString(t, interp, mkString("hi")); got != `"hi"` {
		t.Errorf("expected quoted string, got %q", got)
	}
	if got := printToString(t, interp, interp.Nil); got != "()" {
		t.Errorf("expected \"()\", got %q", got)
	}
}

func TestPrintList(t *testing.T) {
	interp := New(Options{})
	list := cons(mkInt(1), cons(mkInt(2), cons(mkInt(3), interp.Nil)))
	if got := printToString(t, interp, list); got != "(1 2 3)" {
		t.Errorf("expected \"(1 2 3)\", got %q", got)
	}
}

func TestPrintDottedPair(t *testing.T) {
	interp := New(Options{})
	pair := cons(mkInt(1), mkInt(2))
	if got := printToString(t, interp, pair); got != "(1 . 2)" {
		t.Errorf("expected \"(1 . 2)\", got %q", got)
	}
}

func TestPrintCircularGuard(t *testing.T) {
	interp := New(Options{})
	c := cons(mkInt(1), interp.Nil)
	setCdr(c, c) // self-referential
	got := printToString(t, interp, c)
	if got == "" {
		t.Error("expected printer to produce output rather than loop forever")
	}
}

func TestPrintfDirectives(t *testing.T) {
	interp := New(Options{})
	p := NewStringOutPort()
	err := interp.Printf(p, "%d-%s!%%", mkInt(7), mkString("ok"))
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != "7-ok!%" {
		t.Errorf("expected \"7-ok!%%\", got %q", p.String())
	}
}

func TestPrintfColorGating(t *testing.T) {
	interp := New(Options{})
	p := NewStringOutPort()
	p.SetColor(false)
	interp.Printf(p, "%rhi%t")
	if p.String() != "hi" {
		t.Errorf("color directives should be no-ops when color is off, got %q", p.String())
	}

	p2 := NewStringOutPort()
	p2.SetColor(true)
	interp.Printf(p2, "%rhi%t")
	if p2.String() == "hi" {
		t.Error("expected ANSI codes to be emitted when color is on")
	}
}
