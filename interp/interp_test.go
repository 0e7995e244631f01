package interp

import "testing"

func TestNewDefaultsApplyReaderOptions(t *testing.T) {
	interp := New(Options{})
	if !interp.opts.Reader.Ints || !interp.opts.Reader.Strings {
		t.Error("expected DefaultReaderOptions to be applied when Options.Reader is zero-value")
	}
}

func TestInternIsIdempotent(t *testing.T) {
	interp := New(Options{})
	a := interp.Intern("foo")
	b := interp.Intern("foo")
	if a != b {
		t.Error("Intern must return the same *Cell for the same name")
	}
}

func TestAddCellBinding(t *testing.T) {
	interp := New(Options{})
	interp.AddCell("answer", mkInt(42))
	r := interp.EvalString("answer")
	if intVal(r) != 42 {
		t.Errorf("expected 42, got %#v", r)
	}
}

func TestSetOutputRejectsInputPort(t *testing.T) {
	interp := New(Options{})
	if err := interp.SetOutput(NewStringInPort("")); err == nil {
		t.Error("expected SetOutput to reject an input-role port")
	}
}

func TestSetInputRejectsOutputPort(t *testing.T) {
	interp := New(Options{})
	if err := interp.SetInput(NewStringOutPort()); err == nil {
		t.Error("expected SetInput to reject an output-role port")
	}
}

func TestSetSignalInterruptsEval(t *testing.T) {
	interp := New(Options{})
	interp.SetSignal(1)
	r := interp.EvalString("42")
	if r != interp.Error {
		t.Errorf("expected a pending signal to abort evaluation with Error, got %#v", r)
	}
}

func TestNewUserDefinedTypeAllocatesDistinctTags(t *testing.T) {
	interp := New(Options{})
	a := interp.NewUserDefinedType(UserTypeOps{})
	b := interp.NewUserDefinedType(UserTypeOps{})
	if a == b {
		t.Error("expected distinct type tags from successive registrations")
	}
	uc := mkUserCell("payload", a)
	if !isUser(uc) || uc.user.typeTag != a {
		t.Error("user cell did not round-trip its type tag")
	}
}

func TestEvalStringMultipleForms(t *testing.T) {
	interp := New(Options{})
	r := interp.EvalString("1 2 3")
	if intVal(r) != 3 {
		t.Errorf("expected value of last top-level form (3), got %#v", r)
	}
}

func TestDestroyAfterSwappingInNullOutput(t *testing.T) {
	interp := New(Options{})
	interp.SetOutput(NewNullOutPort())
	interp.Destroy()
}
