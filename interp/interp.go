package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
)

// LogLevel controls how much diagnostic chatter an Interpreter writes to
// its logging port.
type LogLevel int

const (
	LogOff LogLevel = iota
	LogError
	LogNote
	LogDebug
)

// Options configures a new Interpreter: Stdin/Stdout/Stderr/Args/Env with
// zero-value defaulting in New, plus the reader/GC/depth knobs this domain
// needs.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Args   []string
	Env    []string

	Reader          ReaderOptions
	GCThreshold     int // 0 means use the default
	MaxDepth        int // 0 means use the default
	CollectionPoint int // allocations between automatic collections; 0 = default
}

// Interpreter is one self-contained Lisp environment: its own heap
// (tracked by gc), its own global environment, its own interned-symbol
// table, and its own current I/O ports. Nothing here is safe to share
// across goroutines except via SetSignal, which is explicitly designed
// for concurrent use.
type Interpreter struct {
	Nil     *Cell
	Tee     *Cell
	Quote   *Cell
	If      *Cell
	Lambda  *Cell
	FLambda *Cell
	Define  *Cell
	Set     *Cell
	Progn   *Cell
	Cond    *Cell
	Error   *Cell
	Env     *Cell
	Let     *Cell
	Return  *Cell
	While   *Cell

	globalEnv *Cell
	gc        *gcState
	recover   recoverDepth
	sig       atomic.Bool

	symtab map[string]*Cell

	opts     Options
	logLevel LogLevel

	stdin  *Port
	stdout *Port
	stderr *Port
	logp   *Port

	userTypeCount int
}

// New constructs an Interpreter, wiring default Stdin/Stdout/Stderr ports
// from the Options (falling back to the process's own os.Stdin/Stdout/
// Stderr when unset) and interning every special-form and constant
// singleton.
func New(opts Options) *Interpreter {
	if opts.Reader == (ReaderOptions{}) {
		opts.Reader = DefaultReaderOptions()
	}

	interp := &Interpreter{
		gc:     newGCState(),
		symtab: make(map[string]*Cell),
		opts:   opts,
	}
	if opts.GCThreshold > 0 {
		interp.gc.threshold = opts.GCThreshold
	}
	if opts.CollectionPoint > 0 {
		interp.gc.threshold = opts.CollectionPoint
	}

	interp.Nil = mkSymbolUnsafe("nil")
	interp.Nil.uncollectable = true
	interp.Tee = mkSymbolUnsafe("t")
	interp.Tee.uncollectable = true
	interp.symtab["nil"] = interp.Nil
	interp.symtab["t"] = interp.Tee
	interp.newTrackedCell(interp.Nil)
	interp.newTrackedCell(interp.Tee)

	interp.Quote = interp.internSingleton("quote")
	interp.If = interp.internSingleton("if")
	interp.Lambda = interp.internSingleton("lambda")
	interp.FLambda = interp.internSingleton("flambda")
	interp.Define = interp.internSingleton("define")
	interp.Set = interp.internSingleton("set!")
	interp.Progn = interp.internSingleton("progn")
	interp.Cond = interp.internSingleton("cond")
	interp.Error = interp.internSingleton("error")
	interp.Env = interp.internSingleton("environment")
	interp.Let = interp.internSingleton("let")
	interp.Return = interp.internSingleton("return")
	interp.While = interp.internSingleton("while")

	interp.globalEnv = interp.Nil

	if opts.Stdin == nil {
		interp.stdin = NewFileInPort(os.Stdin)
	} else {
		interp.stdin = NewFileInPort(readerToFile(opts.Stdin))
	}
	interp.stdout = wrapWriter(opts.Stdout, os.Stdout)
	interp.stderr = wrapWriter(opts.Stderr, os.Stderr)
	interp.logp = interp.stderr

	return interp
}

// internSingleton interns name and marks the resulting symbol
// uncollectable: these are permanent interpreter-lifetime cells never
// subject to sweep.
func (interp *Interpreter) internSingleton(name string) *Cell {
	c := interp.Intern(name)
	c.uncollectable = true
	return c
}

// readerToFile returns r itself when it is an *os.File. Any other Reader is
// bridged through an os.Pipe: a goroutine copies r into the write end and
// closes it when r is exhausted, and the read end is returned for
// NewFileInPort to wrap. It returns nil if the pipe cannot be created.
func readerToFile(r io.Reader) *os.File {
	if f, ok := r.(*os.File); ok {
		return f
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil
	}
	go func() {
		io.Copy(pw, r)
		pw.Close()
	}()
	return pr
}

func wrapWriter(w io.Writer, fallback *os.File) *Port {
	if w == nil {
		return NewFileOutPort(fallback)
	}
	if f, ok := w.(*os.File); ok {
		return NewFileOutPort(f)
	}
	return NewWriterOutPort(w)
}

// Intern returns the unique Symbol cell for name, creating it on first use.
// Every reference to the same name, from any part of the interpreter,
// shares one *Cell, which is what makes pointer-identity special-form
// dispatch in eval.go valid.
func (interp *Interpreter) Intern(name string) *Cell {
	if c, ok := interp.symtab[name]; ok {
		return c
	}
	c := mkSymbolUnsafe(name)
	interp.symtab[name] = c
	interp.newTrackedCell(c)
	return c
}

// AddSubr interns name as a symbol bound (in the global environment) to a
// new Subr cell wrapping fn, the primary way a host program extends the
// interpreter with native primitives. format is an argument validation
// string stored on the Subr cell; eval does not apply it, so fn calls
// ValidateArgs itself if it wants enforcement before use.
func (interp *Interpreter) AddSubr(name string, fn SubrFunc, format, doc string) *Cell {
	sym := interp.Intern(name)
	c := mkSubrCell(fn, format, mkString(doc))
	interp.newTrackedCell(c)
	interp.extendTop(sym, c)
	return c
}

// AddCell binds name to c directly in the global environment, for
// host-supplied constants and pre-built values rather than primitives.
func (interp *Interpreter) AddCell(name string, c *Cell) *Cell {
	sym := interp.Intern(name)
	interp.extendTop(sym, c)
	return c
}

// ValidateArgs exposes the eval.go argument-format validator to primitives
// registered via AddSubr, so a SubrFunc can call it against its own args.
func (interp *Interpreter) ValidateArgs(fname, format string, args *Cell) {
	interp.validate(fname, format, args)
}

// SetInput and SetOutput change the ports REPL reads from and writes to;
// SetLogging changes where log messages go. Read and EvalString take their
// input from their own argument, not from these ports.
func (interp *Interpreter) SetInput(p *Port) error {
	if p.role != roleIn {
		return fmt.Errorf("interp: SetInput requires an input port")
	}
	interp.stdin = p
	return nil
}

func (interp *Interpreter) SetOutput(p *Port) error {
	if p.role != roleOut {
		return fmt.Errorf("interp: SetOutput requires an output port")
	}
	interp.stdout = p
	return nil
}

func (interp *Interpreter) SetLogging(p *Port) error {
	if p.role != roleOut {
		return fmt.Errorf("interp: SetLogging requires an output port")
	}
	interp.logp = p
	return nil
}

// SetSignal requests that the running evaluation stop at its next tail
// hop, raising a recoverable error there. This is the one field on
// Interpreter that's deliberately safe to set from another goroutine
// (e.g. an os/signal handler).
func (interp *Interpreter) SetSignal(code int) {
	interp.sig.Store(code != 0)
}

func (interp *Interpreter) SetLogLevel(l LogLevel) { interp.logLevel = l }

func (interp *Interpreter) logf(level LogLevel, format string, args ...interface{}) {
	if level > interp.logLevel || interp.logp == nil {
		return
	}
	interp.logp.Puts(fmt.Sprintf(format+"\n", args...))
}

// NewUserDefinedType registers a new user-defined cell type, returning its
// type tag for use with mkUserCell. The UserTypeOps callbacks are not
// stored or called: every user cell gets no finalizer, is a leaf for GC
// marking, and prints as an opaque <user-defined:...> token.
type UserTypeOps struct {
	Free  func(interface{})
	Mark  func(interface{})
	Equal func(a, b interface{}) bool
	Print func(p *Port, v interface{})
}

func (interp *Interpreter) NewUserDefinedType(ops UserTypeOps) int {
	interp.userTypeCount++
	return interp.userTypeCount
}

// Destroy releases the interpreter's owned file-backed ports. An
// Interpreter built over in-memory or null ports needs no cleanup.
func (interp *Interpreter) Destroy() {
	interp.stdin.Close()
	interp.stdout.Close()
	interp.stderr.Close()
	if interp.logp != interp.stderr {
		interp.logp.Close()
	}
}

// REPL runs a read-eval-print loop against the interpreter's current
// input/output ports until ctx is cancelled or input is exhausted,
// printing a prompt only when stdin looks like a terminal. Ctrl-C is
// trapped via os/signal and turned into a cancellation of ctx.
func (interp *Interpreter) REPL(ctx context.Context, prompt string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	isTTY := false
	if f := interp.stdin.file; f != nil {
		if fi, err := f.Stat(); err == nil {
			isTTY = fi.Mode()&os.ModeCharDevice != 0
		}
	}

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		interp.SetSignal(1)
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if isTTY && prompt != "" {
			interp.stdout.Puts(prompt)
		}
		expr, err := interp.Read(interp.stdin)
		if err != nil {
			return err
		}
		if expr == nil {
			return nil
		}
		result := interp.Eval(expr)
		interp.Print(result, interp.stdout)
		interp.stdout.Puts("\n")
	}
}
