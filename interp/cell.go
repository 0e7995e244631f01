package interp

// tag identifies the payload a Cell carries. A Cell is the universal heap
// value for the interpreter: every tag shares the same struct, and only the
// fields matching tag are meaningful.
type tag uint8

const (
	tagInteger tag = iota
	tagFloat
	tagSymbol
	tagString
	tagCons
	tagHash
	tagIO
	tagSubr
	tagProc
	tagFProc
	tagUser
)

func (t tag) String() string {
	switch t {
	case tagInteger:
		return "integer"
	case tagFloat:
		return "float"
	case tagSymbol:
		return "symbol"
	case tagString:
		return "string"
	case tagCons:
		return "cons"
	case tagHash:
		return "hash"
	case tagIO:
		return "io"
	case tagSubr:
		return "subr"
	case tagProc:
		return "proc"
	case tagFProc:
		return "fproc"
	case tagUser:
		return "user"
	default:
		return "invalid"
	}
}

// SubrFunc is a host-provided primitive: (interpreter, evaluated-argument-
// list) -> result.
type SubrFunc func(interp *Interpreter, args *Cell) *Cell

type subrData struct {
	fn     SubrFunc
	format string // validation format string, may be empty
	doc    *Cell  // docstring cell, never nil (may be an empty string cell)
}

type procData struct {
	args *Cell // parameter list (possibly improper for variadic tail)
	body *Cell // body forms
	env  *Cell // captured environment
	doc  *Cell // docstring cell, never nil
}

type userData struct {
	value   interface{}
	typeTag int
}

// Cell is the universal heap value: tagged, length-bearing, flag-bearing.
type Cell struct {
	tag           tag
	mark          bool // set transiently during a GC mark phase
	uncollectable bool // singleton / interned name, never freed
	closed        bool // port or user object explicitly closed

	length int // polymorphic: byte length for Symbol/String, arity for Subr/Proc/FProc

	ival int64
	fval float64
	str  string
	car  *Cell
	cdr  *Cell
	port *Port
	hash *HashTable
	subr *subrData
	proc *procData
	user *userData
}

func newCell(t tag) *Cell { return &Cell{tag: t} }

func mkInt(v int64) *Cell {
	c := newCell(tagInteger)
	c.ival = v
	return c
}

func mkFloat(v float64) *Cell {
	c := newCell(tagFloat)
	c.fval = v
	return c
}

// mkString makes an owned-string cell; s is copied by value since Go
// strings are immutable, so there's no separate ownership to track.
func mkString(s string) *Cell {
	c := newCell(tagString)
	c.str = s
	c.length = len(s)
	return c
}

// mkSymbolUnsafe allocates a new Symbol cell. Callers outside intern() must
// not use this directly: two symbols with the same name must be the same
// *Cell, which only the interned symbol table in interp.go guarantees.
func mkSymbolUnsafe(name string) *Cell {
	c := newCell(tagSymbol)
	c.str = name
	c.length = len(name)
	return c
}

func cons(x, y *Cell) *Cell {
	c := newCell(tagCons)
	c.car = x
	c.cdr = y
	return c
}

func mkHashCell(h *HashTable) *Cell {
	c := newCell(tagHash)
	c.hash = h
	return c
}

func mkIOCell(p *Port) *Cell {
	c := newCell(tagIO)
	c.port = p
	return c
}

func mkSubrCell(fn SubrFunc, format string, doc *Cell) *Cell {
	c := newCell(tagSubr)
	c.subr = &subrData{fn: fn, format: format, doc: doc}
	c.length = len(stripSpaces(format))
	return c
}

func mkProcCell(args, body, env, doc *Cell) *Cell {
	c := newCell(tagProc)
	c.proc = &procData{args: args, body: body, env: env, doc: doc}
	c.length = properLength(args)
	return c
}

func mkFProcCell(arg, body, env, doc *Cell) *Cell {
	c := newCell(tagFProc)
	c.proc = &procData{args: arg, body: body, env: env, doc: doc}
	c.length = 1
	return c
}

func mkUserCell(value interface{}, typeTag int) *Cell {
	c := newCell(tagUser)
	c.user = &userData{value: value, typeTag: typeTag}
	return c
}

// properLength counts the symbols in a (possibly improper) parameter list,
// stopping at the first non-cons cdr (the variadic tail symbol, if any).
func properLength(list *Cell) int {
	n := 0
	for list != nil && list.tag == tagCons {
		n++
		list = list.cdr
	}
	return n
}

/*************************** predicates ***************************/

// IsNil reports whether x is the distinguished empty-list singleton.
func (interp *Interpreter) IsNil(x *Cell) bool { return x == interp.Nil }

func isNilCell(nilSingleton, x *Cell) bool { return x == nilSingleton }

func isInt(x *Cell) bool    { return x != nil && x.tag == tagInteger }
func isFloat(x *Cell) bool  { return x != nil && x.tag == tagFloat }
func isCons(x *Cell) bool   { return x != nil && x.tag == tagCons }
func isSym(x *Cell) bool    { return x != nil && x.tag == tagSymbol }
func isStr(x *Cell) bool    { return x != nil && x.tag == tagString }
func isSubr(x *Cell) bool   { return x != nil && x.tag == tagSubr }
func isProc(x *Cell) bool   { return x != nil && x.tag == tagProc }
func isFProc(x *Cell) bool  { return x != nil && x.tag == tagFProc }
func isHash(x *Cell) bool   { return x != nil && x.tag == tagHash }
func isUser(x *Cell) bool   { return x != nil && x.tag == tagUser }
func isAsciiz(x *Cell) bool { return isStr(x) || isSym(x) }
func isArith(x *Cell) bool  { return isInt(x) || isFloat(x) }

// isIO reports whether x is an open (non-closed) I/O cell: a closed port
// exposes no payload.
func isIO(x *Cell) bool { return x != nil && x.tag == tagIO && !x.closed }

func isInPort(x *Cell) bool {
	return isIO(x) && x.port != nil && x.port.role == roleIn
}

func isOutPort(x *Cell) bool {
	return isIO(x) && x.port != nil && x.port.role == roleOut
}

func isCallable(x *Cell) bool { return isSubr(x) || isProc(x) || isFProc(x) }

/*************************** accessors ***************************/

func car(x *Cell) *Cell {
	if x == nil {
		return nil
	}
	return x.car
}

func cdr(x *Cell) *Cell {
	if x == nil {
		return nil
	}
	return x.cdr
}

func setCar(x, y *Cell) {
	if x == nil || y == nil {
		return
	}
	x.car = y
}

func setCdr(x, y *Cell) {
	if x == nil || y == nil {
		return
	}
	x.cdr = y
}

func intVal(x *Cell) int64 {
	if x == nil {
		return 0
	}
	return x.ival
}

func floatVal(x *Cell) float64 {
	if x == nil {
		return 0
	}
	return x.fval
}

func strVal(x *Cell) string {
	if x == nil {
		return ""
	}
	return x.str
}

func symVal(x *Cell) string { return strVal(x) }

func ioVal(x *Cell) *Port {
	if x == nil {
		return nil
	}
	return x.port
}

func hashVal(x *Cell) *HashTable {
	if x == nil {
		return nil
	}
	return x.hash
}

func subrVal(x *Cell) SubrFunc {
	if x == nil || x.subr == nil {
		return nil
	}
	return x.subr.fn
}

func procArgs(x *Cell) *Cell {
	if x == nil || x.proc == nil {
		return nil
	}
	return x.proc.args
}

func procCode(x *Cell) *Cell {
	if x == nil || x.proc == nil {
		return nil
	}
	return x.proc.body
}

func procEnv(x *Cell) *Cell {
	if x == nil || x.proc == nil {
		return nil
	}
	return x.proc.env
}

func procDoc(x *Cell) *Cell {
	if x == nil || x.proc == nil {
		return nil
	}
	return x.proc.doc
}

// cklen reports whether x (a proper list) has exactly expect elements.
func cklen(x *Cell, expect int) bool {
	if x == nil {
		return false
	}
	return listLen(x) == expect
}

func listLen(x *Cell) int {
	n := 0
	for isCons(x) {
		n++
		x = x.cdr
	}
	return n
}
