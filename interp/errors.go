package interp

import "fmt"

// Recovery codes: a positive code is a recoverable Lisp-level error, a
// negative code is fatal and must propagate out of the library rather than
// calling os.Exit.
const (
	CodeOK        = 0
	CodeRecoverable = 1
	CodeFatal     = -1
)

// LispError is the payload carried by panic() across an eval/read frame.
// Code is positive for a recoverable error, negative for a fatal one.
type LispError struct {
	Code int
	Msg  string
}

func (e *LispError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("lisp error (code %d)", e.Code)
	}
	return e.Msg
}

// throwLisp panics with a LispError, unwinding to the nearest recoverFrame.
func throwLisp(code int, format string, args ...interface{}) {
	panic(&LispError{Code: code, Msg: fmt.Sprintf(format, args...)})
}

// recoverDepth tracks nested recover frames per interpreter: a nested
// recoverable error must unwind only to its own frame, not past it.
type recoverDepth struct {
	depth int
}

// recoverFrame runs fn, recovering any *LispError panic of non-fatal
// (positive) code into the supplied onError callback's return value. Fatal
// (negative) codes and non-LispError panics are re-raised so they propagate
// to the next outer frame.
func (interp *Interpreter) recoverFrame(onError func(*LispError) *Cell, fn func() *Cell) (result *Cell) {
	interp.recover.depth++
	defer func() {
		interp.recover.depth--
		r := recover()
		if r == nil {
			return
		}
		le, ok := r.(*LispError)
		if !ok {
			panic(r)
		}
		if le.Code < 0 {
			panic(le)
		}
		interp.logf(LogError, "%s", le.Error())
		result = onError(le)
	}()
	return fn()
}
