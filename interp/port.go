package interp

import (
	"bufio"
	"errors"
	"io"
	"os"
)

type portRole uint8

const (
	roleIn portRole = iota
	roleOut
)

type portBacking uint8

const (
	backingFile portBacking = iota
	backingBytes
	backingNull
	backingWriter
)

// Port is the I/O abstraction: a single struct covering file, in-memory
// string, and null-sink backings, with a one-byte pushback slot and
// geometric buffer growth for the owned-bytes case. Role (in/out) and
// backing are fixed at construction.
type Port struct {
	role    portRole
	backing portBacking

	file   *os.File
	reader *bufio.Reader // set for backingFile when role == roleIn
	writer io.Writer     // set for backingWriter

	buf []byte // owned bytes: write-accumulated (out) or read-source (in)
	pos int    // read cursor into buf for backingBytes+roleIn

	pushback     byte
	hasPushback  bool

	color  bool // ANSI color directives enabled on this port
	pretty bool // pretty-print (indented) output on this port

	eof bool
}

// NewFileInPort wraps f as a readable port.
func NewFileInPort(f *os.File) *Port {
	return &Port{role: roleIn, backing: backingFile, file: f, reader: bufio.NewReader(f)}
}

// NewFileOutPort wraps f as a writable port.
func NewFileOutPort(f *os.File) *Port {
	return &Port{role: roleOut, backing: backingFile, file: f}
}

// NewStringInPort makes a readable port over an in-memory copy of s.
func NewStringInPort(s string) *Port {
	return &Port{role: roleIn, backing: backingBytes, buf: []byte(s)}
}

// NewStringOutPort makes a growable in-memory output sink; use String() to
// retrieve the accumulated bytes.
func NewStringOutPort() *Port {
	return &Port{role: roleOut, backing: backingBytes, buf: make([]byte, 0, 64)}
}

// NewNullOutPort discards everything written to it.
func NewNullOutPort() *Port {
	return &Port{role: roleOut, backing: backingNull}
}

// NewWriterOutPort wraps an arbitrary io.Writer (e.g. a caller-supplied
// Options.Stdout that isn't an *os.File) as a writable port.
func NewWriterOutPort(w io.Writer) *Port {
	return &Port{role: roleOut, backing: backingWriter, writer: w}
}

// String returns the accumulated bytes of an in-memory output port.
func (p *Port) String() string {
	if p.backing != backingBytes {
		return ""
	}
	return string(p.buf)
}

// EOF reports whether the last read hit end of input.
func (p *Port) EOF() bool { return p.eof }

var errClosedPort = errors.New("interp: operation on closed port")

// GetC reads one byte, honoring a pending pushback slot first.
func (p *Port) GetC() (byte, error) {
	if p.hasPushback {
		p.hasPushback = false
		return p.pushback, nil
	}
	switch p.backing {
	case backingFile:
		b, err := p.reader.ReadByte()
		if err != nil {
			p.eof = true
			return 0, io.EOF
		}
		return b, nil
	case backingBytes:
		if p.pos >= len(p.buf) {
			p.eof = true
			return 0, io.EOF
		}
		b := p.buf[p.pos]
		p.pos++
		return b, nil
	default:
		p.eof = true
		return 0, io.EOF
	}
}

// UngetC pushes back a single byte, to be returned by the next GetC. Only
// one byte of pushback is supported.
func (p *Port) UngetC(b byte) {
	p.pushback = b
	p.hasPushback = true
	p.eof = false
}

// PutC writes one byte, growing the owned buffer geometrically (double
// capacity on overflow) for backingBytes.
func (p *Port) PutC(b byte) error {
	switch p.backing {
	case backingFile:
		_, err := p.file.Write([]byte{b})
		return err
	case backingBytes:
		p.buf = append(p.buf, b)
		return nil
	case backingWriter:
		_, err := p.writer.Write([]byte{b})
		return err
	case backingNull:
		return nil
	}
	return nil
}

// Puts writes a whole string.
func (p *Port) Puts(s string) error {
	switch p.backing {
	case backingFile:
		_, err := p.file.Write([]byte(s))
		return err
	case backingBytes:
		p.buf = append(p.buf, s...)
		return nil
	case backingWriter:
		_, err := p.writer.Write([]byte(s))
		return err
	case backingNull:
		return nil
	}
	return nil
}

// Getdelim reads up to and including delim, returning the bytes read (sans
// trailing delim) and ok=false only when nothing at all could be read
// before EOF, so a caller can distinguish an absent line from an empty one.
func (p *Port) Getdelim(delim byte) (string, bool) {
	var out []byte
	read := false
	for {
		b, err := p.GetC()
		if err != nil {
			break
		}
		read = true
		if b == delim {
			return string(out), true
		}
		out = append(out, b)
	}
	if !read {
		return "", false
	}
	return string(out), true
}

// Seek repositions an in-memory port's cursor, clamped to [0, len(buf)];
// file-backed ports delegate to os.File.Seek. whence follows io.SeekStart
// / io.SeekCurrent / io.SeekEnd.
func (p *Port) Seek(offset int64, whence int) (int64, error) {
	if p.backing == backingFile {
		return p.file.Seek(offset, whence)
	}
	var base int
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = p.pos
	case io.SeekEnd:
		base = len(p.buf)
	}
	newPos := base + int(offset)
	if newPos < 0 {
		newPos = 0
	}
	if newPos > len(p.buf) {
		newPos = len(p.buf)
	}
	p.pos = newPos
	p.eof = false
	return int64(newPos), nil
}

// Close releases the file handle, if any. Repeated closes are harmless.
// The process's standard streams are never closed.
func (p *Port) Close() error {
	if p.file == os.Stdin || p.file == os.Stdout || p.file == os.Stderr {
		return nil
	}
	if p.backing == backingFile && p.file != nil {
		return p.file.Close()
	}
	return nil
}

// SetColor and SetPretty toggle the printer directives honored when this
// port is the target of a print operation.
func (p *Port) SetColor(on bool)  { p.color = on }
func (p *Port) SetPretty(on bool) { p.pretty = on }
