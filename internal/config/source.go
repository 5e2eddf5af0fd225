package config

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// SourceType selects the kind of Source a name refers to.
type SourceType int

// Source types.
const (
	// SourceFile reads the file with the given path.
	SourceFile SourceType = iota
	// SourceCommand runs the given shell command and reads its standard output.
	SourceCommand
	// SourceString reads the given text.
	SourceString
)

func (t SourceType) String() string {
	switch t {
	case SourceFile:
		return "file"
	case SourceCommand:
		return "command"
	case SourceString:
		return "string"
	}
	return "unknown"
}

// Errors returned when a Source is used out of order.
var (
	ErrSourceOpen   = errors.New("source is already open")
	ErrSourceClosed = errors.New("source is not open")
)

// Source is a character stream with line tracking. ReadByte and Unread
// keep the line counter in sync, so unreading a newline decrements it.
type Source interface {
	Open() error
	ReadByte() (byte, error)
	Unread(c byte)
	Close() error

	Name() string
	Line() int
	Type() SourceType
}

// NewSource returns an unopened source of the given type.
func NewSource(name string, typ SourceType) (Source, error) {
	switch typ {
	case SourceFile:
		return NewFileSource(name), nil
	case SourceCommand:
		return NewCommandSource(name), nil
	case SourceString:
		return NewStringSource("", name), nil
	}

	return nil, errors.Errorf("unknown source type %d", typ)
}

// reader is the line counting reader shared by all sources.
type reader struct {
	rd      *bufio.Reader
	line    int
	pending []byte
}

func (r *reader) reset(rd io.Reader) {
	r.rd = bufio.NewReader(rd)
	r.line = 1
	r.pending = r.pending[:0]
}

func (r *reader) ReadByte() (byte, error) {
	var c byte

	if n := len(r.pending); n > 0 {
		c = r.pending[n-1]
		r.pending = r.pending[:n-1]
	} else {
		if r.rd == nil {
			return 0, ErrSourceClosed
		}

		var err error
		c, err = r.rd.ReadByte()
		if err != nil {
			return 0, err
		}
	}

	if c == '\n' {
		r.line++
	}

	return c, nil
}

func (r *reader) Unread(c byte) {
	if c == '\n' {
		r.line--
	}
	r.pending = append(r.pending, c)
}

func (r *reader) Line() int { return r.line }
