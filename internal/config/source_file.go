package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// FileSource reads configuration from a file.
type FileSource struct {
	reader
	name string
	f    *os.File
}

// NewFileSource returns an unopened source for the file.
func NewFileSource(name string) *FileSource {
	return &FileSource{name: name}
}

// Open opens the file for reading.
func (s *FileSource) Open() error {
	if s.f != nil {
		return errors.Wrap(ErrSourceOpen, s.name)
	}

	f, err := os.Open(s.name)
	if err != nil {
		return errors.Wrap(err, "open")
	}

	s.f = f
	s.reset(f)
	return nil
}

// Close releases the file.
func (s *FileSource) Close() error {
	if s.f == nil {
		return errors.Wrap(ErrSourceClosed, s.name)
	}

	err := s.f.Close()
	s.f = nil
	s.rd = nil
	return errors.Wrap(err, "close")
}

// Name returns the path of the file.
func (s *FileSource) Name() string { return s.name }

// Type returns SourceFile.
func (s *FileSource) Type() SourceType { return SourceFile }

// StringSource reads configuration from a string.
type StringSource struct {
	reader
	name, text string
	open       bool
}

// NewStringSource returns an unopened source for text. An empty name is
// replaced by "<string>".
func NewStringSource(name, text string) *StringSource {
	if name == "" {
		name = "<string>"
	}
	return &StringSource{name: name, text: text}
}

// Open starts reading at the beginning of the text.
func (s *StringSource) Open() error {
	if s.open {
		return errors.Wrap(ErrSourceOpen, s.name)
	}

	s.open = true
	s.reset(strings.NewReader(s.text))
	return nil
}

// Close stops reading.
func (s *StringSource) Close() error {
	if !s.open {
		return errors.Wrap(ErrSourceClosed, s.name)
	}

	s.open = false
	s.rd = nil
	return nil
}

// Name returns the name of the source.
func (s *StringSource) Name() string { return s.name }

// Type returns SourceString.
func (s *StringSource) Type() SourceType { return SourceString }
