package config

import "github.com/pkg/errors"

// CommandSource is not supported on this platform, Open always fails.
type CommandSource struct {
	reader
	command string
}

// NewCommandSource returns a source which cannot be opened.
func NewCommandSource(command string) *CommandSource {
	return &CommandSource{command: command}
}

// Open returns an error.
func (s *CommandSource) Open() error {
	return errors.Errorf("command %q: command sources are not supported on windows", s.command)
}

// Close returns ErrSourceClosed.
func (s *CommandSource) Close() error {
	return errors.Wrap(ErrSourceClosed, s.command)
}

// Name returns the command.
func (s *CommandSource) Name() string { return s.command }

// Type returns SourceCommand.
func (s *CommandSource) Type() SourceType { return SourceCommand }
