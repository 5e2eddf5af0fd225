//go:build !windows

package config

import (
	"os"
	"os/exec"

	"github.com/fd0/wmconf/internal/childsig"
	"github.com/pkg/errors"
)

// Shell is used to run the commands of command sources.
var Shell = "/bin/sh"

// CommandSource runs a shell command and reads its standard output.
type CommandSource struct {
	reader
	command string

	cmd   *exec.Cmd
	pipe  *os.File
	guard *childsig.Guard
}

// NewCommandSource returns an unopened source for the shell command.
func NewCommandSource(command string) *CommandSource {
	return &CommandSource{command: command}
}

// Open starts the command with its standard output connected to a pipe.
func (s *CommandSource) Open() error {
	if s.cmd != nil {
		return errors.Wrap(ErrSourceOpen, s.command)
	}

	rd, wr, err := os.Pipe()
	if err != nil {
		return errors.Wrap(err, "pipe")
	}

	cmd := exec.Command(Shell, "-c", s.command)
	cmd.Stdout = wr
	cmd.Stderr = os.Stderr

	guard := childsig.Default.Acquire()
	err = cmd.Start()

	// the child holds its own copy of the write end
	_ = wr.Close()

	if err != nil {
		guard.Release()
		_ = rd.Close()
		return errors.Wrapf(err, "start %q", s.command)
	}

	s.cmd = cmd
	s.pipe = rd
	s.guard = guard
	s.reset(rd)
	return nil
}

// Close closes the pipe and waits for the command to terminate.
func (s *CommandSource) Close() error {
	if s.cmd == nil {
		return errors.Wrap(ErrSourceClosed, s.command)
	}

	defer func() {
		s.guard.Release()
		s.cmd, s.pipe, s.guard, s.rd = nil, nil, nil, nil
	}()

	closeErr := s.pipe.Close()

	if err := s.cmd.Wait(); err != nil {
		return errors.Wrapf(err, "wait for %q", s.command)
	}

	return errors.Wrap(closeErr, "close")
}

// Name returns the command.
func (s *CommandSource) Name() string { return s.command }

// Type returns SourceCommand.
func (s *CommandSource) Type() SourceType { return SourceCommand }
