package config

import "fmt"

// Diagnostic describes a recoverable problem found while parsing. The
// offending construct is skipped and parsing continues.
type Diagnostic struct {
	Source  string
	Line    int
	Message string
}

func (d Diagnostic) Error() string {
	if d.Source == "" {
		return d.Message
	}
	return fmt.Sprintf("%s:%d: %s", d.Source, d.Line, d.Message)
}
