package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fd0/wmconf/internal/tree"
	"github.com/pkg/errors"
)

// lookup finds the entry for a path like "Screen/Placement/Smart". A segment
// of the form "Name:value" only matches a section with this value.
func lookup(root *tree.Entry, path string) (*tree.Entry, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if segments[0] == "" {
		return nil, errors.New("empty path")
	}

	section := root
	for i, segment := range segments {
		name, value := splitSegment(segment)
		last := i == len(segments)-1

		if !last {
			next := section.FindSection(name, value)
			if next == nil {
				return nil, errors.Errorf("section %v not found", strings.Join(segments[:i+1], "/"))
			}
			section = next
			continue
		}

		entry := section.FindEntry(name, value != "", value)
		if entry == nil && value == "" {
			entry = section.FindEntry(name, true, "")
		}
		if entry == nil {
			return nil, errors.Errorf("entry %v not found", path)
		}
		return entry, nil
	}

	return nil, errors.Errorf("entry %v not found", path)
}

func splitSegment(segment string) (name, value string) {
	if i := strings.IndexByte(segment, ':'); i >= 0 {
		return segment[:i], segment[i+1:]
	}
	return segment, ""
}

// quote formats a value the way it is written in a config file.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// checkDiagnostics returns an error when the parser found problems. The
// problems themselves have already been logged.
func checkDiagnostics(ignore bool) error {
	n := len(ld.Diagnostics())
	if n == 0 {
		return nil
	}

	if ignore {
		fmt.Fprintf(os.Stderr, "ignoring %d problem(s) in the configuration\n", n)
		return nil
	}

	return errors.Errorf("found %d problem(s) in the configuration", n)
}

// dumpEntry is the serialised form of an entry.
type dumpEntry struct {
	Name    string      `json:"name" yaml:"name" toml:"name"`
	Value   string      `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Section bool        `json:"section,omitempty" yaml:"section,omitempty" toml:"section,omitempty"`
	Entries []dumpEntry `json:"entries,omitempty" yaml:"entries,omitempty" toml:"entries,omitempty"`
}

// dumpEntries converts the children of e.
func dumpEntries(e *tree.Entry) []dumpEntry {
	var res []dumpEntry
	for _, child := range e.Entries() {
		d := dumpEntry{
			Name:  child.Name(),
			Value: child.Value(),
		}

		if s := child.Section(); s != nil {
			d.Section = true
			d.Entries = dumpEntries(s)
		}

		res = append(res, d)
	}
	return res
}
