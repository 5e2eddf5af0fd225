// Package tree contains the generic attribute tree built by the configuration
// parser.
package tree

import "strings"

// Entry is a node in the attribute tree. An entry without a section is a
// plain key/value pair, an entry with a section represents `name = "value" {
// ... }`. The entries of a node are the ordered children at the next nesting
// level, the root node's entries are the top-level configuration.
type Entry struct {
	name, value string

	section *Entry
	entries []*Entry

	// provenance, only used for diagnostics
	sourceName string
	line       int
}

// New returns a new entry without section or children.
func New(sourceName string, line int, name, value string) *Entry {
	return &Entry{
		name:       name,
		value:      value,
		sourceName: sourceName,
		line:       line,
	}
}

// Name returns the name of the entry.
func (e *Entry) Name() string { return e.name }

// Value returns the value of the entry.
func (e *Entry) Value() string { return e.value }

// SetValue replaces the value of the entry.
func (e *Entry) SetValue(value string) { e.value = value }

// Section returns the nested section, nil for plain key/value entries.
func (e *Entry) Section() *Entry { return e.section }

// Entries returns the children of e in insertion order. The slice must not be
// modified.
func (e *Entry) Entries() []*Entry { return e.entries }

// SourceName returns the name of the source the entry was read from.
func (e *Entry) SourceName() string { return e.sourceName }

// Line returns the line within the source the entry was read from.
func (e *Entry) Line() int { return e.line }

// Is reports whether the entry has the given name, ignoring case.
func (e *Entry) Is(name string) bool {
	return strings.EqualFold(e.name, name)
}

// AddEntry inserts a child into e and returns it.
//
// Without overwrite a new child is always appended. With overwrite an
// existing child with the same name is reused when it has no section or when
// its section has the same value as section. The existing child gets the new
// value, section is merged into it and the existing child is returned. In all
// other cases the new entry is appended, this allows several sections with
// the same name but different values.
func (e *Entry) AddEntry(sourceName string, line int, name, value string, section *Entry, overwrite bool) *Entry {
	if overwrite {
		if existing := e.findMergeCandidate(name, section); existing != nil {
			existing.value = value
			if section != nil {
				existing.SetSection(section, true)
			}
			return existing
		}
	}

	entry := New(sourceName, line, name, value)
	entry.section = section
	e.entries = append(e.entries, entry)
	return entry
}

// findMergeCandidate returns the first child which AddEntry merges into when
// called with overwrite.
func (e *Entry) findMergeCandidate(name string, section *Entry) *Entry {
	for _, entry := range e.entries {
		if !entry.Is(name) {
			continue
		}

		if entry.section == nil {
			return entry
		}

		if section != nil && strings.EqualFold(entry.section.value, section.value) {
			return entry
		}
	}

	return nil
}

// SetSection sets the nested section of e. If e already has a section and
// overwrite is set, the content of section is merged into the existing
// section, otherwise section replaces it.
func (e *Entry) SetSection(section *Entry, overwrite bool) {
	if e.section != nil && overwrite {
		e.section.CopyTreeInto(section, true)
		return
	}

	e.section = section
}

// CopyTreeInto merges from into e. The nested section of from is merged
// first, then all children of from are added with overwrite, so entries with
// the same name are replaced while unrelated entries in e are kept. Sections
// are always cloned, e never shares nodes with from.
func (e *Entry) CopyTreeInto(from *Entry, overwrite bool) {
	if from == nil {
		return
	}

	if from.section != nil {
		if e.section == nil {
			e.section = from.section.Clone()
		} else {
			e.section.CopyTreeInto(from.section, overwrite)
		}
	}

	// iterate over a snapshot, from and e may be the same node
	entries := from.entries
	for _, child := range entries {
		var section *Entry
		if child.section != nil {
			section = child.section.Clone()
		}

		e.AddEntry(child.sourceName, child.line, child.name, child.value, section, true)
	}
}

// FindEntry returns the first child with the given name. Unless
// includeSections is set, children with a section are skipped. A non-empty
// sectionValue additionally requires a section with that value.
func (e *Entry) FindEntry(name string, includeSections bool, sectionValue string) *Entry {
	for _, entry := range e.entries {
		if !entry.Is(name) {
			continue
		}

		if entry.section != nil && !includeSections {
			continue
		}

		if sectionValue != "" {
			if entry.section == nil || !strings.EqualFold(entry.section.value, sectionValue) {
				continue
			}
		}

		return entry
	}

	return nil
}

// FindSection returns the nested section of the first child with the name and
// (if not empty) the section value.
func (e *Entry) FindSection(name, value string) *Entry {
	for _, entry := range e.entries {
		if entry.section == nil || !entry.Is(name) {
			continue
		}

		if value != "" && !strings.EqualFold(entry.section.value, value) {
			continue
		}

		return entry.section
	}

	return nil
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}

	c := New(e.sourceName, e.line, e.name, e.value)
	c.section = e.section.Clone()
	if len(e.entries) > 0 {
		c.entries = make([]*Entry, 0, len(e.entries))
		for _, child := range e.entries {
			c.entries = append(c.entries, child.Clone())
		}
	}

	return c
}

// Equal reports whether e and other have the same structure, names and
// values. Provenance is ignored, names are compared case-insensitively.
func (e *Entry) Equal(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}

	if !strings.EqualFold(e.name, other.name) || e.value != other.value {
		return false
	}

	if !e.section.Equal(other.section) {
		return false
	}

	if len(e.entries) != len(other.entries) {
		return false
	}

	for i := range e.entries {
		if !e.entries[i].Equal(other.entries[i]) {
			return false
		}
	}

	return true
}

// WalkFunc is called for every child visited by Walk. depth is zero for the
// children of the node Walk was called on.
type WalkFunc func(depth int, entry *Entry) error

// Walk visits all children of e depth-first, descending into sections. An
// error returned by fn stops the walk.
func (e *Entry) Walk(fn WalkFunc) error {
	return e.walk(0, fn)
}

func (e *Entry) walk(depth int, fn WalkFunc) error {
	for _, entry := range e.entries {
		if err := fn(depth, entry); err != nil {
			return err
		}

		if entry.section != nil {
			if err := entry.section.walk(depth+1, fn); err != nil {
				return err
			}
		}
	}

	return nil
}
