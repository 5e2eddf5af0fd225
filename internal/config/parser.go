// Package config contains the low-level configuration file parser.
//
// The configuration language consists of key/value pairs and nested sections:
//
//	# comment, also // and /* ... */
//	$VAR = "value"              # variable, referenced as $VAR in values
//	$_VAR = "value"             # also exported to the environment
//	Key = "$VAR and \"quotes\""
//	Section = "name" {
//	    Key = "value"; Other = "x"
//	}
//	INCLUDE = "other.conf"      # relative to the including file
//	COMMAND = "generate-config" # parses the command's standard output
//	DEFINE = "Template" { ... } # named template, not part of the tree
//	@Template                   # expands the template in place
//
// Syntax errors are reported as diagnostics and never abort parsing.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fd0/wmconf/internal/keys"
	"github.com/fd0/wmconf/internal/tree"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Directive names, compared case-insensitively.
const (
	directiveInclude = "INCLUDE"
	directiveCommand = "COMMAND"
	directiveDefine  = "DEFINE"
)

const defaultMaxExpandPasses = 32

// frame is an entry on the section stack.
type frame struct {
	// section to return to
	section *tree.Entry

	// name of the template defined by the section that was entered
	template string
}

// Parser builds an attribute tree from one or more sources.
type Parser struct {
	log       *zap.Logger
	maxPasses int

	root      *tree.Entry
	templates map[string]*tree.Entry
	variables map[string]string

	sources     []Source
	known       map[string]struct{}
	sourceNames []string
	files       []string
	dynamic     bool
	diagnostics []Diagnostic

	// state while parsing
	overwrite bool
	section   *tree.Entry
	sections  []frame

	name       strings.Builder
	nameSource string
	nameLine   int

	value    string
	hasValue bool
	invalid  bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// WithMaxExpandPasses limits the number of passes of variable expansion.
func WithMaxExpandPasses(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxPasses = n
		}
	}
}

// NewParser returns a parser with an empty tree.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		log:       zap.NewNop(),
		maxPasses: defaultMaxExpandPasses,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.Reset()
	return p
}

// Reset discards the tree and all state collected by previous calls to Parse.
func (p *Parser) Reset() {
	p.root = tree.New("", 0, "", "")
	p.ResetSession()
}

// ResetSession discards templates, variables, diagnostics, the list of known
// sources and the dynamic flag, but keeps the tree. A following Parse with
// overwrite merges into the existing tree.
func (p *Parser) ResetSession() {
	p.templates = make(map[string]*tree.Entry)
	p.variables = make(map[string]string)
	p.known = make(map[string]struct{})
	p.sourceNames = nil
	p.files = nil
	p.dynamic = false
	p.diagnostics = nil
}

// Root returns the root of the tree, its entries are the top-level
// configuration.
func (p *Parser) Root() *tree.Entry { return p.root }

// Template returns the template with the name or nil.
func (p *Parser) Template(name string) *tree.Entry { return p.templates[name] }

// Templates returns the sorted names of all defined templates.
func (p *Parser) Templates() []string {
	names := make([]string, 0, len(p.templates))
	for name := range p.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Variable returns the raw value of a variable defined in the configuration.
func (p *Parser) Variable(name string) (string, bool) {
	value, ok := p.variables[name]
	return value, ok
}

// Diagnostics returns all problems found since the last reset.
func (p *Parser) Diagnostics() []Diagnostic { return p.diagnostics }

// IsDynamic reports whether a command source was used, so the result may
// change even if no file was modified.
func (p *Parser) IsDynamic() bool { return p.dynamic }

// SourceNames returns the names of all sources opened since the last reset,
// in the order they were first opened.
func (p *Parser) SourceNames() []string { return p.sourceNames }

// Files returns the subset of SourceNames which are files.
func (p *Parser) Files() []string { return p.files }

// Parse reads the source and adds its content to the tree. With overwrite,
// entries are merged into existing entries with the same name instead of
// being appended. An error is only returned if the source cannot be opened,
// all other problems are available as Diagnostics.
func (p *Parser) Parse(name string, typ SourceType, overwrite bool) error {
	src, err := NewSource(name, typ)
	if err != nil {
		return err
	}

	return p.ParseSource(src, overwrite)
}

// ParseSource is like Parse, but reads from an unopened source.
func (p *Parser) ParseSource(src Source, overwrite bool) error {
	if err := src.Open(); err != nil {
		return errors.Wrapf(err, "parse %v", src.Name())
	}

	p.overwrite = overwrite
	p.section = p.root
	p.sections = p.sections[:0]
	p.clearBuffers()

	p.pushSource(src)
	p.run()

	if len(p.sections) > 0 {
		p.diagf("%d unclosed section(s) at end of input", len(p.sections))
		p.sections = p.sections[:0]
	}
	p.section = p.root

	return nil
}

func (p *Parser) pushSource(src Source) {
	if _, ok := p.known[src.Name()]; !ok {
		p.known[src.Name()] = struct{}{}
		p.sourceNames = append(p.sourceNames, src.Name())

		if src.Type() == SourceFile {
			p.files = append(p.files, src.Name())
		}
	}

	if src.Type() == SourceCommand {
		p.dynamic = true
	}

	p.sources = append(p.sources, src)
}

// closeSource closes and removes the source at index i of the stack.
func (p *Parser) closeSource(i int) {
	src := p.sources[i]
	if err := src.Close(); err != nil {
		p.diagf("%v", err)
	}

	p.sources = append(p.sources[:i], p.sources[i+1:]...)
}

// run processes characters until all sources are exhausted.
func (p *Parser) run() {
	for len(p.sources) > 0 {
		depth := len(p.sources)
		src := p.sources[depth-1]

		c, err := src.ReadByte()
		if err != nil {
			if err != io.EOF {
				p.diagf("read: %v", err)
			}

			// finishing may open another source on top of this one
			p.finishEntry()
			p.closeSource(depth - 1)
			continue
		}

		switch c {
		case '\n':
			next, ok := p.peekNonBlank(src)
			if !ok || next != '{' {
				p.finishEntry()
			}
		case ';':
			p.finishEntry()
		case '{':
			p.openSection()
		case '}':
			p.finishEntry()
			if len(p.sources) > depth {
				// an INCLUDE or COMMAND was opened, its content belongs
				// into the section, so close it afterwards
				src.Unread(c)
				continue
			}
			p.closeSection()
		case '=':
			p.readValue(src)
		case '#':
			p.skipLine(src)
		case '/':
			p.readSlash(src)
		default:
			p.appendName(src, c)
		}
	}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// peekNonBlank skips blanks and returns the next character, which is pushed
// back onto the source.
func (p *Parser) peekNonBlank(src Source) (byte, bool) {
	for {
		c, err := src.ReadByte()
		if err != nil {
			return 0, false
		}

		if !isBlank(c) {
			src.Unread(c)
			return c, true
		}
	}
}

func (p *Parser) appendName(src Source, c byte) {
	if strings.TrimSpace(p.name.String()) == "" && !isBlank(c) {
		p.nameSource = src.Name()
		p.nameLine = src.Line()
		p.name.Reset()
	}

	p.name.WriteByte(c)
}

// skipLine discards the rest of the line, the newline is pushed back.
func (p *Parser) skipLine(src Source) {
	for {
		c, err := src.ReadByte()
		if err != nil {
			return
		}

		if c == '\n' {
			src.Unread(c)
			return
		}
	}
}

// readSlash handles comments starting with `//` and `/*`, any other slash is
// part of the name.
func (p *Parser) readSlash(src Source) {
	c, err := src.ReadByte()
	if err != nil {
		p.appendName(src, '/')
		return
	}

	switch c {
	case '/':
		p.skipLine(src)
	case '*':
		p.skipComment(src)
	default:
		src.Unread(c)
		p.appendName(src, '/')
	}
}

// skipComment discards everything up to and including the next `*/`.
func (p *Parser) skipComment(src Source) {
	line := src.Line()

	var prev byte
	for {
		c, err := src.ReadByte()
		if err != nil {
			p.diagAt(src.Name(), line, "unterminated comment")
			return
		}

		if prev == '*' && c == '/' {
			return
		}

		prev = c
	}
}

// readValue reads a double quoted value. A backslash escapes the next
// character, backslash followed by newline continues the value on the next
// line. An empty value is stored as a single space.
func (p *Parser) readValue(src Source) {
	if p.hasValue {
		p.diagAt(src.Name(), src.Line(), "value for %q overwritten", strings.TrimSpace(p.name.String()))
	}

	if strings.TrimSpace(p.name.String()) == "" {
		p.nameSource = src.Name()
		p.nameLine = src.Line()
	}

	line := src.Line()

	for {
		c, err := src.ReadByte()
		if err != nil {
			p.diagAt(src.Name(), line, "missing opening quote for value")
			p.invalid = true
			return
		}

		if c == '"' {
			break
		}
	}

	var buf strings.Builder
	for {
		c, err := src.ReadByte()
		if err != nil {
			p.diagAt(src.Name(), line, "missing closing quote for value")
			p.invalid = true
			return
		}

		if c == '"' {
			break
		}

		if c == '\\' {
			next, err := src.ReadByte()
			if err != nil {
				p.diagAt(src.Name(), line, "missing closing quote for value")
				p.invalid = true
				return
			}

			switch next {
			case '\n':
			case '$':
				// kept for variable expansion
				buf.WriteString(`\$`)
			default:
				buf.WriteByte(next)
			}
			continue
		}

		buf.WriteByte(c)
	}

	p.value = buf.String()
	if p.value == "" {
		p.value = " "
	}
	p.hasValue = true
}

func (p *Parser) clearBuffers() {
	p.name.Reset()
	p.value = ""
	p.hasValue = false
	p.invalid = false
}

// finishEntry processes the buffered name and value.
func (p *Parser) finishEntry() {
	defer p.clearBuffers()

	name := strings.TrimSpace(p.name.String())
	if p.invalid {
		return
	}

	if !p.hasValue {
		switch {
		case name == "":
		case name[0] == '@':
			p.expandTemplate(strings.TrimSpace(name[1:]))
		default:
			p.diagAt(p.nameSource, p.nameLine, "missing value for %q", name)
		}
		return
	}

	if name == "" {
		p.diagAt(p.nameSource, p.nameLine, "value %q without a name", p.value)
		return
	}

	if name[0] == '$' {
		p.defineVariable(name[1:], p.value)
		return
	}

	value := p.expand(p.value)

	switch {
	case strings.EqualFold(name, directiveInclude):
		p.include(value)
	case strings.EqualFold(name, directiveCommand):
		p.command(value)
	default:
		p.section.AddEntry(p.nameSource, p.nameLine, name, value, nil, p.overwrite)
	}
}

// openSection handles `{`: the buffered name and value become a new section
// (or a template) and parsing descends into it.
func (p *Parser) openSection() {
	defer p.clearBuffers()

	name := strings.TrimSpace(p.name.String())
	source, line := p.position()
	if name != "" {
		source, line = p.nameSource, p.nameLine
	}

	value := ""
	if p.hasValue {
		value = p.expand(p.value)
	}

	f := frame{section: p.section}

	switch {
	case name == "" || p.invalid:
		p.diagAt(source, line, "section without a name, skipping")
		// parse into a detached section to keep the braces balanced
		p.section = tree.New(source, line, name, value)

	case strings.EqualFold(name, directiveDefine):
		tmplName := strings.TrimSpace(value)
		if tmplName == "" {
			p.diagAt(source, line, "template without a name")
		}

		tmpl := tree.New(source, line, name, tmplName)
		tmpl.SetSection(tree.New(source, line, name, tmplName), false)
		if tmplName != "" {
			p.templates[tmplName] = tmpl
		}

		f.template = tmplName
		p.section = tmpl.Section()

	default:
		entry := p.section.AddEntry(source, line, name, value, tree.New(source, line, name, value), p.overwrite)
		p.section = entry.Section()
	}

	p.sections = append(p.sections, f)
}

// closeSection handles `}`.
func (p *Parser) closeSection() {
	n := len(p.sections)
	if n == 0 {
		p.diagf("unexpected '}'")
		return
	}

	p.section = p.sections[n-1].section
	p.sections = p.sections[:n-1]
}

// expandTemplate copies the template's content into the current section.
func (p *Parser) expandTemplate(name string) {
	tmpl, ok := p.templates[name]
	if !ok {
		p.diagAt(p.nameSource, p.nameLine, "undefined template %q", name)
		return
	}

	for _, f := range p.sections {
		if f.template == name {
			p.diagAt(p.nameSource, p.nameLine, "template %q expands itself", name)
			return
		}
	}

	p.section.CopyTreeInto(tmpl.Section(), true)
}

// include opens a file source. Relative paths which cannot be opened are
// tried relative to the directory of the including file.
func (p *Parser) include(path string) {
	path = keys.ExpandHome(path)
	candidates := []string{path}

	if !filepath.IsAbs(path) {
		if top := p.top(); top != nil && top.Type() == SourceFile {
			candidates = append(candidates, filepath.Join(filepath.Dir(top.Name()), path))
		}
	}

	var err error
	for _, candidate := range candidates {
		if p.onStack(candidate) {
			p.diagf("include cycle: %v is already being read", candidate)
			return
		}

		src := NewFileSource(candidate)
		if err = src.Open(); err == nil {
			p.pushSource(src)
			return
		}
	}

	p.diagf("include %q: %v", path, err)
}

// command opens a command source.
func (p *Parser) command(cmd string) {
	src := NewCommandSource(cmd)
	if err := src.Open(); err != nil {
		p.diagf("command: %v", err)
		return
	}

	p.pushSource(src)
}

// onStack reports whether the file is currently being read.
func (p *Parser) onStack(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	for _, src := range p.sources {
		if src.Type() != SourceFile {
			continue
		}

		name, err := filepath.Abs(src.Name())
		if err != nil {
			name = filepath.Clean(src.Name())
		}

		if name == abs {
			return true
		}

		if a, b := statFile(abs), statFile(name); a != nil && b != nil && os.SameFile(a, b) {
			return true
		}
	}

	return false
}

func statFile(name string) os.FileInfo {
	fi, err := os.Stat(name)
	if err != nil {
		return nil
	}
	return fi
}

func (p *Parser) top() Source {
	if len(p.sources) == 0 {
		return nil
	}
	return p.sources[len(p.sources)-1]
}

// position returns the name and line of the source currently read.
func (p *Parser) position() (string, int) {
	if src := p.top(); src != nil {
		return src.Name(), src.Line()
	}
	return p.nameSource, p.nameLine
}

func (p *Parser) diagf(format string, args ...interface{}) {
	source, line := p.position()
	p.diagAt(source, line, format, args...)
}

func (p *Parser) diagAt(source string, line int, format string, args ...interface{}) {
	d := Diagnostic{
		Source:  source,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}

	p.diagnostics = append(p.diagnostics, d)
	p.log.Warn(d.Message, zap.String("source", d.Source), zap.Int("line", d.Line))
}
