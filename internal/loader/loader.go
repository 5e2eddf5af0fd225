// Package loader keeps a parsed configuration up to date.
//
// A Loader remembers the modification time of every file read while parsing.
// The configuration is only parsed again when one of these files changed, or
// when it contains the output of a command, which may change at any time.
package loader

import (
	"os"
	"sync"
	"time"

	"github.com/fd0/wmconf/internal/config"
	"github.com/fd0/wmconf/internal/tree"
	"go.uber.org/zap"
)

// Loader loads a configuration and reloads it on changes.
type Loader struct {
	mu sync.Mutex

	path      string
	typ       config.SourceType
	overwrite bool
	log       *zap.Logger

	parser *config.Parser
	mtimes map[string]time.Time
	loaded bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger, it is also passed to the parser.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithSourceType sets the type of the primary source, the default is a file.
func WithSourceType(typ config.SourceType) Option {
	return func(l *Loader) {
		l.typ = typ
	}
}

// WithOverwrite sets whether the initial load merges entries with the same
// name. Reloads always merge.
func WithOverwrite(overwrite bool) Option {
	return func(l *Loader) {
		l.overwrite = overwrite
	}
}

// New returns a loader for the configuration at path.
func New(path string, opts ...Option) *Loader {
	l := &Loader{
		path:      path,
		typ:       config.SourceFile,
		overwrite: true,
		log:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	l.parser = config.NewParser(config.WithLogger(l.log))
	return l
}

// Path returns the name of the primary source.
func (l *Loader) Path() string { return l.path }

// Load parses the configuration from scratch.
func (l *Loader) Load() (*tree.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.parser.Reset()
	err := l.parser.Parse(l.path, l.typ, l.overwrite)
	l.record()
	if err != nil {
		return nil, err
	}

	l.loaded = true
	l.log.Debug("configuration loaded",
		zap.String("path", l.path),
		zap.Int("files", len(l.mtimes)),
		zap.Int("diagnostics", len(l.parser.Diagnostics())),
		zap.Bool("dynamic", l.parser.IsDynamic()))

	return l.parser.Root(), nil
}

// record saves the modification times of all files read by the parser.
func (l *Loader) record() {
	l.mtimes = make(map[string]time.Time)
	for _, name := range l.parser.Files() {
		fi, err := os.Stat(name)
		if err != nil {
			// removed while parsing, force the next reload
			l.mtimes[name] = time.Time{}
			continue
		}
		l.mtimes[name] = fi.ModTime()
	}
}

// NeedsReload reports whether the configuration may have changed since it was
// last parsed.
func (l *Loader) NeedsReload() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.needsReload()
}

func (l *Loader) needsReload() bool {
	if !l.loaded || l.parser.IsDynamic() {
		return true
	}

	for name, mtime := range l.mtimes {
		fi, err := os.Stat(name)
		if err != nil || !fi.ModTime().Equal(mtime) {
			l.log.Debug("file changed", zap.String("file", name))
			return true
		}
	}

	return false
}

// Reload parses the configuration again if needed and merges it into the
// current tree. It reports whether the tree changed.
func (l *Loader) Reload() (changed bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.needsReload() {
		return false, nil
	}

	if !l.loaded {
		l.parser.Reset()
	}

	before := l.parser.Root().Clone()

	l.parser.ResetSession()
	err = l.parser.Parse(l.path, l.typ, true)
	l.record()
	if err != nil {
		return false, err
	}

	l.loaded = true
	changed = !before.Equal(l.parser.Root())

	l.log.Debug("configuration reloaded",
		zap.String("path", l.path),
		zap.Bool("changed", changed),
		zap.Int("diagnostics", len(l.parser.Diagnostics())))

	return changed, nil
}

// Root returns the current tree.
func (l *Loader) Root() *tree.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.parser.Root()
}

// Diagnostics returns the problems found by the last parse.
func (l *Loader) Diagnostics() []config.Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.parser.Diagnostics()
}

// Templates returns the sorted names of the templates defined by the last
// parse.
func (l *Loader) Templates() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.parser.Templates()
}

// Template returns the template with the name or nil.
func (l *Loader) Template(name string) *tree.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.parser.Template(name)
}

// Files returns the files read by the last parse.
func (l *Loader) Files() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.parser.Files()...)
}

// IsDynamic reports whether the configuration contains command output.
func (l *Loader) IsDynamic() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.parser.IsDynamic()
}
