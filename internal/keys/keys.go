// Package keys extracts typed values from the attribute tree.
//
// A Key wraps a caller-owned variable together with a default and bounds.
// ParseValue always writes a value: on invalid input the default (or for
// numbers the nearest bound) is stored and a *ValidationError is returned.
package keys

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fd0/wmconf/internal/tree"
	"go.uber.org/multierr"
)

// Key is a typed configuration value.
type Key interface {
	Name() string
	ParseValue(raw string) error
}

// ValidationError is returned when a value is rejected.
type ValidationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("key %s: invalid value %q: %s", e.Key, e.Value, e.Reason)
}

func invalid(key, value, format string, args ...interface{}) error {
	return &ValidationError{Key: key, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// leadingNumber returns the longest prefix of s which looks like a number.
func leadingNumber(s string, float bool) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits, dot := 0, false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && float && !dot:
			dot = true
		default:
			return trimNumber(s[:i], digits)
		}
	}

	return trimNumber(s, digits)
}

func trimNumber(s string, digits int) string {
	if digits == 0 {
		return ""
	}
	return strings.TrimSuffix(s, ".")
}

type number interface {
	~int | ~float64
}

func clamp[T number](key, raw string, v, min, max T) (T, error) {
	switch {
	case v < min:
		return min, invalid(key, raw, "below minimum %v", min)
	case v > max:
		return max, invalid(key, raw, "above maximum %v", max)
	}
	return v, nil
}

// IntKey parses an integer.
type IntKey struct {
	name          string
	out           *int
	def, min, max int
}

// Int returns a key for an integer in the range [min, max].
func Int(name string, out *int, def, min, max int) *IntKey {
	return &IntKey{name: name, out: out, def: def, min: min, max: max}
}

// Name returns the name of the key.
func (k *IntKey) Name() string { return k.name }

// ParseValue parses the leading integer of raw. Non-numeric input stores the
// default, values out of range are clamped.
func (k *IntKey) ParseValue(raw string) error {
	s := leadingNumber(strings.TrimSpace(raw), false)
	if s == "" {
		*k.out = k.def
		return invalid(k.name, raw, "not a number")
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		// only range errors are possible here
		if strings.HasPrefix(s, "-") {
			v = math.MinInt
		} else {
			v = math.MaxInt
		}
	}

	v, err = clamp(k.name, raw, v, k.min, k.max)
	*k.out = v
	return err
}

// FloatKey parses a floating point number.
type FloatKey struct {
	name          string
	out           *float64
	def, min, max float64
}

// Float returns a key for a float in the range [min, max].
func Float(name string, out *float64, def, min, max float64) *FloatKey {
	return &FloatKey{name: name, out: out, def: def, min: min, max: max}
}

// Name returns the name of the key.
func (k *FloatKey) Name() string { return k.name }

// ParseValue parses the leading number of raw like IntKey does.
func (k *FloatKey) ParseValue(raw string) error {
	s := leadingNumber(strings.TrimSpace(raw), true)
	if s == "" {
		*k.out = k.def
		return invalid(k.name, raw, "not a number")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v = math.Inf(1)
		if strings.HasPrefix(s, "-") {
			v = math.Inf(-1)
		}
	}

	v, err = clamp(k.name, raw, v, k.min, k.max)
	*k.out = v
	return err
}

// BoolKey parses a boolean.
type BoolKey struct {
	name string
	out  *bool
	def  bool
}

// Bool returns a key for a boolean.
func Bool(name string, out *bool, def bool) *BoolKey {
	return &BoolKey{name: name, out: out, def: def}
}

// Name returns the name of the key.
func (k *BoolKey) Name() string { return k.name }

// ParseValue accepts 1/true and 0/false, ignoring case.
func (k *BoolKey) ParseValue(raw string) error {
	s := strings.TrimSpace(raw)
	switch {
	case s == "1" || strings.EqualFold(s, "true"):
		*k.out = true
	case s == "0" || strings.EqualFold(s, "false"):
		*k.out = false
	default:
		*k.out = k.def
		return invalid(k.name, raw, "not a boolean")
	}
	return nil
}

// StringKey accepts text with bounded length.
type StringKey struct {
	name           string
	out            *string
	def            string
	minLen, maxLen int
}

// String returns a key for a string. A maxLen of zero means unbounded.
func String(name string, out *string, def string, minLen, maxLen int) *StringKey {
	return &StringKey{name: name, out: out, def: def, minLen: minLen, maxLen: maxLen}
}

// Name returns the name of the key.
func (k *StringKey) Name() string { return k.name }

// ParseValue stores raw verbatim or the default if the length is out of
// bounds.
func (k *StringKey) ParseValue(raw string) error {
	n := len(raw)
	switch {
	case n < k.minLen:
		*k.out = k.def
		return invalid(k.name, raw, "shorter than %d characters", k.minLen)
	case k.maxLen > 0 && n > k.maxLen:
		*k.out = k.def
		return invalid(k.name, raw, "longer than %d characters", k.maxLen)
	}

	*k.out = raw
	return nil
}

// PathKey parses a file system path.
type PathKey struct {
	name string
	out  *string
	def  string
}

// Path returns a key for a path. A leading ~ is replaced by the home
// directory.
func Path(name string, out *string, def string) *PathKey {
	return &PathKey{name: name, out: out, def: def}
}

// Name returns the name of the key.
func (k *PathKey) Name() string { return k.name }

// ParseValue expands raw, empty values store the default.
func (k *PathKey) ParseValue(raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		*k.out = k.def
		return invalid(k.name, raw, "empty path")
	}

	*k.out = ExpandHome(s)
	return nil
}

// ExpandHome replaces a leading ~ with the home directory of the current
// user. The path is returned unchanged if the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Parse applies the keys to the entries in section. Keys without a matching
// entry keep their current value. All validation errors are returned
// combined, every key is processed.
func Parse(section *tree.Entry, keys ...Key) error {
	if section == nil {
		return nil
	}

	var err error
	for _, key := range keys {
		entry := section.FindEntry(key.Name(), false, "")
		if entry == nil {
			continue
		}

		err = multierr.Append(err, key.ParseValue(entry.Value()))
	}

	return err
}
