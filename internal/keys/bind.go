package keys

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/fd0/wmconf/internal/tree"
	"github.com/pkg/errors"
	"github.com/tkrajina/go-reflector/reflector"
	"go.uber.org/multierr"
)

// Bind fills the exported fields of target, which must be a pointer to a
// struct, from the entries of section.
//
// The entry name is taken from the `cfg` tag, untagged fields use the field
// name (compared ignoring case). The tag option "path" parses a string field
// as a path, the tag "-" skips the field. The tags `min` and `max` set the
// bounds of numbers and the length bounds of strings. The current value of a
// field is its default.
//
//	type Screen struct {
//		Workspaces int    `cfg:"Workspaces" min:"1" max:"64"`
//		Theme      string `cfg:"Theme,path"`
//		Focus      bool
//	}
func Bind(section *tree.Entry, target interface{}) error {
	obj := reflector.New(target)
	if !obj.IsPtr() {
		return errors.New("target is not a pointer")
	}

	var (
		keys    []Key
		setters []func() error
	)

	for _, field := range obj.FieldsAll() {
		field := field
		if !isExported(field.Name()) {
			continue
		}

		name, path := fieldName(&field)
		if name == "-" {
			continue
		}

		cur, err := field.Get()
		if err != nil {
			return errors.Wrap(err, field.Name())
		}
		rv := reflect.ValueOf(cur)

		set := func(v interface{}) func() error {
			return func() error {
				return field.Set(reflect.ValueOf(v).Elem().Convert(rv.Type()).Interface())
			}
		}

		switch field.Kind() {
		case reflect.Int:
			min, max, err := intBounds(&field, math.MinInt, math.MaxInt)
			if err != nil {
				return err
			}

			out := int(rv.Int())
			keys = append(keys, Int(name, &out, out, min, max))
			setters = append(setters, set(&out))

		case reflect.Float64:
			min, max, err := floatBounds(&field)
			if err != nil {
				return err
			}

			out := rv.Float()
			keys = append(keys, Float(name, &out, out, min, max))
			setters = append(setters, set(&out))

		case reflect.Bool:
			out := rv.Bool()
			keys = append(keys, Bool(name, &out, out))
			setters = append(setters, set(&out))

		case reflect.String:
			out := rv.String()
			if path {
				keys = append(keys, Path(name, &out, out))
			} else {
				min, max, err := intBounds(&field, 0, 0)
				if err != nil {
					return err
				}
				keys = append(keys, String(name, &out, out, min, max))
			}
			setters = append(setters, set(&out))

		default:
			return errors.Errorf("field %v: unsupported type %v", field.Name(), field.Kind())
		}
	}

	err := Parse(section, keys...)

	for _, set := range setters {
		if e := set(); e != nil {
			err = multierr.Append(err, errors.Wrap(e, "set field"))
		}
	}

	return err
}

func isExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// fieldName returns the entry name for the field and whether the path option
// was given.
func fieldName(field *reflector.ObjField) (string, bool) {
	tag, err := field.Tag("cfg")
	if err != nil || tag == "" {
		return strings.ToLower(field.Name()), false
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = strings.ToLower(field.Name())
	}

	for _, opt := range parts[1:] {
		if opt == "path" {
			return name, true
		}
	}

	return name, false
}

func tagValue(field *reflector.ObjField, tag string) string {
	s, err := field.Tag(tag)
	if err != nil {
		return ""
	}
	return s
}

func intBounds(field *reflector.ObjField, min, max int) (int, int, error) {
	var err error

	if s := tagValue(field, "min"); s != "" {
		if min, err = strconv.Atoi(s); err != nil {
			return 0, 0, errors.Wrapf(err, "field %v: min", field.Name())
		}
	}

	if s := tagValue(field, "max"); s != "" {
		if max, err = strconv.Atoi(s); err != nil {
			return 0, 0, errors.Wrapf(err, "field %v: max", field.Name())
		}
	}

	return min, max, nil
}

func floatBounds(field *reflector.ObjField) (float64, float64, error) {
	min, max := math.Inf(-1), math.Inf(1)
	var err error

	if s := tagValue(field, "min"); s != "" {
		if min, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, 0, errors.Wrapf(err, "field %v: min", field.Name())
		}
	}

	if s := tagValue(field, "max"); s != "" {
		if max, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, 0, errors.Wrapf(err, "field %v: max", field.Name())
		}
	}

	return min, max, nil
}
