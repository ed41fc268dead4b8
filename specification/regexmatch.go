package specification

import (
	"fmt"
	"reflect"
	"regexp"
)

// RegexMatch builds a leaf specification testing a selected, possibly absent
// value against a regular expression.
//
// The selector may return nil, a nil pointer, or a pointer to the value; an
// absent value matches as the empty string instead of failing. Everything else
// is converted to its text form before matching. The pattern is compiled
// eagerly - RegexMatch panics with ErrInvalidPattern on malformed patterns and
// with ErrNilPropertySelector on a nil selector.
func RegexMatch[T any](field FieldNameString, selector func(T) any, pattern string) Spec[T] {
	mustHaveSelector(selector == nil)

	re, compileErr := regexp.Compile(pattern)
	if compileErr != nil {
		panic(fmt.Errorf("%w: %v", ErrInvalidPattern, compileErr))
	}

	return Spec[T]{source: matchSpec[T]{
		field:    field,
		selector: selector,
		pattern:  pattern,
		re:       re,
	}}
}

type matchSpec[T any] struct {
	field    FieldNameString
	selector func(T) any
	pattern  string
	re       *regexp.Regexp
}

func (s matchSpec[T]) Expression() Expr[T] {
	return matchExpr[T]{
		field:    s.field,
		selector: s.selector,
		pattern:  s.pattern,
		re:       s.re,
	}
}

type matchExpr[T any] struct {
	field    FieldNameString
	selector func(T) any
	pattern  string
	re       *regexp.Regexp
}

func (e matchExpr[T]) Kind() Kind { return KindMatch }

func (e matchExpr[T]) Field() FieldNameString { return e.field }

func (e matchExpr[T]) Pattern() string { return e.pattern }

func (e matchExpr[T]) Compile() func(T) bool {
	return func(entity T) bool {
		return e.re.MatchString(textValue(e.selector(entity)))
	}
}

// textValue renders a selected value for pattern matching. Absent values
// (nil, or a nil pointer) become the empty string; pointers are dereferenced.
func textValue(value any) string {
	if value == nil {
		return ""
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}

		rv = rv.Elem()
	}

	if rv.Kind() == reflect.String {
		return rv.String()
	}

	return fmt.Sprint(rv.Interface())
}
