package messenger

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("messenger: validation failed")

// Validation kinds, used as the metrics label.
const (
	KindRecipient     = "recipient"
	KindCompatibility = "compatibility"
	KindRequired      = "required"
	KindLimit         = "limit"
	KindConflict      = "conflict"
	KindInvalid       = "invalid"
)

// ValidationError is a local rejection raised before anything is sent.
type ValidationError struct {
	Kind   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "messenger: " + e.Reason
	}
	return fmt.Sprintf("messenger: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ValidationErrors flattens err into its individual violations.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	walk(err, func(v *ValidationError) { out = append(out, v) })
	return out
}

func walk(err error, fn func(*ValidationError)) {
	switch e := err.(type) {
	case nil:
		return
	case *ValidationError:
		fn(e)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			walk(inner, fn)
		}
	case interface{ Unwrap() error }:
		walk(e.Unwrap(), fn)
	}
}

// problems accumulates violations for one value.
type problems struct {
	errs []error
}

func (p *problems) add(kind, field, format string, args ...any) {
	p.errs = append(p.errs, &ValidationError{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)})
}

// nest folds a child's violations in under prefix.
func (p *problems) nest(prefix string, err error) {
	walk(err, func(v *ValidationError) {
		field := prefix
		switch {
		case v.Field == "":
		case strings.HasPrefix(v.Field, "["):
			field += v.Field
		default:
			field += "." + v.Field
		}
		p.errs = append(p.errs, &ValidationError{Kind: v.Kind, Field: field, Reason: v.Reason})
	})
}

func (p *problems) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		p.add(KindRequired, field, "is required")
	}
}

func (p *problems) maxLen(field, value string, limit int) {
	if n := utf8.RuneCountInString(value); n > limit {
		p.add(KindLimit, field, "has %d characters, limit is %d", n, limit)
	}
}

func (p *problems) count(field string, n, min, max int) {
	switch {
	case n < min:
		p.add(KindLimit, field, "needs at least %d items, has %d", min, n)
	case max > 0 && n > max:
		p.add(KindLimit, field, "allows at most %d items, has %d", max, n)
	}
}

func (p *problems) err() error {
	return errors.Join(p.errs...)
}

func oneOf[T ~string](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
