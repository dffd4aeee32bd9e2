package mapping

import "strings"

type fieldState uint8

const (
	fieldAbsent fieldState = iota
	fieldSet
	fieldCleared
)

// Field is one value of a partial update. It tells apart a field that was
// never provided from one that was explicitly cleared.
type Field[T any] struct {
	value T
	state fieldState
}

func Set[T any](v T) Field[T] {
	return Field[T]{value: v, state: fieldSet}
}

func Cleared[T any]() Field[T] {
	return Field[T]{state: fieldCleared}
}

func Absent[T any]() Field[T] {
	return Field[T]{}
}

// FromPtr maps nil to absent and anything else to set.
func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return Absent[T]()
	}
	return Set(*p)
}

// Text maps nil to absent, a blank string to cleared, and trims the rest.
func Text(p *string) Field[string] {
	if p == nil {
		return Absent[string]()
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return Cleared[string]()
	}
	return Set(v)
}

func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == fieldSet
}

func (f Field[T]) IsAbsent() bool  { return f.state == fieldAbsent }
func (f Field[T]) IsCleared() bool { return f.state == fieldCleared }

// Or returns the value when set and def otherwise.
func (f Field[T]) Or(def T) T {
	if f.state == fieldSet {
		return f.value
	}
	return def
}

// textPtr renders a text field for a sparse payload: absent is omitted,
// cleared is sent as an empty string.
func textPtr(f Field[string]) *string {
	switch f.state {
	case fieldSet:
		v := f.value
		return &v
	case fieldCleared:
		v := ""
		return &v
	default:
		return nil
	}
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
