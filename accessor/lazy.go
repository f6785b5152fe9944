package accessor

import (
	"reflect"
	"sync"
)

// Lazy defers resolution to first use. A member that cannot be resolved
// panics there with a *ResolutionError.
type Lazy struct {
	owner reflect.Type
	name  string
	once  sync.Once
	m     *Member
	err   error
}

func NewLazy(owner reflect.Type, name string) *Lazy {
	return &Lazy{owner: owner, name: name}
}

// LazyOf declares a lazy member of O.
func LazyOf[O any](name string) *Lazy {
	return NewLazy(reflect.TypeFor[O](), name)
}

func (l *Lazy) Member() *Member {
	l.once.Do(func() {
		l.m, l.err = Resolve(l.owner, l.name)
	})
	if l.err != nil {
		panic(l.err)
	}
	return l.m
}

func (l *Lazy) Name() string { return l.name }

// Invoke calls the member on obj, panicking on failure.
func (l *Lazy) Invoke(obj any, args ...any) []any {
	out, err := l.Member().Invoke(obj, args...)
	if err != nil {
		panic(err)
	}
	return out
}

// Field is a typed accessor for a field of T on owner O.
type Field[O, T any] struct {
	lazy *Lazy
}

func NewField[O, T any](name string) Field[O, T] {
	return Field[O, T]{lazy: LazyOf[O](name)}
}

func (f Field[O, T]) Name() string { return f.lazy.Name() }

func (f Field[O, T]) Get(o *O) T {
	v, err := f.lazy.Member().Get(o)
	if err != nil {
		panic(err)
	}
	t, ok := v.(T)
	if !ok {
		panic(&ResolutionError{Owner: f.lazy.owner, Member: f.lazy.name, Reason: "field type does not match " + reflect.TypeFor[T]().String()})
	}
	return t
}

func (f Field[O, T]) Set(o *O, v T) {
	if err := f.lazy.Member().Set(o, v); err != nil {
		panic(err)
	}
}
