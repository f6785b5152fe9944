// Package accessor resolves members of host types by name, including
// unexported fields, and caches each resolution for the life of the process.
package accessor

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gravityhelper.accessor")

var (
	ErrNotPointer = errors.New("accessor: instance is not a pointer to the owner type")
	ErrNotFunc    = errors.New("accessor: member is not callable")
	ErrNotField   = errors.New("accessor: member is not a field")
)

type Kind int

const (
	KindField Kind = iota
	KindMethod
)

func (k Kind) String() string {
	if k == KindMethod {
		return "method"
	}
	return "field"
}

// ResolutionError names a member that could not be resolved. Must-style
// lookups panic with it.
type ResolutionError struct {
	Owner  reflect.Type
	Member string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("accessor: %s.%s: %s", e.Owner, e.Member, e.Reason)
}

// Member is a resolved field or method of an owner struct type.
type Member struct {
	owner  reflect.Type
	name   string
	kind   Kind
	index  []int
	typ    reflect.Type
	method reflect.Method
}

type key struct {
	owner reflect.Type
	name  string
}

var cache sync.Map

// Resolve finds name on owner, which may be a struct type or a pointer to
// one. Fields win over methods. Successful resolutions are cached.
func Resolve(owner reflect.Type, name string) (*Member, error) {
	if owner == nil {
		return nil, &ResolutionError{Member: name, Reason: "nil owner type"}
	}
	if owner.Kind() == reflect.Pointer {
		owner = owner.Elem()
	}
	k := key{owner, name}
	if m, ok := cache.Load(k); ok {
		return m.(*Member), nil
	}
	if owner.Kind() != reflect.Struct {
		return nil, &ResolutionError{Owner: owner, Member: name, Reason: "owner is not a struct"}
	}

	m := &Member{owner: owner, name: name}
	if f, ok := owner.FieldByName(name); ok {
		m.kind = KindField
		m.index = f.Index
		m.typ = f.Type
	} else if meth, ok := reflect.PointerTo(owner).MethodByName(name); ok {
		m.kind = KindMethod
		m.method = meth
		m.typ = meth.Type
	} else {
		return nil, &ResolutionError{Owner: owner, Member: name, Reason: "no such field or exported method"}
	}

	actual, loaded := cache.LoadOrStore(k, m)
	if !loaded {
		log.Debugf("accessor: resolved %s.%s (%s %s)", owner, name, m.kind, m.typ)
	}
	return actual.(*Member), nil
}

// MustResolve is Resolve that panics with a *ResolutionError.
func MustResolve(owner reflect.Type, name string) *Member {
	m, err := Resolve(owner, name)
	if err != nil {
		panic(err)
	}
	return m
}

// Cached reports how many members have been resolved so far.
func Cached() int {
	n := 0
	cache.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

func (m *Member) Owner() reflect.Type { return m.owner }
func (m *Member) Name() string        { return m.name }
func (m *Member) Kind() Kind          { return m.kind }

// Type is the field type, or the method type with the receiver first.
func (m *Member) Type() reflect.Type { return m.typ }

// value returns the settable field value inside obj.
func (m *Member) value(obj any) (reflect.Value, error) {
	if m.kind != KindField {
		return reflect.Value{}, fmt.Errorf("accessor: %s.%s: %w", m.owner, m.name, ErrNotField)
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != m.owner {
		return reflect.Value{}, fmt.Errorf("accessor: %s.%s on %T: %w", m.owner, m.name, obj, ErrNotPointer)
	}
	f := rv.Elem().FieldByIndex(m.index)
	if !f.CanSet() {
		f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	}
	return f, nil
}

// Get reads the field from obj, a pointer to the owner.
func (m *Member) Get(obj any) (any, error) {
	f, err := m.value(obj)
	if err != nil {
		return nil, err
	}
	return f.Interface(), nil
}

// Set writes v into the field, converting between compatible kinds such as
// float64 and float32.
func (m *Member) Set(obj any, v any) error {
	f, err := m.value(obj)
	if err != nil {
		return err
	}
	nv, err := convert(v, f.Type())
	if err != nil {
		return fmt.Errorf("accessor: %s.%s: %w", m.owner, m.name, err)
	}
	f.Set(nv)
	return nil
}

// Invoke calls a method, or a func-typed field, on obj.
func (m *Member) Invoke(obj any, args ...any) ([]any, error) {
	var fn reflect.Value
	in := make([]reflect.Value, 0, len(args)+1)
	switch {
	case m.kind == KindMethod:
		rv := reflect.ValueOf(obj)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != m.owner {
			return nil, fmt.Errorf("accessor: %s.%s on %T: %w", m.owner, m.name, obj, ErrNotPointer)
		}
		fn = m.method.Func
		in = append(in, rv)
	case m.typ.Kind() == reflect.Func:
		f, err := m.value(obj)
		if err != nil {
			return nil, err
		}
		if f.IsNil() {
			return nil, fmt.Errorf("accessor: %s.%s is nil: %w", m.owner, m.name, ErrNotFunc)
		}
		fn = f
	default:
		return nil, fmt.Errorf("accessor: %s.%s: %w", m.owner, m.name, ErrNotFunc)
	}

	ft := fn.Type()
	n := ft.NumIn()
	if ft.IsVariadic() && len(in)+len(args) < n-1 || !ft.IsVariadic() && len(in)+len(args) != n {
		return nil, fmt.Errorf("accessor: %s.%s: want %d arguments, got %d", m.owner, m.name, n-len(in), len(args))
	}
	for i, a := range args {
		var at reflect.Type
		if ft.IsVariadic() && len(in) >= n-1 {
			at = ft.In(n - 1).Elem()
		} else {
			at = ft.In(len(in))
		}
		v, err := convert(a, at)
		if err != nil {
			return nil, fmt.Errorf("accessor: %s.%s argument %d: %w", m.owner, m.name, i, err)
		}
		in = append(in, v)
	}

	out := fn.Call(in)
	res := make([]any, len(out))
	for i, o := range out {
		res[i] = o.Interface()
	}
	return res, nil
}

func convert(v any, to reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch to.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(to), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", to)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(to) {
		return rv, nil
	}
	if numeric(rv.Kind()) && numeric(to.Kind()) && rv.Type().ConvertibleTo(to) {
		return rv.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", rv.Type(), to)
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
