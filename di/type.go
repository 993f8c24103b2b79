package di

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/ioc/errors"
)

// Type describes how an instance is built the first time its key is looked
// up. Implementations returned by this package are pointers, so a Type is
// comparable and can serve as its own key.
type Type interface {
	New() (any, error)
	String() string
}

// reflectType builds instances from a Go type with no constructor arguments.
type reflectType struct {
	t reflect.Type
}

var reflectTypes sync.Map // reflect.Type -> *reflectType

// TypeOf returns the Type for T. Calls with the same T return the same value,
// so TypeOf[T]() is a stable key.
//
// Pointer types allocate their element (TypeOf[*Service] yields a fresh
// *Service) and map types yield an empty map. Every other type yields its
// zero value. Interface types cannot be constructed.
func TypeOf[T any]() Type {
	return TypeFor(reflect.TypeFor[T]())
}

// TypeFor is TypeOf for a reflect.Type known only at runtime.
// It returns nil for a nil reflect.Type.
func TypeFor(t reflect.Type) Type {
	if t == nil {
		return nil
	}
	if cached, ok := reflectTypes.Load(t); ok {
		return cached.(*reflectType)
	}
	actual, _ := reflectTypes.LoadOrStore(t, &reflectType{t: t})
	return actual.(*reflectType)
}

func (r *reflectType) New() (any, error) {
	switch r.t.Kind() {
	case reflect.Interface:
		return nil, errors.InvalidType(r.t.String(), "interface types cannot be constructed")
	case reflect.Pointer:
		return reflect.New(r.t.Elem()).Interface(), nil
	case reflect.Map:
		return reflect.MakeMap(r.t).Interface(), nil
	default:
		return reflect.Zero(r.t).Interface(), nil
	}
}

func (r *reflectType) String() string { return r.t.String() }

// Reflect returns the underlying reflect.Type of a Type built by TypeOf or
// TypeFor, or nil for any other Type.
func Reflect(typ Type) reflect.Type {
	if r, ok := typ.(*reflectType); ok {
		return r.t
	}
	return nil
}

// funcType builds instances by calling a zero-argument constructor.
type funcType struct {
	desc string
	call func() (any, error)
}

func (f *funcType) New() (any, error) { return f.call() }

func (f *funcType) String() string { return f.desc }

// Factory returns a Type backed by a typed constructor. Each call returns a
// distinct Type; keep the result in a variable when it is used as a key.
func Factory[T any](fn func() (T, error)) Type {
	return &funcType{
		desc: reflect.TypeFor[T]().String(),
		call: func() (any, error) {
			v, err := fn()
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// NewType returns a Type backed by an untyped constructor. The constructor
// must be a function taking no arguments and returning either (instance) or
// (instance, error). Any other shape is reported as an INVALID_TYPE error
// when an instance is first constructed.
//
// Each call returns a distinct Type.
func NewType(constructor any) Type {
	fn := reflect.ValueOf(constructor)
	desc := fmt.Sprintf("%T", constructor)
	if fn.Kind() == reflect.Func && fn.Type().NumOut() > 0 {
		desc = fn.Type().Out(0).String()
	}
	return &funcType{
		desc: desc,
		call: func() (any, error) { return callConstructor(fn, desc) },
	}
}

var errorType = reflect.TypeFor[error]()

func callConstructor(fn reflect.Value, desc string) (any, error) {
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, errors.InvalidType(desc, "constructor must be a function")
	}

	fnType := fn.Type()
	if fnType.NumIn() != 0 || fnType.IsVariadic() {
		return nil, errors.InvalidType(desc, fmt.Sprintf("constructor must take no arguments (takes %d)", fnType.NumIn()))
	}

	switch fnType.NumOut() {
	case 1:
		results := fn.Call(nil)
		return results[0].Interface(), nil
	case 2:
		if !fnType.Out(1).Implements(errorType) {
			return nil, errors.InvalidType(desc, "second constructor result must be an error")
		}
		results := fn.Call(nil)
		if err := results[1].Interface(); err != nil {
			return nil, err.(error)
		}
		return results[0].Interface(), nil
	default:
		return nil, errors.InvalidType(desc, "constructor must return either (instance) or (instance, error)")
	}
}

// Token is a unique, symbol-like key. Two tokens are equal only if they are
// the same pointer, regardless of name.
type Token struct {
	name string
	id   uuid.UUID
}

// NewToken creates a new unique token. The name is for display only.
func NewToken(name string) *Token {
	return &Token{name: name, id: uuid.New()}
}

// Name returns the display name of the token.
func (t *Token) Name() string { return t.name }

// ID returns the random identifier assigned when the token was created.
func (t *Token) ID() uuid.UUID { return t.id }

// String returns the name followed by the first eight hex digits of the id,
// so tokens sharing a name can be told apart in logs.
func (t *Token) String() string {
	return "Token(" + t.name + "#" + t.id.String()[:8] + ")"
}
