package di

import (
	"fmt"
	"math"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/kbukum/ioc/errors"
	"github.com/kbukum/ioc/logger"
	"github.com/kbukum/ioc/observability"
)

// Get resolves key through the user container, falling back to the default
// container according to the installed Options:
//
//   - no user container: the default container answers.
//   - the user container returns an error: with FallbackOnErrors the default
//     container answers, otherwise the same error is returned.
//   - the user container returns a truthy value: it is returned.
//   - the user container returns a falsy value (see IsFalsy): with Fallback
//     the default container answers, otherwise the falsy value is returned.
func (r *Registry) Get(key any, typ Type) (any, error) {
	o := r.user.Load()
	if o == nil || IsFalsy(o.container) {
		return r.fromDefault(key, typ, observability.OutcomeHit)
	}

	instance, err := o.container.Get(key, typ)
	if err != nil {
		if !o.options.FallbackOnErrors {
			r.record("User container failed", key, observability.SourceUser, observability.OutcomeError, err)
			return nil, err
		}
		r.trace("User container failed, using default container", key, observability.SourceUser, observability.OutcomeFallbackError, err)
		return r.fromDefault(key, typ, observability.OutcomeFallbackError)
	}

	if !IsFalsy(instance) {
		r.record("Resolved from user container", key, observability.SourceUser, observability.OutcomeHit, nil)
		return instance, nil
	}

	if !o.options.Fallback {
		r.record("User container returned nothing", key, observability.SourceUser, observability.OutcomeFalsy, nil)
		return instance, nil
	}

	r.trace("User container returned nothing, using default container", key, observability.SourceUser, observability.OutcomeFallbackFalsy, nil)
	return r.fromDefault(key, typ, observability.OutcomeFallbackFalsy)
}

// GetType is Get with typ serving as its own key.
func (r *Registry) GetType(typ Type) (any, error) {
	if isNilType(typ) {
		return nil, errors.InvalidType("<nil>", "no type given")
	}
	return r.Get(typ, typ)
}

func (r *Registry) fromDefault(key any, typ Type, outcome string) (any, error) {
	instance, err := r.defaultContainer.Get(key, typ)
	if err != nil {
		r.record("Default container failed", key, observability.SourceDefault, observability.OutcomeError, err)
		return nil, err
	}
	r.record("Resolved from default container", key, observability.SourceDefault, outcome, nil)
	return instance, nil
}

// record counts a finished resolution and logs it at debug level.
func (r *Registry) record(msg string, key any, source, outcome string, err error) {
	r.metrics.RecordResolution(source, outcome)
	r.trace(msg, key, source, outcome, err)
}

func (r *Registry) trace(msg string, key any, source, outcome string, err error) {
	log := r.logger()
	if !log.Enabled(zerolog.DebugLevel) {
		return
	}
	fields := logger.Fields(
		logger.FieldKey, describeKey(key),
		logger.FieldSource, source,
		logger.FieldOutcome, outcome,
	)
	if err != nil {
		fields = logger.MergeWithError(fields, err)
	}
	log.Debug(msg, fields)
}

// GetFromContainer resolves key through the global registry.
// See Registry.Get for the resolution policy.
func GetFromContainer(key any, typ Type) (any, error) {
	return Global().Get(key, typ)
}

// GetFromContainerType resolves typ under its own key through the global registry.
func GetFromContainerType(typ Type) (any, error) {
	return Global().GetType(typ)
}

// Resolve resolves key through the global registry and asserts the result to T.
// A nil result yields the zero T without an error.
//
// Example:
//
//	storage, err := di.Resolve[*Storage](StorageKey, StorageType)
func Resolve[T any](key any, typ Type) (T, error) {
	return ResolveFrom[T](Global(), key, typ)
}

// ResolveOf resolves TypeOf[T]() under its own key through the global registry.
func ResolveOf[T any]() (T, error) {
	typ := TypeOf[T]()
	return ResolveFrom[T](Global(), typ, typ)
}

// ResolveFrom resolves key through r and asserts the result to T.
func ResolveFrom[T any](r *Registry, key any, typ Type) (T, error) {
	var zero T
	instance, err := r.Get(key, typ)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errors.TypeMismatch(describeKey(key), instance, reflect.TypeFor[T]().String())
	}
	return result, nil
}

// MustResolve is Resolve that panics on error.
// Use this where a missing dependency is a programming error.
func MustResolve[T any](key any, typ Type) T {
	result, err := Resolve[T](key, typ)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", describeKey(key), err))
	}
	return result
}

// TryResolve resolves a component, returns zero value and false on error or
// a falsy result.
//
// Example:
//
//	if cache, ok := di.TryResolve[*Cache](cacheKey, cacheType); ok {
//	    cache.Warm()
//	}
func TryResolve[T any](key any, typ Type) (T, bool) {
	result, err := Resolve[T](key, typ)
	if err != nil || IsFalsy(result) {
		var zero T
		return zero, false
	}
	return result, true
}

// IsFalsy reports whether a user container's answer counts as "nothing":
// nil, a nil pointer, map, slice, channel or func, false, numeric zero
// (including NaN) and the empty string. Structs, arrays and empty non-nil
// maps or slices are not falsy.
func IsFalsy(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() == 0
	case reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

func describeKey(key any) string {
	switch k := key.(type) {
	case nil:
		return "<nil>"
	case string:
		return k
	case fmt.Stringer:
		if rv := reflect.ValueOf(k); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return fmt.Sprintf("%T(nil)", k)
		}
		return k.String()
	default:
		return fmt.Sprintf("%T", k)
	}
}
