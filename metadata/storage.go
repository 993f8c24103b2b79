package metadata

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/ioc/errors"
)

// Constraint is a validator tag registered for one field of a target type.
type Constraint struct {
	Field string
	Tag   string
}

// FieldError describes one failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Storage keeps constraints per target type. It is safe for concurrent use.
type Storage struct {
	constraints map[reflect.Type][]Constraint
	validate    *validator.Validate
	mu          sync.RWMutex
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{
		constraints: make(map[reflect.Type][]Constraint),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// targetType normalises target to the struct type constraints are kept under.
// target may be a value, a pointer to a value, or a reflect.Type.
func targetType(target any) reflect.Type {
	var t reflect.Type
	switch v := target.(type) {
	case nil:
		return nil
	case reflect.Type:
		t = v
	default:
		t = reflect.TypeOf(v)
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// AddConstraint registers a validator tag (for example "required,min=2") for
// field of target. The field must be an exported struct field.
func (s *Storage) AddConstraint(target any, field, tag string) error {
	t := targetType(target)
	if t == nil || t.Kind() != reflect.Struct {
		return errors.InvalidType(describe(t), "constraints can only be registered on struct types")
	}
	sf, ok := t.FieldByName(field)
	if !ok || !sf.IsExported() {
		return errors.Validation("unknown or unexported field").
			WithDetail("type", t.String()).
			WithDetail("field", field)
	}
	if strings.TrimSpace(tag) == "" {
		return errors.Validation("empty constraint tag").WithDetail("field", field)
	}
	if err := s.checkTag(sf.Type, tag); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.constraints[t] = append(s.constraints[t], Constraint{Field: field, Tag: tag})
	return nil
}

// Constraints returns the constraints registered for target in registration order.
func (s *Storage) Constraints(target any) []Constraint {
	t := targetType(target)
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.constraints[t]
	out := make([]Constraint, len(src))
	copy(out, src)
	return out
}

// HasConstraints reports whether any constraint is registered for target.
func (s *Storage) HasConstraints(target any) bool {
	t := targetType(target)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.constraints[t]) > 0
}

// Targets returns every type with registered constraints, sorted by name.
func (s *Storage) Targets() []reflect.Type {
	s.mu.RLock()
	targets := make([]reflect.Type, 0, len(s.constraints))
	for t := range s.constraints {
		targets = append(targets, t)
	}
	s.mu.RUnlock()

	sort.Slice(targets, func(i, j int) bool { return targets[i].String() < targets[j].String() })
	return targets
}

// Reset removes every registered constraint.
func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constraints = make(map[reflect.Type][]Constraint)
}

// Validate checks obj against the constraints registered for its type.
// It returns nil when obj satisfies all of them, or a VALIDATION_FAILED
// AppError whose "fields" detail lists every failure.
func (s *Storage) Validate(obj any) error {
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return errors.Validation("cannot validate a nil value")
	}
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return errors.Validation("cannot validate a nil value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.InvalidType(describe(v.Type()), "only struct values can be validated")
	}

	constraints := s.Constraints(v.Type())
	var failures []FieldError
	for _, c := range constraints {
		err := s.validate.Var(fieldValue(v, c.Field), c.Tag)
		if err == nil {
			continue
		}
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.Validation("invalid constraint").
				WithDetail("field", c.Field).
				WithDetail("tag", c.Tag).
				WithCause(err)
		}
		for _, fe := range fieldErrs {
			failures = append(failures, FieldError{
				Field:   c.Field,
				Tag:     fe.Tag(),
				Message: formatValidationError(fe),
			})
		}
	}

	if len(failures) == 0 {
		return nil
	}

	messages := make([]string, 0, len(failures))
	for _, f := range failures {
		messages = append(messages, f.Field+": "+f.Message)
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", failures)
}

// fieldValue returns the value of the named field of struct v. A field
// promoted through a nil embedded pointer yields the zero value of its type.
func fieldValue(v reflect.Value, name string) any {
	sf, _ := v.Type().FieldByName(name)
	field, err := v.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Zero(sf.Type).Interface()
	}
	return field.Interface()
}

// checkTag runs tag once against the zero value of the field type. The
// validator panics on unknown tags and malformed parameters.
func (s *Storage) checkTag(fieldType reflect.Type, tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Validation("invalid constraint tag").
				WithDetail("tag", tag).
				WithDetail("reason", fmt.Sprint(r))
		}
	}()
	_ = s.validate.Var(reflect.Zero(fieldType).Interface(), tag)
	return nil
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "failed " + e.Tag()
	}
}

func describe(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
