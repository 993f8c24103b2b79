package metadata

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/ioc/di"
	"github.com/kbukum/ioc/errors"
)

type signup struct {
	Name  string
	Email string
	Age   int
	note  string
}

// hostContainer supplies a fixed storage for the metadata key only.
type hostContainer struct {
	storage *Storage
	asked   int
}

func (h *hostContainer) Get(key any, typ di.Type) (any, error) {
	h.asked++
	if key == StorageKey {
		return h.storage, nil
	}
	return nil, nil
}

func TestGetMetadataStorageIsShared(t *testing.T) {
	first := GetMetadataStorage()
	second := GetMetadataStorage()
	if first == nil {
		t.Fatal("expected a storage")
	}
	if first != second {
		t.Error("expected the same storage on every call")
	}
	if !di.Global().Default().Has(StorageKey) {
		t.Error("expected the storage to live in the default container")
	}
}

func TestGetMetadataStorageFromHostContainer(t *testing.T) {
	t.Cleanup(func() { di.UseContainer(nil) })

	hosted := NewStorage()
	host := &hostContainer{storage: hosted}
	di.UseContainer(host)

	if got := GetMetadataStorage(); got != hosted {
		t.Error("expected the host container's storage")
	}
	if host.asked != 1 {
		t.Errorf("expected the host container to be asked once, got %d", host.asked)
	}

	di.UseContainer(&hostContainer{})
	if got := GetMetadataStorage(); got != nil {
		t.Error("expected nil when the host has no storage and fallback is off")
	}

	di.UseContainer(&hostContainer{}, di.WithFallback())
	if got := GetMetadataStorage(); got == nil || got == hosted {
		t.Error("expected the default storage with fallback on")
	}
}

func TestGetMetadataStoragePanicsOnError(t *testing.T) {
	t.Cleanup(func() { di.UseContainer(nil) })

	di.UseContainer(di.ContainerFunc(func(key any, typ di.Type) (any, error) {
		return "wrong type", nil
	}))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.IsCode(err, errors.ErrCodeResolutionFailed) {
			t.Fatalf("expected RESOLUTION_FAILED panic, got %v", r)
		}
		appErr, _ := errors.AsAppError(err)
		if !errors.IsCode(appErr.Cause, errors.ErrCodeTypeMismatch) {
			t.Errorf("expected the type mismatch as cause, got %v", appErr.Cause)
		}
		if !strings.Contains(err.Error(), "metadata.Storage") {
			t.Errorf("expected the storage key in the message, got %q", err.Error())
		}
	}()
	GetMetadataStorage()
}

func TestAddConstraint(t *testing.T) {
	s := NewStorage()

	if err := s.AddConstraint(signup{}, "Name", "required,min=2"); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}
	if err := s.AddConstraint(&signup{}, "Email", "required,email"); err != nil {
		t.Fatalf("AddConstraint with pointer target failed: %v", err)
	}
	if err := s.AddConstraint(reflect.TypeOf(signup{}), "Age", "min=18"); err != nil {
		t.Fatalf("AddConstraint with reflect.Type failed: %v", err)
	}

	got := s.Constraints(signup{})
	want := []Constraint{{"Name", "required,min=2"}, {"Email", "required,email"}, {"Age", "min=18"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !s.HasConstraints(&signup{}) {
		t.Error("expected HasConstraints for pointer target")
	}

	got[0].Tag = "mutated"
	if s.Constraints(signup{})[0].Tag != "required,min=2" {
		t.Error("expected Constraints to return a copy")
	}
}

func TestAddConstraintRejects(t *testing.T) {
	tests := []struct {
		name   string
		target any
		field  string
		tag    string
		code   errors.ErrorCode
	}{
		{"non-struct target", 42, "X", "required", errors.ErrCodeInvalidType},
		{"nil target", nil, "X", "required", errors.ErrCodeInvalidType},
		{"unknown field", signup{}, "Missing", "required", errors.ErrCodeValidationFailed},
		{"unexported field", signup{}, "note", "required", errors.ErrCodeValidationFailed},
		{"empty tag", signup{}, "Name", "  ", errors.ErrCodeValidationFailed},
		{"unknown tag", signup{}, "Name", "no_such_rule", errors.ErrCodeValidationFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStorage()
			err := s.AddConstraint(tc.target, tc.field, tc.tag)
			if !errors.IsCode(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
			if s.HasConstraints(tc.target) {
				t.Error("expected nothing registered")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	s := NewStorage()
	mustAdd(t, s, "Name", "required,min=2")
	mustAdd(t, s, "Email", "required,email")
	mustAdd(t, s, "Age", "min=18")

	if err := s.Validate(signup{Name: "Ada", Email: "ada@example.com", Age: 36}); err != nil {
		t.Errorf("expected valid value, got %v", err)
	}

	err := s.Validate(&signup{Name: "A", Email: "nope", Age: 3})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeValidationFailed {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Fatalf("expected three field errors, got %#v", appErr.Details["fields"])
	}
	if fields[0].Field != "Name" || fields[0].Tag != "min" {
		t.Errorf("unexpected first failure %+v", fields[0])
	}
	if fields[1].Message != "must be a valid email address" {
		t.Errorf("unexpected email message %q", fields[1].Message)
	}
	if !strings.Contains(appErr.Message, "Age: must be at least 18") {
		t.Errorf("expected age failure in message, got %q", appErr.Message)
	}
}

type Base struct {
	ID string
}

type account struct {
	*Base
	Name string
}

func TestValidateFieldThroughNilEmbeddedPointer(t *testing.T) {
	s := NewStorage()
	if err := s.AddConstraint(account{}, "ID", "required"); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}
	if err := s.AddConstraint(account{}, "Name", "required"); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}

	err := s.Validate(account{Name: "x"})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeValidationFailed {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	if len(fields) != 1 || fields[0].Field != "ID" || fields[0].Tag != "required" {
		t.Errorf("expected only ID to fail, got %+v", fields)
	}

	if err := s.Validate(account{Base: &Base{ID: "42"}, Name: "x"}); err != nil {
		t.Errorf("expected valid value, got %v", err)
	}
}

func TestValidateUnregisteredTypePasses(t *testing.T) {
	s := NewStorage()
	type other struct{ X string }
	if err := s.Validate(other{}); err != nil {
		t.Errorf("expected no constraints to mean valid, got %v", err)
	}
}

func TestValidateRejectsNonStructs(t *testing.T) {
	s := NewStorage()
	if err := s.Validate(nil); !errors.IsCode(err, errors.ErrCodeValidationFailed) {
		t.Errorf("expected VALIDATION_FAILED for nil, got %v", err)
	}
	if err := s.Validate((*signup)(nil)); !errors.IsCode(err, errors.ErrCodeValidationFailed) {
		t.Errorf("expected VALIDATION_FAILED for nil pointer, got %v", err)
	}
	if err := s.Validate("text"); !errors.IsCode(err, errors.ErrCodeInvalidType) {
		t.Errorf("expected INVALID_TYPE for a string, got %v", err)
	}
}

func TestTargetsAndReset(t *testing.T) {
	s := NewStorage()
	type zeta struct{ Z string }
	mustAdd(t, s, "Name", "required")
	if err := s.AddConstraint(zeta{}, "Z", "required"); err != nil {
		t.Fatalf("AddConstraint failed: %v", err)
	}

	targets := s.Targets()
	if len(targets) != 2 || targets[0].String() > targets[1].String() {
		t.Errorf("expected two sorted targets, got %v", targets)
	}

	s.Reset()
	if len(s.Targets()) != 0 || s.HasConstraints(signup{}) {
		t.Error("expected Reset to clear everything")
	}
}

func mustAdd(t *testing.T, s *Storage, field, tag string) {
	t.Helper()
	if err := s.AddConstraint(signup{}, field, tag); err != nil {
		t.Fatalf("AddConstraint(%s, %s) failed: %v", field, tag, err)
	}
}
