// Package errors defines the structured error type used for failures that
// originate inside this module: unusable type descriptors, non-comparable
// keys, type mismatches in the generic helpers, metadata validation and
// configuration problems.
//
// Errors produced by user code (constructors and user containers) are not
// converted; callers can still compare them with == or errors.Is.
package errors
