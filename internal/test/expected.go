// Package test carries the expectation helpers shared by the package tests.
package test

import (
	"errors"
	"fmt"
	"testing"
)

// ExpectSuccess tests v for a success condition suitable for its type:
//
//	bool  -> v == true
//	error -> v == nil
//
// A nil v succeeds.
func ExpectSuccess(t testing.TB, v any) bool {
	t.Helper()
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		if !v {
			t.Errorf("expected success (bool)")
			return false
		}
	case error:
		t.Errorf("expected success (error: %v)", v)
		return false
	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
		return false
	}
	return true
}

// ExpectFailure tests v for a failure condition suitable for its type:
//
//	bool  -> v == false
//	error -> v != nil
//
// A nil v fails.
func ExpectFailure(t testing.TB, v any) bool {
	t.Helper()
	switch v := v.(type) {
	case nil:
		t.Errorf("expected failure (nil)")
		return false
	case bool:
		if v {
			t.Errorf("expected failure (bool)")
			return false
		}
	case error:
	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
		return false
	}
	return true
}

// ExpectError fails unless err matches target in its chain.
func ExpectError(t testing.TB, err, target error) bool {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("expected error %v (got %v)", target, err)
		return false
	}
	return true
}

// ExpectEquality compares value with the expected value.
func ExpectEquality[T comparable](t testing.TB, value, expected T) bool {
	t.Helper()
	if value != expected {
		t.Errorf("equality test of type %T failed (%s - wanted %s)", value, format(value), format(expected))
		return false
	}
	return true
}

func format(v any) string {
	switch v := v.(type) {
	case uint8, uint16, uint32, uint64, uintptr:
		return fmt.Sprintf("%#x", v)
	}
	return fmt.Sprintf("%v", v)
}
