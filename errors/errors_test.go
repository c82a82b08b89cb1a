package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseABI,
				Kind:   KindOutOfBounds,
				Export: "optimize",
				Detail: "result pointer past end of memory",
			},
			contains: []string{"[abi]", "out_of_bounds", "in optimize", "result pointer"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLoad,
				Kind:  KindInvalidData,
			},
			contains: []string{"[load]", "invalid_data"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseABI,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[abi]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseOptimize,
		Kind:  KindTrap,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through the chain")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseOptimize,
		Kind:   KindGuest,
		Detail: "unexpected end of document",
	}

	if !err.Is(&Error{Phase: PhaseOptimize, Kind: KindGuest}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseABI, Kind: KindGuest}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseOptimize, Kind: KindTrap}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseOptimize, Kind: KindGuest}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseABI, KindOutOfBounds).
		Export("optimize").
		Value(uint32(42)).
		Cause(cause).
		Stderr("panicked at src/lib.rs").
		Detail("pointer %d past %d", 42, 16).
		Build()

	if err.Phase != PhaseABI {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseABI)
	}
	if err.Kind != KindOutOfBounds {
		t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
	}
	if err.Export != "optimize" {
		t.Errorf("Export = %q, want optimize", err.Export)
	}
	if err.Value != uint32(42) {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Stderr != "panicked at src/lib.rs" {
		t.Errorf("Stderr = %q", err.Stderr)
	}
	if err.Detail != "pointer 42 past 16" {
		t.Errorf("Detail = %q, want 'pointer 42 past 16'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8(PhaseABI, []byte{0xff, 0xfe})
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if !strings.Contains(err.Detail, "fffe") {
			t.Errorf("Detail = %q, should contain hex preview", err.Detail)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(1024, nil)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(65530, 10, 65536)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != uint32(65530) {
			t.Errorf("Value = %v, want 65530", err.Value)
		}
		if !strings.Contains(err.Detail, "65540") {
			t.Errorf("Detail = %q, should contain range end", err.Detail)
		}
	})

	t.Run("Trap", func(t *testing.T) {
		cause := errors.New("wasm error: unreachable")
		err := Trap("optimize", cause, "panic")
		if err.Phase != PhaseOptimize || err.Kind != KindTrap {
			t.Errorf("got [%s] %s", err.Phase, err.Kind)
		}
		if !errors.Is(err, cause) {
			t.Error("trap should wrap its cause")
		}
	})

	t.Run("Guest", func(t *testing.T) {
		err := Guest("optimize", "unexpected end of document")
		if err.Kind != KindGuest {
			t.Errorf("Kind = %v, want %v", err.Kind, KindGuest)
		}
		if !strings.Contains(err.Error(), "unexpected end of document") {
			t.Errorf("message lost: %q", err.Error())
		}
	})

	t.Run("Closed", func(t *testing.T) {
		err := Closed(PhaseOptimize, "optimizer")
		if err.Kind != KindClosed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindClosed)
		}
	})
}

func TestMissingImportsError(t *testing.T) {
	t.Run("single import", func(t *testing.T) {
		err := NewMissingImportsError([]string{"env#__wbindgen_throw"})
		if len(err.Imports) != 1 {
			t.Fatalf("expected 1 import, got %d", len(err.Imports))
		}
		if err.Imports[0].Module != "env" {
			t.Errorf("module = %q, want env", err.Imports[0].Module)
		}
		if err.Imports[0].Function != "__wbindgen_throw" {
			t.Errorf("function = %q, want __wbindgen_throw", err.Imports[0].Function)
		}
	})

	t.Run("multiple modules grouped", func(t *testing.T) {
		err := NewMissingImportsError([]string{
			"env#abort",
			"./svgtidy_bg.js#__wbg_log",
			"env#seed",
		})
		msg := err.Error()
		if !strings.Contains(msg, "3 host function(s)") {
			t.Errorf("error should contain count, got: %s", msg)
		}
		if !strings.Contains(msg, "env:") || !strings.Contains(msg, "./svgtidy_bg.js:") {
			t.Errorf("error should group by module, got: %s", msg)
		}
	})

	t.Run("empty imports", func(t *testing.T) {
		err := NewMissingImportsError([]string{})
		if !strings.Contains(err.Error(), "no imports specified") {
			t.Errorf("empty error should have specific message, got: %s", err.Error())
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		err := NewMissingImportsError([]string{"env#fn"})
		if !errors.Is(err, &MissingImportsError{}) {
			t.Error("errors.Is should match MissingImportsError")
		}
	})
}

func TestMissingExportsError(t *testing.T) {
	err := &MissingExportsError{Exports: []string{"memory", "optimize"}}
	msg := err.Error()
	if !strings.Contains(msg, "memory, optimize") {
		t.Errorf("error should list exports, got: %s", msg)
	}

	var target *MissingExportsError
	if !errors.As(error(err), &target) {
		t.Error("errors.As should find MissingExportsError")
	}
	if !errors.Is(err, &MissingExportsError{}) {
		t.Error("errors.Is should match MissingExportsError")
	}
}
