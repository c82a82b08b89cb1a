package loader

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wippyai/svgtidy-playground"
)

var upper = svgtidy.OptimizerFunc(func(_ context.Context, s string) (string, error) {
	return strings.ToUpper(s), nil
})

func TestTransform_Success(t *testing.T) {
	calls := 0
	Transform(context.Background(), Context{ResourcePath: "icons/a.svg"}, upper, "<svg/>", func(err error, result string) {
		calls++
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != "<SVG/>" {
			t.Errorf("result = %q", result)
		}
	})
	if calls != 1 {
		t.Errorf("callback called %d times, want 1", calls)
	}
}

func TestTransform_ForwardsErrorUnchanged(t *testing.T) {
	want := errors.New("unexpected end of file")
	failing := svgtidy.OptimizerFunc(func(context.Context, string) (string, error) {
		return "", want
	})

	var got error
	var result string
	Transform(context.Background(), Context{}, failing, "<svg", func(err error, r string) {
		got, result = err, r
	})
	if got != want {
		t.Errorf("error = %v, want the optimizer's error itself", got)
	}
	if result != "" {
		t.Errorf("result = %q, want empty on error", result)
	}
}

func TestTransformStream(t *testing.T) {
	var out bytes.Buffer
	if err := TransformStream(context.Background(), Context{}, upper, strings.NewReader("<svg/>"), &out); err != nil {
		t.Fatalf("TransformStream: %v", err)
	}
	if out.String() != "<SVG/>" {
		t.Errorf("output = %q", out.String())
	}

	failing := svgtidy.OptimizerFunc(func(context.Context, string) (string, error) {
		return "", svgtidy.ErrEmptyOutput
	})
	out.Reset()
	err := TransformStream(context.Background(), Context{}, failing, strings.NewReader("x"), &out)
	if !errors.Is(err, svgtidy.ErrEmptyOutput) {
		t.Errorf("err = %v", err)
	}
	if out.Len() != 0 {
		t.Error("nothing should be written on failure")
	}
}

func TestTransform_RecoversPanic(t *testing.T) {
	panicking := svgtidy.OptimizerFunc(func(context.Context, string) (string, error) {
		panic("index out of range")
	})

	calls := 0
	var got error
	Transform(context.Background(), Context{ResourcePath: "icons/b.svg"}, panicking, "<svg/>", func(err error, result string) {
		calls++
		got = err
		if result != "" {
			t.Errorf("result = %q, want empty", result)
		}
	})
	if calls != 1 {
		t.Fatalf("callback called %d times, want 1", calls)
	}
	if !errors.Is(got, ErrPanic) {
		t.Errorf("error = %v, want ErrPanic", got)
	}
	if !strings.Contains(got.Error(), "index out of range") {
		t.Errorf("panic value missing from %q", got.Error())
	}
}
