// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// maxPanicFrames bounds the stack captured when recovering a panic.
const maxPanicFrames = 64

// FrameError carries a one-line summary of where a failure happened: the last
// relevant frame's file, line and function plus the failure kind and message.
type FrameError struct {
	File     string
	Line     int
	Kind     string
	Message  string
	Function string
	Cause    error
}

// NewFrameError wraps cause with the location of its caller.
func NewFrameError(kind string, cause error) *FrameError {
	fe := &FrameError{File: "?", Kind: kind, Function: "?", Cause: cause}
	if cause != nil {
		fe.Message = cause.Error()
	}
	pcs := make([]uintptr, 1)
	if runtime.Callers(2, pcs) == 1 {
		f, _ := runtime.CallersFrames(pcs).Next()
		fe.File, fe.Line, fe.Function = f.File, f.Line, shortFuncName(f.Function)
	}
	return fe
}

// Error returns the frame summary.
func (e *FrameError) Error() string {
	return e.Summary()
}

// Unwrap returns the underlying cause.
func (e *FrameError) Unwrap() error {
	return e.Cause
}

// Summary formats the frame as "<file>:<line>: <kind>: <message> (in <function>)".
func (e *FrameError) Summary() string {
	return fmt.Sprintf("%s:%d: %s: %s (in %s)", e.File, e.Line, e.Kind, e.Message, e.Function)
}

// Summarize returns the frame summary for any error. Errors that carry a
// FrameError in their chain report it; others get the error's type name as
// the kind and an unknown location.
func Summarize(err error) *FrameError {
	if err == nil {
		return nil
	}
	var fe *FrameError
	if errors.As(err, &fe) {
		if fe.Message == "" {
			// Keep the outer context when the frame itself carries no text.
			cp := *fe
			cp.Message = err.Error()
			return &cp
		}
		return fe
	}
	return &FrameError{
		File:     "?",
		Kind:     errorKind(err),
		Message:  err.Error(),
		Function: "?",
		Cause:    err,
	}
}

// panicError converts a recovered panic value into a FrameError located at
// the panic site. It must be called from the deferred function that recovered.
func panicError(v any) *FrameError {
	fe := &FrameError{File: "?", Kind: "panic", Function: "?", Message: fmt.Sprint(v)}
	if err, ok := v.(error); ok {
		fe.Cause = err
		fe.Kind = errorKind(err)
		var re runtime.Error
		if errors.As(err, &re) {
			fe.Kind = "RuntimeError"
		}
	} else {
		fe.Cause = fmt.Errorf("panic: %v", v)
	}

	pcs := make([]uintptr, maxPanicFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	sawPanic := false
	for {
		f, more := frames.Next()
		switch {
		case f.Function == "runtime.gopanic":
			sawPanic = true
		case sawPanic && !strings.HasPrefix(f.Function, "runtime."):
			fe.File, fe.Line, fe.Function = f.File, f.Line, shortFuncName(f.Function)
			return fe
		}
		if !more {
			return fe
		}
	}
}

// protect runs fn and turns a panic into an error.
func protect[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return fn()
}

func errorKind(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.PkgPath() {
	case "errors", "fmt":
		return "Error"
	}
	if t.Name() == "" {
		return "Error"
	}
	return t.Name()
}

// shortFuncName trims the import path from a runtime function name:
// "example.com/x/pkg.(*T).Method" becomes "(*T).Method".
func shortFuncName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// RunProtected calls fn and turns a panic into a *FrameError located at the
// panic site.
func RunProtected(fn func() error) error {
	_, err := protect(func() (struct{}, error) { return struct{}{}, fn() })
	return err
}
