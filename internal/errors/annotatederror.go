// Package errors extends the standard library errors with slog annotations and source locations.
//
// Wrap an error at the point where context is known and log it once at the top with [SlogError]:
//
//	if err != nil {
//		return errors.Wrap(err, "load plan", slog.String("username", username))
//	}
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

var (
	New    = stderrors.New
	Is     = stderrors.Is
	As     = stderrors.As
	Unwrap = stderrors.Unwrap
	Join   = stderrors.Join
)

// NewSentinel creates an error meant to be compared with [Is]. It carries no stack information.
func NewSentinel(msg string) error {
	return stderrors.New(msg)
}

type annotatedError struct {
	err   error
	msg   string
	attrs []slog.Attr
	// source is the file:line where the error was annotated.
	source string
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// Wrap annotates err with msg and attrs. The caller's source location is recorded for logging.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	src := ""
	if _, file, line, ok := runtime.Caller(1); ok {
		src = shortSource(file, line)
	}
	return &annotatedError{
		err:    err,
		msg:    msg,
		attrs:  attrs,
		source: src,
	}
}

// DecoratePanic converts a recovered panic value into an error pointing at the panicking line.
// Call it from the deferred function that recovered.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	var msg string
	if err, ok := excp.(error); ok {
		msg = "panic: " + err.Error()
	} else {
		msg = fmt.Sprintf("panic: %v", excp)
	}

	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(2, pcs[:]) //nolint:mnd // skip runtime.Callers and DecoratePanic.
	frames := runtime.CallersFrames(pcs[:n])
	src := ""
	afterPanic := false
	for {
		frame, more := frames.Next()
		if src == "" {
			src = shortSource(frame.File, frame.Line)
		}
		if afterPanic {
			src = shortSource(frame.File, frame.Line)
			break
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			break
		}
	}

	return &annotatedError{err: nil, msg: msg, attrs: nil, source: src}
}

// SlogError renders err as a slog group containing the message, all annotations found in the
// error tree, and the source location of the innermost annotation.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	var (
		annotations []any
		src         string
	)
	walk(err, func(e *annotatedError) {
		for _, a := range e.attrs {
			annotations = append(annotations, a)
		}
		if e.source != "" {
			src = e.source
		}
	})

	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if src != "" {
		attrs = append(attrs, slog.String("source", src))
	}
	return slog.Group("error", attrs...)
}

// walk visits every annotated error in the tree, outermost first.
func walk(err error, visit func(*annotatedError)) {
	if err == nil {
		return
	}
	if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // walking the tree manually.
		visit(ae)
	}
	switch u := err.(type) { //nolint:errorlint // walking the tree manually.
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			walk(e, visit)
		}
	case interface{ Unwrap() error }:
		walk(u.Unwrap(), visit)
	}
}

func shortSource(file string, line int) string {
	if i := strings.LastIndex(file, "/"); i >= 0 {
		file = file[i+1:]
	}
	return file + ":" + strconv.Itoa(line)
}
