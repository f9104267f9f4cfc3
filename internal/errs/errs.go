package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Wrap adds context and keeps the chain for errors.Is/As.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// PanicError is a recovered panic plus the stack of the goroutine that raised it.
type PanicError struct {
	Op    string
	Value any
	stack []byte
}

// Recovered turns a recover() value into an error. Call it inside the deferred func so
// the captured stack still points at the panic site.
func Recovered(op string, value any) *PanicError {
	return &PanicError{Op: op, Value: value, stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Op, e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

func (e *PanicError) Stack() []byte { return e.stack }

type loggable struct{ err error }

// Loggable renders err as a slog group: message, kind, unwrap chain and panic stack when present.
// Usage: slog.Any("err", errs.Loggable(err))
func Loggable(err error) slog.LogValuer { return loggable{err: err} }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}

	attrs := []slog.Attr{slog.String("message", l.err.Error())}
	if kind := Kind(l.err); kind != nil {
		attrs = append(attrs, slog.String("kind", kind.Error()))
	}
	if chain := Chain(l.err); len(chain) > 1 {
		attrs = append(attrs, slog.Any("chain", chain))
	}

	var pe *PanicError
	if errors.As(l.err, &pe) {
		attrs = append(attrs, slog.String("stack", string(pe.Stack())))
	}
	return slog.GroupValue(attrs...)
}

// Chain lists err and everything it wraps, outermost first. For multi-%w errors only
// the last branch is followed.
func Chain(err error) []string {
	var out []string
	for e := err; e != nil; {
		out = append(out, e.Error())
		switch next := e.(type) {
		case interface{ Unwrap() []error }:
			parts := next.Unwrap()
			if len(parts) == 0 {
				return out
			}
			e = parts[len(parts)-1]
		default:
			e = errors.Unwrap(e)
		}
	}
	return out
}
