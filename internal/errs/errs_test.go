package errs

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestRecoveredKeepsErrorValue(t *testing.T) {
	var captured *PanicError
	func() {
		defer func() {
			captured = Recovered("search", recover())
		}()
		panic(io.ErrUnexpectedEOF)
	}()

	if !errors.Is(captured, io.ErrUnexpectedEOF) {
		t.Fatalf("errors.Is lost the panic value: %v", captured)
	}
	if captured.Error() != "search panicked: unexpected EOF" {
		t.Fatalf("Error() = %q", captured.Error())
	}
	if len(captured.Stack()) == 0 {
		t.Fatal("stack not captured")
	}
}

func TestChainFollowsDependencyCause(t *testing.T) {
	root := errors.New("connection refused")
	err := Wrap(Dependency(root, "search"), "discovery hop 1")

	chain := Chain(err)
	if len(chain) != 3 || chain[len(chain)-1] != "connection refused" {
		t.Fatalf("Chain() = %q", chain)
	}
}

func TestLoggableGroup(t *testing.T) {
	value := Loggable(Wrap(Recovered("opponent audit", "boom"), "audit opponent")).LogValue()
	if value.Kind() != slog.KindGroup {
		t.Fatalf("kind = %v", value.Kind())
	}

	keys := make([]string, 0, 4)
	for _, attr := range value.Group() {
		keys = append(keys, attr.Key)
	}
	if got := strings.Join(keys, ","); got != "message,chain,stack" {
		t.Fatalf("keys = %s", got)
	}

	if len(Loggable(nil).LogValue().Group()) != 0 {
		t.Fatal("nil error should log an empty group")
	}
}
