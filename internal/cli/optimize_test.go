package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestQuietWriter(t *testing.T) {
	// The interface value must be untyped nil, not a nil *os.File, or
	// the formatters' nil checks never fire
	if w := quietWriter(true); w != nil {
		t.Errorf("quietWriter(true) = %v, want nil interface", w)
	}
	if w := quietWriter(false); w == nil {
		t.Error("quietWriter(false) = nil, want stdout")
	}
}

func TestExitErrorUnwrapping(t *testing.T) {
	err := fmt.Errorf("running batch: %w", &ExitError{Code: 1})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatal("errors.As failed to recover ExitError through wrapping")
	}
	if exitErr.Code != 1 {
		t.Errorf("Code = %d, want 1", exitErr.Code)
	}
	if exitErr.Error() != "exit status 1" {
		t.Errorf("Error() = %q, want exit status 1", exitErr.Error())
	}
}
