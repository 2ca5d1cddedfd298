package cli

import "fmt"

// ExitError carries a non-zero process exit code up to main. The batch
// summary was already printed by the formatter, so main exits with the
// code without printing the error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
