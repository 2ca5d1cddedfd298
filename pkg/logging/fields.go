package logging

// Standard field keys for optimization events, so log consumers can rely
// on consistent names across the engines and the orchestrator.
const (
	FieldBatch    = "batch_id"
	FieldInput    = "input"
	FieldOutput   = "output"
	FieldMethod   = "method"
	FieldStrategy = "strategy"
	FieldError    = "error"
)

// FileFields builds the fields attached to a per-file event.
func FileFields(input, output string) Fields {
	return Fields{FieldInput: input, FieldOutput: output}
}

// FailureFields builds the fields for a recoverable failure on input.
func FailureFields(input string, err error) Fields {
	return Fields{FieldInput: input, FieldError: err.Error()}
}
