package models

// GenerationResult is the outcome of one pipeline run over a compilation
type GenerationResult struct {
	Records    []RegistrationRecord // registrations in emission order
	Source     []byte               // generated Go source, nil when the run was aborted
	Diagnostic Diagnostic           // exactly one summary diagnostic
}

// Aborted reports whether the run stopped before emitting any source
func (r *GenerationResult) Aborted() bool {
	return r.Diagnostic.Severity == SeverityError
}
