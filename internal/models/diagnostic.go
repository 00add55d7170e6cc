package models

import "fmt"

// Severity of a generation diagnostic
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Diagnostic codes reported by the generation pipeline
const (
	CodeMissingContracts   = "MED001"
	CodeNoHandlers         = "MED002"
	CodeHandlersRegistered = "MED998"
)

// Diagnostic is the single summary record every generation run reports
type Diagnostic struct {
	Code     string
	Severity Severity
	Title    string
	Message  string
}

// String formats the diagnostic the way compilers print them
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}
