package generator

import (
	"fmt"

	"github.com/toyz/mediator/internal/models"
)

// Report returns the summary diagnostic for a run that produced count
// registrations
func Report(count int) models.Diagnostic {
	if count == 0 {
		return models.Diagnostic{
			Code:     models.CodeNoHandlers,
			Severity: models.SeverityWarning,
			Title:    "No handlers registered",
			Message:  "No handler implementations were found to be registered.",
		}
	}

	return models.Diagnostic{
		Code:     models.CodeHandlersRegistered,
		Severity: models.SeverityInfo,
		Title:    "Handlers registered",
		Message:  fmt.Sprintf("%d handler implementations were registered.", count),
	}
}

// ReportMissingContracts returns the diagnostic for a run aborted because the
// handler contracts are not visible to the package
func ReportMissingContracts(err error) models.Diagnostic {
	return models.Diagnostic{
		Code:     models.CodeMissingContracts,
		Severity: models.SeverityError,
		Title:    "Missing handler contracts",
		Message:  err.Error(),
	}
}
