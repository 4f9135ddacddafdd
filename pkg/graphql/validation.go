package graphql

import (
	"github.com/wundergraph/gqlstatic/pkg/astvalidation"
	"github.com/wundergraph/gqlstatic/pkg/irep"
)

type ValidationResult struct {
	Valid  bool
	Errors Errors
	// IRep is the internal representation of a valid query
	IRep *irep.Document
}

func validationResultFrom(result astvalidation.Result) ValidationResult {
	if result.Valid() {
		return ValidationResult{
			Valid: true,
			IRep:  result.IRep,
		}
	}
	return ValidationResult{
		Valid:  false,
		Errors: OperationValidationErrorsFrom(result.Errors),
	}
}
