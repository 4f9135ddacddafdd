package graphql

import (
	"fmt"
	"io"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/operationreport"
)

type Errors interface {
	error
	WriteResponse(writer io.Writer) (n int, err error)
	Count() int
}

type OperationValidationErrors []OperationValidationError

// OperationValidationErrorsFrom converts validation messages into their response shape.
func OperationValidationErrorsFrom(errs []operationreport.ExternalError) OperationValidationErrors {
	if len(errs) == 0 {
		return nil
	}
	out := make(OperationValidationErrors, 0, len(errs))
	for _, err := range errs {
		validationErr := OperationValidationError{
			Message: err.Message,
			Path:    errorPath(err.Path),
		}
		for _, location := range err.Locations {
			validationErr.Locations = append(validationErr.Locations, ErrorLocation{Line: location.Line, Column: location.Column})
		}
		out = append(out, validationErr)
	}
	return out
}

func (o OperationValidationErrors) Error() string {
	return fmt.Sprintf("operation contains %d error(s)", len(o))
}

func (o OperationValidationErrors) WriteResponse(writer io.Writer) (n int, err error) {
	response := Response{
		Errors: o,
	}

	responseBytes, err := response.Marshal()
	if err != nil {
		return 0, err
	}

	return writer.Write(responseBytes)
}

func (o OperationValidationErrors) Count() int {
	return len(o)
}

type OperationValidationError struct {
	Message   string          `json:"message"`
	Locations []ErrorLocation `json:"locations,omitempty"`
	Path      ErrorPath       `json:"path,omitempty"`
}

func (o OperationValidationError) Error() string {
	return o.Message
}

type ErrorPath []interface{}

func errorPath(path ast.Path) ErrorPath {
	if len(path) == 0 {
		return nil
	}
	out := make(ErrorPath, 0, len(path))
	for _, element := range path {
		switch e := element.(type) {
		case ast.PathName:
			out = append(out, string(e))
		case ast.PathIndex:
			out = append(out, int(e))
		}
	}
	return out
}

type ErrorLocation struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}
