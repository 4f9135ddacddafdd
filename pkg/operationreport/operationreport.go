// Package operationreport collects the outcome of validating a GraphQL operation.
package operationreport

import (
	"errors"
	"fmt"
	"strings"
)

// Report holds the errors of one validation call.
// External errors are validation messages for the caller, internal errors are
// programming errors. Both lists are append-only.
type Report struct {
	InternalErrors []error
	ExternalErrors []ExternalError
}

func (r Report) Error() string {
	var out strings.Builder
	for i := range r.InternalErrors {
		if i != 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(&out, "internal: %s", r.InternalErrors[i].Error())
	}
	if out.Len() > 0 && len(r.ExternalErrors) > 0 {
		out.WriteString("\n")
	}
	for i := range r.ExternalErrors {
		if i != 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(&out, "external: %s, locations: %+v, path: %v", r.ExternalErrors[i].Message, r.ExternalErrors[i].Locations, r.ExternalErrors[i].Path)
	}
	return out.String()
}

func (r *Report) HasErrors() bool {
	return len(r.InternalErrors) > 0 || len(r.ExternalErrors) > 0
}

func (r *Report) AddInternalError(err error) {
	r.InternalErrors = append(r.InternalErrors, err)
}

func (r *Report) AddExternalError(gqlError ExternalError) {
	r.ExternalErrors = append(r.ExternalErrors, gqlError)
}

// InternalError joins all internal errors, nil if there are none.
func (r *Report) InternalError() error {
	return errors.Join(r.InternalErrors...)
}
