package operationreport

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// ExternalError is a validation message reported to the client.
// It is never modified after it has been added to a Report.
type ExternalError struct {
	Message    string                 `json:"message"`
	Locations  []Location             `json:"locations,omitempty"`
	Path       ast.Path               `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// Location is a line and column in the source document, both starting at 1.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (e ExternalError) Error() string {
	return e.Message
}

// At returns a copy of e located at position and path.
// The path is copied, callers may keep using theirs.
func (e ExternalError) At(position *ast.Position, path ast.Path) ExternalError {
	if position != nil {
		e.Locations = append(e.Locations[:len(e.Locations):len(e.Locations)], Location{Line: position.Line, Column: position.Column})
	}
	if len(path) != 0 {
		e.Path = append(ast.Path(nil), path...)
	}
	return e
}

// WithExtension returns a copy of e with the extension key set to value.
func (e ExternalError) WithExtension(key string, value interface{}) ExternalError {
	extensions := make(map[string]interface{}, len(e.Extensions)+1)
	for k, v := range e.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	e.Extensions = extensions
	return e
}

// GQLError converts e to the gqlparser error representation.
func (e ExternalError) GQLError() *gqlerror.Error {
	err := &gqlerror.Error{
		Message:    e.Message,
		Path:       e.Path,
		Extensions: e.Extensions,
	}
	for _, location := range e.Locations {
		err.Locations = append(err.Locations, gqlerror.Location{Line: location.Line, Column: location.Column})
	}
	return err
}

// GQLErrors converts a list of external errors to a gqlerror.List.
func GQLErrors(errs []ExternalError) gqlerror.List {
	if len(errs) == 0 {
		return nil
	}
	list := make(gqlerror.List, 0, len(errs))
	for i := range errs {
		list = append(list, errs[i].GQLError())
	}
	return list
}

func ErrFragmentConditionTypeUndefined(typeName string) (err ExternalError) {
	err.Message = fmt.Sprintf("No such type %s, so it can't be a fragment condition", typeName)
	return err
}

func ErrMutationsNotConfigured() (err ExternalError) {
	err.Message = "Schema is not configured for mutations"
	return err
}

func ErrSubscriptionsNotConfigured() (err ExternalError) {
	err.Message = "Schema is not configured for subscriptions"
	return err
}

func ErrFieldUndefinedOnType(fieldName, typeName string) (err ExternalError) {
	err.Message = fmt.Sprintf("Field '%s' doesn't exist on type '%s'", fieldName, typeName)
	return err
}

func ErrFragmentSpreadUndefined(fragmentName string) (err ExternalError) {
	err.Message = fmt.Sprintf("Fragment %s was used, but not defined", fragmentName)
	return err
}

func ErrSelectionsOnLeafField(fieldName, typeName string, kind ast.DefinitionKind, selections []string) (err ExternalError) {
	err.Message = fmt.Sprintf("Selections can't be made on %ss (field '%s' returns %s but has selections [%s])", strings.ToLower(string(kind)), fieldName, typeName, strings.Join(selections, ", "))
	return err
}

func ErrMissingSelectionsOnCompositeField(fieldName, typeName string) (err ExternalError) {
	err.Message = fmt.Sprintf("Field must have selections (field '%s' returns %s but has no selections. Did you mean '%s { ... }'?)", fieldName, typeName, fieldName)
	return err
}

func ErrDifferingFieldsOnSameType(responseKey, left, right string) (err ExternalError) {
	err.Message = fmt.Sprintf("Fields '%s' conflict because '%s' and '%s' are different fields. Use different aliases on the fields to fetch both if this was intentional.", responseKey, left, right)
	return err
}

func ErrDifferingArgumentsOnSameType(responseKey string) (err ExternalError) {
	err.Message = fmt.Sprintf("Fields '%s' conflict because they have differing arguments. Use different aliases on the fields to fetch both if this was intentional.", responseKey)
	return err
}

func ErrFieldsConflict(responseKey, left, right string) (err ExternalError) {
	err.Message = fmt.Sprintf("Fields '%s' conflict because they return conflicting types %s and %s. Use different aliases on the fields to fetch both if this was intentional.", responseKey, left, right)
	return err
}
