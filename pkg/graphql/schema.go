package graphql

import (
	"io"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

var ErrNilSchema = errors.New("schema is nil")

// Schema is a loaded and validated schema. It is never modified once loaded
// and may be shared by concurrent validations.
type Schema struct {
	schema *ast.Schema
}

func NewSchemaFromReader(reader io.Reader) (*Schema, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "reading schema")
	}
	return NewSchemaFromString(string(content))
}

func NewSchemaFromString(schema string) (*Schema, error) {
	return NewSchemaFromSources(&ast.Source{Name: "schema", Input: schema})
}

// NewSchemaFromSources loads a schema split over several sources, e.g. one per file.
func NewSchemaFromSources(sources ...*ast.Source) (*Schema, error) {
	loaded, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, errors.Wrap(err, "loading schema")
	}
	return &Schema{schema: loaded}, nil
}

// AST returns the underlying schema.
func (s *Schema) AST() *ast.Schema {
	return s.schema
}

func (s *Schema) QueryTypeName() string {
	return rootTypeName(s.schema.Query)
}

func (s *Schema) MutationTypeName() string {
	return rootTypeName(s.schema.Mutation)
}

func (s *Schema) SubscriptionTypeName() string {
	return rootTypeName(s.schema.Subscription)
}

func rootTypeName(def *ast.Definition) string {
	if def == nil {
		return ""
	}
	return def.Name
}
