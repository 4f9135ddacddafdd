// Package warden restricts what a validation pass can see of a schema.
//
// A Warden wraps one schema and one Filter. Every lookup made through it hides the
// types and fields rejected by the filter, so rules never have to check visibility
// themselves. A Warden memoizes its lookups and is therefore bound to a single
// validation call; the wrapped schema is never modified and may be shared.
package warden

import (
	"github.com/vektah/gqlparser/v2/ast"
)

const (
	typenameFieldName = "__typename"
	schemaFieldName   = "__schema"
	typeFieldName     = "__type"
)

var (
	typenameField = &ast.FieldDefinition{
		Name: typenameFieldName,
		Type: ast.NonNullNamedType("String", nil),
	}
	schemaField = &ast.FieldDefinition{
		Name: schemaFieldName,
		Type: ast.NonNullNamedType("__Schema", nil),
	}
	typeField = &ast.FieldDefinition{
		Name: typeFieldName,
		Type: ast.NamedType("__Type", nil),
		Arguments: ast.ArgumentDefinitionList{
			{Name: "name", Type: ast.NonNullNamedType("String", nil)},
		},
	}
)

type fieldKey struct {
	owner string
	field string
}

// Warden answers type and field existence questions for one validation call.
// Always use New to instantiate a Warden.
type Warden struct {
	schema *ast.Schema
	filter Filter

	types         map[string]*ast.Definition
	fields        map[fieldKey]*ast.FieldDefinition
	visibleFields map[string][]*ast.FieldDefinition
	possibleTypes map[string][]*ast.Definition
}

// New returns a Warden for schema. A nil filter makes every member visible.
func New(schema *ast.Schema, filter Filter) *Warden {
	if filter == nil {
		filter = AllowAll
	}
	return &Warden{
		schema:        schema,
		filter:        filter,
		types:         make(map[string]*ast.Definition, 16),
		fields:        make(map[fieldKey]*ast.FieldDefinition, 32),
		visibleFields: make(map[string][]*ast.FieldDefinition, 16),
		possibleTypes: make(map[string][]*ast.Definition, 8),
	}
}

// Schema returns the wrapped schema.
func (w *Warden) Schema() *ast.Schema {
	return w.schema
}

// GetType returns the visible type named name or nil.
func (w *Warden) GetType(name string) *ast.Definition {
	if def, ok := w.types[name]; ok {
		return def
	}
	var def *ast.Definition
	if w.schema != nil {
		if candidate, ok := w.schema.Types[name]; ok && w.filter.VisibleType(candidate) {
			def = candidate
		}
	}
	w.types[name] = def
	return def
}

// RootTypeForOperation returns the visible root type for the operation kind or nil
// when the schema has none.
func (w *Warden) RootTypeForOperation(operation ast.Operation) *ast.Definition {
	if w.schema == nil {
		return nil
	}
	var root *ast.Definition
	switch operation {
	case ast.Query, "":
		root = w.schema.Query
	case ast.Mutation:
		root = w.schema.Mutation
	case ast.Subscription:
		root = w.schema.Subscription
	}
	if root == nil {
		return nil
	}
	return w.GetType(root.Name)
}

// GetField returns the visible field name on owner or nil.
// __typename resolves on every composite type, __schema and __type on the query root.
func (w *Warden) GetField(owner *ast.Definition, name string) *ast.FieldDefinition {
	if owner == nil {
		return nil
	}
	key := fieldKey{owner: owner.Name, field: name}
	if field, ok := w.fields[key]; ok {
		return field
	}
	field := w.lookupField(owner, name)
	w.fields[key] = field
	return field
}

func (w *Warden) lookupField(owner *ast.Definition, name string) *ast.FieldDefinition {
	if name == typenameFieldName {
		if owner.IsCompositeType() {
			return typenameField
		}
		return nil
	}
	if field := owner.Fields.ForName(name); field != nil {
		if !w.filter.VisibleField(owner, field) {
			return nil
		}
		if field.Type != nil && w.GetType(field.Type.Name()) == nil {
			return nil
		}
		return field
	}
	query := w.RootTypeForOperation(ast.Query)
	if query == nil || query.Name != owner.Name {
		return nil
	}
	switch name {
	case schemaFieldName:
		return schemaField
	case typeFieldName:
		return typeField
	}
	return nil
}

// Fields returns the visible fields of owner in schema order.
func (w *Warden) Fields(owner *ast.Definition) []*ast.FieldDefinition {
	if owner == nil {
		return nil
	}
	if fields, ok := w.visibleFields[owner.Name]; ok {
		return fields
	}
	fields := make([]*ast.FieldDefinition, 0, len(owner.Fields))
	for _, field := range owner.Fields {
		if w.GetField(owner, field.Name) != nil {
			fields = append(fields, field)
		}
	}
	w.visibleFields[owner.Name] = fields
	return fields
}

// PossibleTypes returns the visible object types def can be resolved to at runtime.
// An object type is its own only possible type, leaf and input types have none.
func (w *Warden) PossibleTypes(def *ast.Definition) []*ast.Definition {
	if def == nil {
		return nil
	}
	if possible, ok := w.possibleTypes[def.Name]; ok {
		return possible
	}
	var possible []*ast.Definition
	switch def.Kind {
	case ast.Object:
		if w.GetType(def.Name) != nil {
			possible = []*ast.Definition{def}
		}
	case ast.Interface, ast.Union:
		if w.schema != nil {
			for _, candidate := range w.schema.GetPossibleTypes(def) {
				if w.GetType(candidate.Name) != nil {
					possible = append(possible, candidate)
				}
			}
		}
	}
	w.possibleTypes[def.Name] = possible
	return possible
}
