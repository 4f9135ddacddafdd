package warden

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Filter decides which schema members are visible to a validation call.
// Implementations must be safe for concurrent use.
type Filter interface {
	VisibleType(def *ast.Definition) bool
	VisibleField(owner *ast.Definition, field *ast.FieldDefinition) bool
}

type allowAll struct{}

func (allowAll) VisibleType(*ast.Definition) bool                        { return true }
func (allowAll) VisibleField(*ast.Definition, *ast.FieldDefinition) bool { return true }

// AllowAll makes every type and field visible.
var AllowAll Filter = allowAll{}

// HiddenByDirective hides types and fields annotated with one of directives,
// e.g. HiddenByDirective("inaccessible").
func HiddenByDirective(directives ...string) Filter {
	names := make(map[string]struct{}, len(directives))
	for _, name := range directives {
		names[name] = struct{}{}
	}
	return directiveFilter{names: names}
}

type directiveFilter struct {
	names map[string]struct{}
}

func (f directiveFilter) hidden(directives ast.DirectiveList) bool {
	for _, directive := range directives {
		if _, ok := f.names[directive.Name]; ok {
			return true
		}
	}
	return false
}

func (f directiveFilter) VisibleType(def *ast.Definition) bool {
	return !f.hidden(def.Directives)
}

func (f directiveFilter) VisibleField(_ *ast.Definition, field *ast.FieldDefinition) bool {
	return !f.hidden(field.Directives)
}

// FilterFuncs adapts two functions to a Filter. A nil function allows everything.
type FilterFuncs struct {
	Type  func(def *ast.Definition) bool
	Field func(owner *ast.Definition, field *ast.FieldDefinition) bool
}

func (f FilterFuncs) VisibleType(def *ast.Definition) bool {
	if f.Type == nil {
		return true
	}
	return f.Type(def)
}

func (f FilterFuncs) VisibleField(owner *ast.Definition, field *ast.FieldDefinition) bool {
	if f.Field == nil {
		return true
	}
	return f.Field(owner, field)
}

// All makes a member visible only if every filter shows it.
func All(filters ...Filter) Filter {
	return allFilters(filters)
}

type allFilters []Filter

func (f allFilters) VisibleType(def *ast.Definition) bool {
	for _, filter := range f {
		if !filter.VisibleType(def) {
			return false
		}
	}
	return true
}

func (f allFilters) VisibleField(owner *ast.Definition, field *ast.FieldDefinition) bool {
	for _, filter := range f {
		if !filter.VisibleField(owner, field) {
			return false
		}
	}
	return true
}
