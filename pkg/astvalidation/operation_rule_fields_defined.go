package astvalidation

import (
	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
)

// FieldsAreDefinedOnType validates that every selected field is visible on its enclosing type.
// Selections on unknown or leaf types are left to the rules reporting those.
func FieldsAreDefinedOnType() Rule {
	return NodeHandlerRule("FieldsAreDefinedOnType", func(ctx *Context) NodeHandlers {
		visitor := fieldDefinedVisitor{Context: ctx}
		return NodeHandlers{
			astvisitor.NodeKindField: visitor.enterField,
		}
	})
}

type fieldDefinedVisitor struct {
	*Context
}

func (f *fieldDefinedVisitor) enterField(node, _ astvisitor.Node) astvisitor.Action {
	enclosing := f.walker.EnclosingTypeDefinition()
	if enclosing == nil || !enclosing.IsCompositeType() || f.walker.FieldDefinition() != nil {
		return astvisitor.Continue
	}
	f.AddError(message(f.Context, operationreport.ErrFieldUndefinedOnType(node.Field().Name, enclosing.Name), node))
	return astvisitor.Skip
}
