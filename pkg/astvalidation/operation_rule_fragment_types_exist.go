package astvalidation

import (
	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
)

// FragmentTypesExist validates that the type condition of every fragment definition
// and inline fragment names a type visible in the schema.
// The body of a fragment with an unknown type condition is not walked.
func FragmentTypesExist() Rule {
	return NodeHandlerRule("FragmentTypesExist", func(ctx *Context) NodeHandlers {
		visitor := fragmentTypesExistVisitor{Context: ctx}
		return NodeHandlers{
			astvisitor.NodeKindFragmentDefinition: visitor.enterFragment,
			astvisitor.NodeKindInlineFragment:     visitor.enterFragment,
		}
	})
}

type fragmentTypesExistVisitor struct {
	*Context
}

func (f *fragmentTypesExistVisitor) enterFragment(node, _ astvisitor.Node) astvisitor.Action {
	typeCondition := node.TypeCondition()
	if typeCondition == "" || f.Warden.GetType(typeCondition) != nil {
		return astvisitor.Continue
	}
	f.AddError(message(f.Context, operationreport.ErrFragmentConditionTypeUndefined(typeCondition), node))
	return astvisitor.Skip
}
