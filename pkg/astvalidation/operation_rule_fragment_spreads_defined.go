package astvalidation

import (
	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
)

// FragmentSpreadsAreDefined validates that every fragment spread refers to a fragment
// defined in the document.
func FragmentSpreadsAreDefined() Rule {
	return NodeHandlerRule("FragmentSpreadsAreDefined", func(ctx *Context) NodeHandlers {
		return NodeHandlers{
			astvisitor.NodeKindFragmentSpread: func(node, _ astvisitor.Node) astvisitor.Action {
				name := node.Name()
				if ctx.Document().Fragments.ForName(name) != nil {
					return astvisitor.Continue
				}
				ctx.AddError(message(ctx, operationreport.ErrFragmentSpreadUndefined(name), node))
				return astvisitor.Skip
			},
		}
	})
}
