package astvalidation

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
)

// MutationRootExists validates that the schema has a mutation root type
// when the document contains a mutation.
func MutationRootExists() Rule {
	return operationRootExists("MutationRootExists", ast.Mutation, operationreport.ErrMutationsNotConfigured)
}

// SubscriptionRootExists validates that the schema has a subscription root type
// when the document contains a subscription.
func SubscriptionRootExists() Rule {
	return operationRootExists("SubscriptionRootExists", ast.Subscription, operationreport.ErrSubscriptionsNotConfigured)
}

func operationRootExists(name string, operation ast.Operation, notConfigured func() operationreport.ExternalError) Rule {
	return NodeHandlerRule(name, func(ctx *Context) NodeHandlers {
		return NodeHandlers{
			astvisitor.NodeKindOperationDefinition: func(node, _ astvisitor.Node) astvisitor.Action {
				if node.OperationDefinition().Operation != operation {
					return astvisitor.Continue
				}
				if ctx.Warden.RootTypeForOperation(operation) != nil {
					return astvisitor.Continue
				}
				ctx.AddError(message(ctx, notConfigured(), node))
				return astvisitor.Skip
			},
		}
	})
}
