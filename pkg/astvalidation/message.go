package astvalidation

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
	"github.com/wundergraph/gqlstatic/pkg/irep"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
)

// message locates err at node and the current path of the traversal.
func message(ctx *Context, err operationreport.ExternalError, node astvisitor.Node) operationreport.ExternalError {
	return err.At(node.Position(), ctx.walker.Path)
}

// irepMessage locates err at field, using the path of its node in the internal representation.
func irepMessage(err operationreport.ExternalError, node *irep.Node, field *ast.Field) operationreport.ExternalError {
	return err.At(field.Position, node.Path())
}
