package astvalidation

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/irep"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
)

// FieldSelectionMerging validates that fields sharing a response key can be merged.
// On one object type they must select the same field with the same arguments,
// across the possible types of a selection they must return the same shape.
func FieldSelectionMerging() Rule {
	return FullTraversalRule("FieldSelectionMerging", func(ctx *Context) error {
		visitor := fieldSelectionMergingVisitor{
			Context:  ctx,
			reported: make(map[*ast.Field]struct{}),
		}
		return ctx.AddPostTraversalHandler(visitor.visitField)
	})
}

type fieldSelectionMergingVisitor struct {
	*Context
	reported map[*ast.Field]struct{}
}

func (f *fieldSelectionMergingVisitor) visitField(node *irep.Node) {
	parent := node.Parent
	fields := node.Fields()
	if parent == nil || node.OwnerType == nil || len(fields) == 0 {
		return
	}
	field := fields[0]
	if _, done := f.reported[field]; done {
		return
	}

	err, ok := f.conflict(parent, node)
	if !ok {
		return
	}
	f.reported[field] = struct{}{}
	f.AddError(irepMessage(err, node, field))
}

func (f *fieldSelectionMergingVisitor) conflict(parent, node *irep.Node) (operationreport.ExternalError, bool) {
	for _, sibling := range parent.Children(node.OwnerType.Name) {
		if sibling == node {
			break
		}
		if sibling.Name != node.Name {
			continue
		}
		if sibling.FieldName != node.FieldName {
			return operationreport.ErrDifferingFieldsOnSameType(node.Name, sibling.FieldName, node.FieldName), true
		}
		return operationreport.ErrDifferingArgumentsOnSameType(node.Name), true
	}

	for _, typeName := range parent.Types {
		if typeName == node.OwnerType.Name {
			break
		}
		for _, other := range parent.Children(typeName) {
			if other.Name != node.Name || sharesField(other, node) {
				continue
			}
			if !sameShape(other.Definition.Type, node.Definition.Type, other.ReturnType, node.ReturnType) {
				return operationreport.ErrFieldsConflict(node.Name, other.Definition.Type.String(), node.Definition.Type.String()), true
			}
		}
	}
	return operationreport.ExternalError{}, false
}

func sharesField(left, right *irep.Node) bool {
	for _, l := range left.Fields() {
		for _, r := range right.Fields() {
			if l == r {
				return true
			}
		}
	}
	return false
}

// sameShape compares list and non null wrappers, and the named types when one of them is a leaf.
func sameShape(left, right *ast.Type, leftType, rightType *ast.Definition) bool {
	for left != nil && right != nil {
		if left.NonNull != right.NonNull {
			return false
		}
		if (left.Elem == nil) != (right.Elem == nil) {
			return false
		}
		if left.Elem == nil {
			break
		}
		left, right = left.Elem, right.Elem
	}
	if left == nil || right == nil || leftType == nil || rightType == nil {
		return true
	}
	if isLeaf(leftType) || isLeaf(rightType) {
		return left.NamedType == right.NamedType
	}
	return true
}
