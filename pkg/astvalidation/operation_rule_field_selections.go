package astvalidation

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
	"github.com/wundergraph/gqlstatic/pkg/irep"
	"github.com/wundergraph/gqlstatic/pkg/operationreport"
)

// FieldsHaveAppropriateSelections validates that leaf fields have no selections and
// that fields of composite types have some.
// It runs on the internal representation, a field reached through several fragment
// spreads is reported once.
func FieldsHaveAppropriateSelections() Rule {
	return FullTraversalRule("FieldsHaveAppropriateSelections", func(ctx *Context) error {
		visitor := fieldSelectionsVisitor{
			Context:  ctx,
			reported: make(map[*ast.Field]struct{}),
		}
		return ctx.AddPostTraversalHandler(visitor.visitField)
	})
}

type fieldSelectionsVisitor struct {
	*Context
	reported map[*ast.Field]struct{}
}

func (f *fieldSelectionsVisitor) visitField(node *irep.Node) {
	returnType := node.ReturnType
	if returnType == nil {
		return
	}
	for _, field := range node.Fields() {
		if _, done := f.reported[field]; done {
			continue
		}
		f.reported[field] = struct{}{}

		switch {
		case isLeaf(returnType) && len(field.SelectionSet) != 0:
			err := operationreport.ErrSelectionsOnLeafField(field.Name, returnType.Name, returnType.Kind, selectionStrings(field.SelectionSet))
			f.AddError(irepMessage(err, node, field))
		case returnType.IsCompositeType() && len(field.SelectionSet) == 0:
			err := operationreport.ErrMissingSelectionsOnCompositeField(field.Name, returnType.Name)
			f.AddError(irepMessage(err, node, field))
		}
	}
}

func isLeaf(def *ast.Definition) bool {
	return def.Kind == ast.Scalar || def.Kind == ast.Enum
}

func selectionStrings(set ast.SelectionSet) []string {
	out := make([]string, 0, len(set))
	for _, selection := range set {
		switch s := selection.(type) {
		case *ast.Field:
			out = append(out, astvisitor.ResponseKey(s))
		case *ast.FragmentSpread:
			out = append(out, "..."+s.Name)
		case *ast.InlineFragment:
			if s.TypeCondition == "" {
				out = append(out, "...")
				continue
			}
			out = append(out, "... on "+s.TypeCondition)
		}
	}
	return out
}
