package astvisitor

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// NodeKind identifies the kind of AST node a callback is registered for.
type NodeKind int

const (
	NodeKindUnknown NodeKind = iota
	NodeKindDocument
	NodeKindOperationDefinition
	NodeKindVariableDefinition
	NodeKindDirective
	NodeKindField
	NodeKindFragmentSpread
	NodeKindInlineFragment
	NodeKindFragmentDefinition
)

// NodeKinds lists every walkable kind in a fixed order.
// Registration code iterates this slice instead of ranging over maps so that
// callback order never depends on map iteration.
var NodeKinds = []NodeKind{
	NodeKindDocument,
	NodeKindOperationDefinition,
	NodeKindVariableDefinition,
	NodeKindDirective,
	NodeKindField,
	NodeKindFragmentSpread,
	NodeKindInlineFragment,
	NodeKindFragmentDefinition,
}

func (k NodeKind) String() string {
	switch k {
	case NodeKindDocument:
		return "Document"
	case NodeKindOperationDefinition:
		return "OperationDefinition"
	case NodeKindVariableDefinition:
		return "VariableDefinition"
	case NodeKindDirective:
		return "Directive"
	case NodeKindField:
		return "Field"
	case NodeKindFragmentSpread:
		return "FragmentSpread"
	case NodeKindInlineFragment:
		return "InlineFragment"
	case NodeKindFragmentDefinition:
		return "FragmentDefinition"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Valid reports whether k is a kind the Walker dispatches.
func (k NodeKind) Valid() bool {
	return k > NodeKindUnknown && k <= NodeKindFragmentDefinition
}

// Node is a typed reference to a node of the gqlparser AST.
// The zero value is InvalidNode.
type Node struct {
	Kind NodeKind
	ref  interface{}
}

// InvalidNode is passed as parent to callbacks of top level nodes.
var InvalidNode = Node{}

func DocumentNode(doc *ast.QueryDocument) Node {
	return Node{Kind: NodeKindDocument, ref: doc}
}

func OperationDefinitionNode(op *ast.OperationDefinition) Node {
	return Node{Kind: NodeKindOperationDefinition, ref: op}
}

func VariableDefinitionNode(variable *ast.VariableDefinition) Node {
	return Node{Kind: NodeKindVariableDefinition, ref: variable}
}

func DirectiveNode(directive *ast.Directive) Node {
	return Node{Kind: NodeKindDirective, ref: directive}
}

func FieldNode(field *ast.Field) Node {
	return Node{Kind: NodeKindField, ref: field}
}

func FragmentSpreadNode(spread *ast.FragmentSpread) Node {
	return Node{Kind: NodeKindFragmentSpread, ref: spread}
}

func InlineFragmentNode(fragment *ast.InlineFragment) Node {
	return Node{Kind: NodeKindInlineFragment, ref: fragment}
}

func FragmentDefinitionNode(fragment *ast.FragmentDefinition) Node {
	return Node{Kind: NodeKindFragmentDefinition, ref: fragment}
}

func (n Node) IsValid() bool {
	return n.Kind != NodeKindUnknown && n.ref != nil
}

func (n Node) Document() *ast.QueryDocument {
	doc, _ := n.ref.(*ast.QueryDocument)
	return doc
}

func (n Node) OperationDefinition() *ast.OperationDefinition {
	op, _ := n.ref.(*ast.OperationDefinition)
	return op
}

func (n Node) VariableDefinition() *ast.VariableDefinition {
	variable, _ := n.ref.(*ast.VariableDefinition)
	return variable
}

func (n Node) Directive() *ast.Directive {
	directive, _ := n.ref.(*ast.Directive)
	return directive
}

func (n Node) Field() *ast.Field {
	field, _ := n.ref.(*ast.Field)
	return field
}

func (n Node) FragmentSpread() *ast.FragmentSpread {
	spread, _ := n.ref.(*ast.FragmentSpread)
	return spread
}

func (n Node) InlineFragment() *ast.InlineFragment {
	fragment, _ := n.ref.(*ast.InlineFragment)
	return fragment
}

func (n Node) FragmentDefinition() *ast.FragmentDefinition {
	fragment, _ := n.ref.(*ast.FragmentDefinition)
	return fragment
}

// Position returns the source position of the node, nil if unknown.
func (n Node) Position() *ast.Position {
	switch n.Kind {
	case NodeKindDocument:
		if doc := n.Document(); doc != nil {
			return doc.Position
		}
	case NodeKindOperationDefinition:
		if op := n.OperationDefinition(); op != nil {
			return op.Position
		}
	case NodeKindVariableDefinition:
		if variable := n.VariableDefinition(); variable != nil {
			return variable.Position
		}
	case NodeKindDirective:
		if directive := n.Directive(); directive != nil {
			return directive.Position
		}
	case NodeKindField:
		if field := n.Field(); field != nil {
			return field.Position
		}
	case NodeKindFragmentSpread:
		if spread := n.FragmentSpread(); spread != nil {
			return spread.Position
		}
	case NodeKindInlineFragment:
		if fragment := n.InlineFragment(); fragment != nil {
			return fragment.Position
		}
	case NodeKindFragmentDefinition:
		if fragment := n.FragmentDefinition(); fragment != nil {
			return fragment.Position
		}
	}
	return nil
}

// Name returns the name of named nodes and the response key of fields.
func (n Node) Name() string {
	switch n.Kind {
	case NodeKindOperationDefinition:
		return n.OperationDefinition().Name
	case NodeKindVariableDefinition:
		return n.VariableDefinition().Variable
	case NodeKindDirective:
		return n.Directive().Name
	case NodeKindField:
		return ResponseKey(n.Field())
	case NodeKindFragmentSpread:
		return n.FragmentSpread().Name
	case NodeKindFragmentDefinition:
		return n.FragmentDefinition().Name
	default:
		return ""
	}
}

// TypeCondition returns the type condition of fragment definitions and inline fragments.
func (n Node) TypeCondition() string {
	switch n.Kind {
	case NodeKindInlineFragment:
		return n.InlineFragment().TypeCondition
	case NodeKindFragmentDefinition:
		return n.FragmentDefinition().TypeCondition
	default:
		return ""
	}
}

func (n Node) String() string {
	if !n.IsValid() {
		return "InvalidNode"
	}
	if name := n.Name(); name != "" {
		return n.Kind.String() + " " + name
	}
	return n.Kind.String()
}

// ResponseKey is the alias of the field or its name if it has none.
func ResponseKey(field *ast.Field) string {
	if field.Alias != "" {
		return field.Alias
	}
	return field.Name
}

// PathSegment is how the node is named in a validation path.
func PathSegment(n Node) string {
	switch n.Kind {
	case NodeKindOperationDefinition:
		op := n.OperationDefinition()
		operation := string(op.Operation)
		if operation == "" {
			operation = string(ast.Query)
		}
		if op.Name == "" {
			return operation
		}
		return operation + " " + op.Name
	case NodeKindFragmentDefinition:
		return "fragment " + n.FragmentDefinition().Name
	case NodeKindField:
		return ResponseKey(n.Field())
	case NodeKindInlineFragment:
		if cond := n.InlineFragment().TypeCondition; cond != "" {
			return "... on " + cond
		}
		return "..."
	case NodeKindFragmentSpread:
		return "... " + n.FragmentSpread().Name
	default:
		return ""
	}
}
