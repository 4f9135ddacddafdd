// Package irep holds the internal representation of a query document: a tree of
// resolved selections where fragments are inlined and every field knows its
// schema definition per possible object type.
package irep

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
)

type NodeKind int

const (
	NodeKindOperation NodeKind = iota + 1
	NodeKindFragment
	NodeKindField
)

// Document is the root of the internal representation.
type Document struct {
	// OperationDefinitions in document order
	OperationDefinitions []*Node
	// FragmentDefinitions by name, each resolved on its own type condition
	FragmentDefinitions map[string]*Node
}

// Operation returns the operation named name, nil if there is none.
// An empty name matches an anonymous operation.
func (d *Document) Operation(name string) *Node {
	for _, op := range d.OperationDefinitions {
		if op.Name == name {
			return op
		}
	}
	return nil
}

// Node is a resolved operation, fragment or field.
type Node struct {
	Kind NodeKind
	// Name is the operation or fragment name, for fields the response key
	Name string
	// FieldName is the schema field name, differs from Name for aliased fields
	FieldName string
	// OperationType is set for operations only
	OperationType ast.Operation
	// ASTNodes are the AST nodes merged into this node, in document order
	ASTNodes []astvisitor.Node
	// OwnerType is the object type this field was resolved on
	OwnerType *ast.Definition
	// Definition is the field definition on OwnerType
	Definition *ast.FieldDefinition
	// ReturnType is the named return type of a field, the root type of an operation,
	// the type condition of a fragment. nil if unknown to the schema.
	ReturnType *ast.Definition
	Parent     *Node
	// TypedChildren maps each possible object type of ReturnType to the selections
	// made on it, in selection order.
	TypedChildren map[string][]*Node
	// Types lists the keys of TypedChildren in schema order
	Types []string

	scoped []scopedSelection
	via    map[string]struct{}
}

// Children returns the children selected on typeName.
func (n *Node) Children(typeName string) []*Node {
	return n.TypedChildren[typeName]
}

// Child returns the first child with response key name selected on typeName.
// Fields sharing a response key are kept apart when they select different fields
// or pass different arguments.
func (n *Node) Child(typeName, name string) *Node {
	for _, child := range n.TypedChildren[typeName] {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Fields returns the AST fields merged into n.
func (n *Node) Fields() []*ast.Field {
	fields := make([]*ast.Field, 0, len(n.ASTNodes))
	for _, node := range n.ASTNodes {
		if field := node.Field(); field != nil {
			fields = append(fields, field)
		}
	}
	return fields
}

// Path returns the path of n as the walker names it: the operation or fragment
// followed by the response keys down to n.
func (n *Node) Path() ast.Path {
	var reversed []string
	for node := n; node != nil; node = node.Parent {
		if node.Kind == NodeKindField {
			reversed = append(reversed, node.Name)
			continue
		}
		if len(node.ASTNodes) != 0 {
			reversed = append(reversed, astvisitor.PathSegment(node.ASTNodes[0]))
		}
	}
	path := make(ast.Path, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, ast.PathName(reversed[i]))
	}
	return path
}

type typeSet map[string]struct{}

func (s typeSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s typeSet) intersect(other typeSet) typeSet {
	out := make(typeSet, len(s))
	for name := range s {
		if other.has(name) {
			out[name] = struct{}{}
		}
	}
	return out
}

// scopedSelection is a field or fragment spread selected while the possible
// object types were narrowed to types.
type scopedSelection struct {
	types  typeSet
	field  *Node
	spread string
}
