// Package astvisitor walks a GraphQL query document once and dispatches every node
// to the callbacks registered for its kind.
package astvisitor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

var (
	ErrDocumentMustNotBeNil = errors.New("document must not be nil")
	ErrWalkerSealed         = errors.New("walker already walked, callbacks can no longer be registered")
	ErrCallbackMustNotBeNil = errors.New("callback must not be nil")
)

// Action is returned by enter callbacks to control the descent into a node.
type Action int

const (
	// Continue walks the children of the current node.
	Continue Action = iota
	// Skip prevents the walker from visiting any descendant of the current node,
	// for every registered callback. Leave callbacks of the node itself still run.
	Skip
)

// EnterFunc gets called when the walker enters a node of the kind it is registered for.
// parent is the closest enclosing node, InvalidNode for the document itself.
type EnterFunc func(node, parent Node) Action

// LeaveFunc gets called when the walker leaves a node of the kind it is registered for.
type LeaveFunc func(node, parent Node)

// Definitions resolves schema types while walking so that callbacks can ask for
// the type of the current node. A *warden.Warden satisfies it.
type Definitions interface {
	GetType(name string) *ast.Definition
	GetField(owner *ast.Definition, name string) *ast.FieldDefinition
	RootTypeForOperation(operation ast.Operation) *ast.Definition
}

type frame struct {
	node      Node
	typeDef   *ast.Definition
	fieldDef  *ast.FieldDefinition
	enclosing *ast.Definition
}

// Walker orchestrates the process of walking an AST and calling all registered callbacks.
// Always use NewWalker to instantiate a new Walker. A Walker walks exactly one document.
type Walker struct {
	// Ancestors is the slice of Nodes to the current Node in a callback
	// don't keep a reference to this slice, always copy it if you want to work with it after the callback returned
	Ancestors []Node
	// Path names the current Node and its ancestors, e.g. ["query Hero", "hero", "... on Droid", "name"]
	// don't keep a reference to this slice, always copy it if you want to work with it after the callback returned
	Path ast.Path
	// Depth is the depth of the current Node, the document has depth 1
	Depth int

	document        *ast.QueryDocument
	definitions     Definitions
	enter           [NodeKindFragmentDefinition + 1][]EnterFunc
	leave           [NodeKindFragmentDefinition + 1][]LeaveFunc
	typeDefinitions []*ast.Definition
	current         frame
	sealed          bool
}

// NewWalker returns a fully initialized Walker
func NewWalker(ancestorSize int) *Walker {
	return &Walker{
		Ancestors:       make([]Node, 0, ancestorSize),
		Path:            make(ast.Path, 0, ancestorSize),
		typeDefinitions: make([]*ast.Definition, 0, ancestorSize),
	}
}

// RegisterEnter appends fn to the enter callbacks of kind.
// Callbacks run in registration order.
func (w *Walker) RegisterEnter(kind NodeKind, fn EnterFunc) error {
	if err := w.checkRegistration(kind, fn == nil); err != nil {
		return err
	}
	w.enter[kind] = append(w.enter[kind], fn)
	return nil
}

// RegisterLeave appends fn to the leave callbacks of kind.
// Callbacks run in registration order.
func (w *Walker) RegisterLeave(kind NodeKind, fn LeaveFunc) error {
	if err := w.checkRegistration(kind, fn == nil); err != nil {
		return err
	}
	w.leave[kind] = append(w.leave[kind], fn)
	return nil
}

func (w *Walker) checkRegistration(kind NodeKind, nilCallback bool) error {
	if w.sealed {
		return ErrWalkerSealed
	}
	if !kind.Valid() {
		return fmt.Errorf("astvisitor: cannot register callback for %s", kind)
	}
	if nilCallback {
		return ErrCallbackMustNotBeNil
	}
	return nil
}

// Callbacks returns the number of enter and leave callbacks registered for kind.
func (w *Walker) Callbacks(kind NodeKind) (enter, leave int) {
	if !kind.Valid() {
		return 0, 0
	}
	return len(w.enter[kind]), len(w.leave[kind])
}

// Walk walks document depth first. definitions may be nil, type information is
// unavailable to callbacks in that case.
func (w *Walker) Walk(document *ast.QueryDocument, definitions Definitions) error {
	if document == nil {
		return ErrDocumentMustNotBeNil
	}
	if w.sealed {
		return ErrWalkerSealed
	}
	w.sealed = true
	w.document = document
	w.definitions = definitions
	w.Ancestors = w.Ancestors[:0]
	w.Path = w.Path[:0]
	w.typeDefinitions = w.typeDefinitions[:0]
	w.Depth = 0

	w.walkNode(DocumentNode(document), InvalidNode, frame{}, func(self Node) {
		for _, definition := range definitionsInOrder(document) {
			switch definition.Kind {
			case NodeKindOperationDefinition:
				w.walkOperationDefinition(definition.OperationDefinition(), self)
			case NodeKindFragmentDefinition:
				w.walkFragmentDefinition(definition.FragmentDefinition(), self)
			}
		}
	})
	return nil
}

// Sealed reports whether Walk has been called.
func (w *Walker) Sealed() bool {
	return w.sealed
}

// Document returns the document being walked.
func (w *Walker) Document() *ast.QueryDocument {
	return w.document
}

// EnclosingTypeDefinition is the type of the selection set containing the current node,
// e.g. the object type owning the current field. nil if unknown.
func (w *Walker) EnclosingTypeDefinition() *ast.Definition {
	return w.current.enclosing
}

// TypeDefinition is the type the current node selects on: the root type of an operation,
// the named return type of a field, the type condition of a fragment. nil if unknown.
func (w *Walker) TypeDefinition() *ast.Definition {
	return w.current.typeDef
}

// FieldDefinition is the schema definition of the current field, nil for other nodes
// and for fields unknown to the schema.
func (w *Walker) FieldDefinition() *ast.FieldDefinition {
	return w.current.fieldDef
}

// Ancestor returns the closest ancestor of the current node.
func (w *Walker) Ancestor() Node {
	if len(w.Ancestors) == 0 {
		return InvalidNode
	}
	return w.Ancestors[len(w.Ancestors)-1]
}

func (w *Walker) enclosingType() *ast.Definition {
	if len(w.typeDefinitions) == 0 {
		return nil
	}
	return w.typeDefinitions[len(w.typeDefinitions)-1]
}

func (w *Walker) getType(name string) *ast.Definition {
	if w.definitions == nil || name == "" {
		return nil
	}
	return w.definitions.GetType(name)
}

func (w *Walker) walkNode(node, parent Node, f frame, children func(self Node)) {
	w.Depth++
	f.node = node
	w.current = f

	segment := PathSegment(node)
	if segment != "" {
		w.Path = append(w.Path, ast.PathName(segment))
	}

	skip := false
	for _, fn := range w.enter[node.Kind] {
		if fn(node, parent) == Skip {
			skip = true
		}
	}

	if !skip && children != nil {
		w.Ancestors = append(w.Ancestors, node)
		w.typeDefinitions = append(w.typeDefinitions, f.typeDef)
		children(node)
		w.typeDefinitions = w.typeDefinitions[:len(w.typeDefinitions)-1]
		w.Ancestors = w.Ancestors[:len(w.Ancestors)-1]
	}

	w.current = f
	for _, fn := range w.leave[node.Kind] {
		fn(node, parent)
	}

	if segment != "" {
		w.Path = w.Path[:len(w.Path)-1]
	}
	w.Depth--
}

func (w *Walker) walkOperationDefinition(op *ast.OperationDefinition, parent Node) {
	var root *ast.Definition
	if w.definitions != nil {
		root = w.definitions.RootTypeForOperation(op.Operation)
	}
	w.walkNode(OperationDefinitionNode(op), parent, frame{typeDef: root}, func(self Node) {
		for _, variable := range op.VariableDefinitions {
			w.walkNode(VariableDefinitionNode(variable), self, frame{enclosing: root}, nil)
		}
		w.walkDirectives(op.Directives, self)
		w.walkSelectionSet(op.SelectionSet, self)
	})
}

func (w *Walker) walkFragmentDefinition(fragment *ast.FragmentDefinition, parent Node) {
	typeDef := w.getType(fragment.TypeCondition)
	w.walkNode(FragmentDefinitionNode(fragment), parent, frame{typeDef: typeDef}, func(self Node) {
		w.walkDirectives(fragment.Directives, self)
		w.walkSelectionSet(fragment.SelectionSet, self)
	})
}

func (w *Walker) walkDirectives(directives ast.DirectiveList, parent Node) {
	enclosing := w.enclosingType()
	for _, directive := range directives {
		w.walkNode(DirectiveNode(directive), parent, frame{enclosing: enclosing}, nil)
	}
}

func (w *Walker) walkSelectionSet(set ast.SelectionSet, parent Node) {
	for _, selection := range set {
		switch s := selection.(type) {
		case *ast.Field:
			w.walkField(s, parent)
		case *ast.FragmentSpread:
			w.walkFragmentSpread(s, parent)
		case *ast.InlineFragment:
			w.walkInlineFragment(s, parent)
		}
	}
}

func (w *Walker) walkField(field *ast.Field, parent Node) {
	enclosing := w.enclosingType()
	var (
		fieldDef *ast.FieldDefinition
		typeDef  *ast.Definition
	)
	if w.definitions != nil {
		fieldDef = w.definitions.GetField(enclosing, field.Name)
	}
	if fieldDef != nil && fieldDef.Type != nil {
		typeDef = w.getType(fieldDef.Type.Name())
	}
	f := frame{typeDef: typeDef, fieldDef: fieldDef, enclosing: enclosing}
	w.walkNode(FieldNode(field), parent, f, func(self Node) {
		w.walkDirectives(field.Directives, self)
		w.walkSelectionSet(field.SelectionSet, self)
	})
}

func (w *Walker) walkFragmentSpread(spread *ast.FragmentSpread, parent Node) {
	enclosing := w.enclosingType()
	var typeDef *ast.Definition
	if fragment := w.document.Fragments.ForName(spread.Name); fragment != nil {
		typeDef = w.getType(fragment.TypeCondition)
	}
	w.walkNode(FragmentSpreadNode(spread), parent, frame{typeDef: typeDef, enclosing: enclosing}, func(self Node) {
		w.walkDirectives(spread.Directives, self)
	})
}

func (w *Walker) walkInlineFragment(fragment *ast.InlineFragment, parent Node) {
	enclosing := w.enclosingType()
	typeDef := enclosing
	if fragment.TypeCondition != "" {
		typeDef = w.getType(fragment.TypeCondition)
	}
	w.walkNode(InlineFragmentNode(fragment), parent, frame{typeDef: typeDef, enclosing: enclosing}, func(self Node) {
		w.walkDirectives(fragment.Directives, self)
		w.walkSelectionSet(fragment.SelectionSet, self)
	})
}

// definitionsInOrder returns operations and fragments in source order.
// Definitions without a position keep their relative order after positioned ones.
func definitionsInOrder(doc *ast.QueryDocument) []Node {
	nodes := make([]Node, 0, len(doc.Operations)+len(doc.Fragments))
	for _, op := range doc.Operations {
		nodes = append(nodes, OperationDefinitionNode(op))
	}
	for _, fragment := range doc.Fragments {
		nodes = append(nodes, FragmentDefinitionNode(fragment))
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		left, right := nodes[i].Position(), nodes[j].Position()
		if left == nil || right == nil {
			return left != nil
		}
		return left.Start < right.Start
	})
	return nodes
}
