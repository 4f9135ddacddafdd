package irep

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
)

// Schema resolves types for the rewrite. A *warden.Warden satisfies it.
type Schema interface {
	astvisitor.Definitions
	PossibleTypes(def *ast.Definition) []*ast.Definition
}

type scope struct {
	node  *Node
	types typeSet
}

// Rewrite builds the internal representation while a Walker walks the document.
// The representation does not depend on whether the document is valid: unknown
// types and fields are left out, cyclic fragment spreads are expanded once.
// A fragment spread several times below one selection contributes its fields once.
type Rewrite struct {
	schema   Schema
	walker   *astvisitor.Walker
	document *Document
	scopes   []scope
	resolved bool
}

// NewRewrite returns a Rewrite resolving types through schema.
func NewRewrite(schema Schema) *Rewrite {
	return &Rewrite{
		schema: schema,
		document: &Document{
			FragmentDefinitions: make(map[string]*Node),
		},
		scopes: make([]scope, 0, 16),
	}
}

// Register installs the rewrite callbacks on walker.
// Register it before any other callback so that it sees every node a rule may skip.
func (r *Rewrite) Register(walker *astvisitor.Walker) error {
	r.walker = walker
	callbacks := []struct {
		kind  astvisitor.NodeKind
		enter astvisitor.EnterFunc
		leave astvisitor.LeaveFunc
	}{
		{astvisitor.NodeKindOperationDefinition, r.enterOperationDefinition, r.popScope},
		{astvisitor.NodeKindFragmentDefinition, r.enterFragmentDefinition, r.popScope},
		{astvisitor.NodeKindInlineFragment, r.enterInlineFragment, r.popScope},
		{astvisitor.NodeKindField, r.enterField, r.popScope},
		{astvisitor.NodeKindFragmentSpread, r.enterFragmentSpread, nil},
	}
	for _, callback := range callbacks {
		if err := walker.RegisterEnter(callback.kind, callback.enter); err != nil {
			return err
		}
		if callback.leave == nil {
			continue
		}
		if err := walker.RegisterLeave(callback.kind, callback.leave); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rewrite) enterOperationDefinition(node, _ astvisitor.Node) astvisitor.Action {
	op := node.OperationDefinition()
	operationType := op.Operation
	if operationType == "" {
		operationType = ast.Query
	}
	root := &Node{
		Kind:          NodeKindOperation,
		Name:          op.Name,
		OperationType: operationType,
		ASTNodes:      []astvisitor.Node{node},
		ReturnType:    r.walker.TypeDefinition(),
	}
	r.document.OperationDefinitions = append(r.document.OperationDefinitions, root)
	r.pushScope(root, r.possibleTypes(root.ReturnType))
	return astvisitor.Continue
}

func (r *Rewrite) enterFragmentDefinition(node, _ astvisitor.Node) astvisitor.Action {
	fragment := node.FragmentDefinition()
	root := &Node{
		Kind:       NodeKindFragment,
		Name:       fragment.Name,
		ASTNodes:   []astvisitor.Node{node},
		ReturnType: r.walker.TypeDefinition(),
	}
	if _, exists := r.document.FragmentDefinitions[fragment.Name]; !exists {
		r.document.FragmentDefinitions[fragment.Name] = root
	}
	r.pushScope(root, r.possibleTypes(root.ReturnType))
	return astvisitor.Continue
}

func (r *Rewrite) enterInlineFragment(node, _ astvisitor.Node) astvisitor.Action {
	current := r.currentScope()
	types := current.types
	if node.TypeCondition() != "" {
		types = types.intersect(r.possibleTypes(r.walker.TypeDefinition()))
	}
	r.pushScope(current.node, types)
	return astvisitor.Continue
}

func (r *Rewrite) enterFragmentSpread(node, _ astvisitor.Node) astvisitor.Action {
	current := r.currentScope()
	current.node.scoped = append(current.node.scoped, scopedSelection{
		types:  current.types,
		spread: node.Name(),
	})
	return astvisitor.Continue
}

func (r *Rewrite) enterField(node, _ astvisitor.Node) astvisitor.Action {
	current := r.currentScope()
	field := node.Field()
	child := &Node{
		Kind:       NodeKindField,
		Name:       astvisitor.ResponseKey(field),
		FieldName:  field.Name,
		ASTNodes:   []astvisitor.Node{node},
		OwnerType:  r.walker.EnclosingTypeDefinition(),
		Definition: r.walker.FieldDefinition(),
		ReturnType: r.walker.TypeDefinition(),
		Parent:     current.node,
	}
	current.node.scoped = append(current.node.scoped, scopedSelection{
		types: current.types,
		field: child,
	})
	r.pushScope(child, r.possibleTypes(child.ReturnType))
	return astvisitor.Continue
}

func (r *Rewrite) pushScope(node *Node, types typeSet) {
	r.scopes = append(r.scopes, scope{node: node, types: types})
}

func (r *Rewrite) popScope(_, _ astvisitor.Node) {
	if len(r.scopes) != 0 {
		r.scopes = r.scopes[:len(r.scopes)-1]
	}
}

func (r *Rewrite) currentScope() scope {
	if len(r.scopes) == 0 {
		return scope{node: &Node{}, types: typeSet{}}
	}
	return r.scopes[len(r.scopes)-1]
}

func (r *Rewrite) possibleTypes(def *ast.Definition) typeSet {
	possible := r.schema.PossibleTypes(def)
	set := make(typeSet, len(possible))
	for _, objectType := range possible {
		set[objectType.Name] = struct{}{}
	}
	return set
}

// Document resolves and returns the internal representation.
// Call it after the walk completed, it is safe to call more than once.
func (r *Rewrite) Document() *Document {
	if r.resolved {
		return r.document
	}
	r.resolved = true
	for _, op := range r.document.OperationDefinitions {
		r.resolve(op)
	}
	names := make([]string, 0, len(r.document.FragmentDefinitions))
	for name := range r.document.FragmentDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.resolve(r.document.FragmentDefinitions[name])
	}
	return r.document
}

func (r *Rewrite) resolve(node *Node) {
	possible := r.schema.PossibleTypes(node.ReturnType)
	node.TypedChildren = make(map[string][]*Node, len(possible))
	node.Types = make([]string, 0, len(possible))
	for _, objectType := range possible {
		c := collector{
			rewrite:    r,
			parent:     node,
			objectType: objectType,
			expanded:   make(map[string]struct{}),
		}
		c.collect(node.scoped, node.via)
		node.Types = append(node.Types, objectType.Name)
		node.TypedChildren[objectType.Name] = c.children
	}
	for _, typeName := range node.Types {
		for _, child := range node.TypedChildren[typeName] {
			r.resolve(child)
		}
	}
}

// collector gathers the children of one node on one object type.
// Every fragment is expanded at most once per collector, fragments in via not at all.
type collector struct {
	rewrite    *Rewrite
	parent     *Node
	objectType *ast.Definition
	expanded   map[string]struct{}
	children   []*Node
}

func (c *collector) collect(selections []scopedSelection, via map[string]struct{}) {
	for _, selection := range selections {
		if !selection.types.has(c.objectType.Name) {
			continue
		}
		if selection.field != nil {
			c.merge(selection.field, via)
			continue
		}
		fragment, ok := c.rewrite.document.FragmentDefinitions[selection.spread]
		if !ok {
			continue
		}
		if _, cyclic := via[selection.spread]; cyclic {
			continue
		}
		if _, done := c.expanded[selection.spread]; done {
			continue
		}
		c.expanded[selection.spread] = struct{}{}
		nested := make(map[string]struct{}, len(via)+1)
		for name := range via {
			nested[name] = struct{}{}
		}
		nested[selection.spread] = struct{}{}
		c.collect(fragment.scoped, nested)
	}
}

// merge adds raw to the children. Fields with the same response key are merged
// when they select the same field with the same arguments, otherwise both are kept.
func (c *collector) merge(raw *Node, via map[string]struct{}) {
	for _, child := range c.children {
		if child.Name != raw.Name || child.FieldName != raw.FieldName || !sameArguments(child, raw) {
			continue
		}
		child.ASTNodes = append(child.ASTNodes, raw.ASTNodes...)
		child.scoped = append(child.scoped, raw.scoped...)
		child.via = union(child.via, via)
		return
	}

	definition := c.rewrite.schema.GetField(c.objectType, raw.FieldName)
	if definition == nil {
		return
	}
	var returnType *ast.Definition
	if definition.Type != nil {
		returnType = c.rewrite.schema.GetType(definition.Type.Name())
	}
	c.children = append(c.children, &Node{
		Kind:       NodeKindField,
		Name:       raw.Name,
		FieldName:  raw.FieldName,
		ASTNodes:   append([]astvisitor.Node(nil), raw.ASTNodes...),
		OwnerType:  c.objectType,
		Definition: definition,
		ReturnType: returnType,
		Parent:     c.parent,
		scoped:     append([]scopedSelection(nil), raw.scoped...),
		via:        via,
	})
}

func sameArguments(left, right *Node) bool {
	l, r := arguments(left), arguments(right)
	if len(l) != len(r) {
		return false
	}
	for _, argument := range l {
		other := r.ForName(argument.Name)
		if other == nil || argument.Value.String() != other.Value.String() {
			return false
		}
	}
	return true
}

func arguments(node *Node) ast.ArgumentList {
	if len(node.ASTNodes) == 0 {
		return nil
	}
	if field := node.ASTNodes[0].Field(); field != nil {
		return field.Arguments
	}
	return nil
}

func union(left, right map[string]struct{}) map[string]struct{} {
	if len(right) == 0 {
		return left
	}
	if len(left) == 0 {
		return right
	}
	out := make(map[string]struct{}, len(left)+len(right))
	for name := range left {
		out[name] = struct{}{}
	}
	for name := range right {
		out[name] = struct{}{}
	}
	return out
}
