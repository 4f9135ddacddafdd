package astvalidation

import (
	"github.com/pkg/errors"

	"github.com/wundergraph/gqlstatic/pkg/astvisitor"
)

// RuleKind tells how a Rule takes part in a validation call.
type RuleKind int

const (
	UnknownRuleKind RuleKind = iota
	// NodeHandlerRuleKind rules declare one enter callback per node kind.
	NodeHandlerRuleKind
	// FullTraversalRuleKind rules get the Context and install whatever they need.
	FullTraversalRuleKind
)

func (k RuleKind) String() string {
	switch k {
	case NodeHandlerRuleKind:
		return "NodeHandler"
	case FullTraversalRuleKind:
		return "FullTraversal"
	default:
		return "Unknown"
	}
}

// NodeHandlers maps node kinds to the enter callback a rule wants for them.
type NodeHandlers map[astvisitor.NodeKind]astvisitor.EnterFunc

// Rule is a validation rule. Use NodeHandlerRule or FullTraversalRule to create one.
// A Rule holds no state itself, it is instantiated for every validation call.
type Rule struct {
	name          string
	kind          RuleKind
	nodeHandlers  func(ctx *Context) NodeHandlers
	fullTraversal func(ctx *Context) error
}

// NodeHandlerRule returns a rule whose handlers are registered on the Context for the
// node kinds they are declared for.
func NodeHandlerRule(name string, handlers func(ctx *Context) NodeHandlers) Rule {
	return Rule{
		name:         name,
		kind:         NodeHandlerRuleKind,
		nodeHandlers: handlers,
	}
}

// FullTraversalRule returns a rule that is handed the Context once per validation call.
func FullTraversalRule(name string, run func(ctx *Context) error) Rule {
	return Rule{
		name:          name,
		kind:          FullTraversalRuleKind,
		fullTraversal: run,
	}
}

func (r Rule) Name() string {
	return r.name
}

func (r Rule) Kind() RuleKind {
	return r.kind
}

func (r Rule) check() error {
	if r.name == "" {
		return errors.Errorf("rule of kind %s has no name", r.kind)
	}
	switch r.kind {
	case NodeHandlerRuleKind:
		if r.nodeHandlers == nil {
			return errors.Errorf("rule %s has no node handlers", r.name)
		}
	case FullTraversalRuleKind:
		if r.fullTraversal == nil {
			return errors.Errorf("rule %s has no traversal function", r.name)
		}
	default:
		return errors.Errorf("rule %s has unknown kind %d", r.name, r.kind)
	}
	return nil
}

func (r Rule) apply(ctx *Context) error {
	switch r.kind {
	case NodeHandlerRuleKind:
		handlers := r.nodeHandlers(ctx)
		registered := 0
		for _, kind := range astvisitor.NodeKinds {
			fn, ok := handlers[kind]
			if !ok {
				continue
			}
			if err := ctx.Register(kind, fn); err != nil {
				return errors.Wrapf(err, "rule %s", r.name)
			}
			registered++
		}
		if registered != len(handlers) {
			return errors.Errorf("rule %s declares handlers for unknown node kinds", r.name)
		}
		return nil
	case FullTraversalRuleKind:
		return errors.Wrapf(r.fullTraversal(ctx), "rule %s", r.name)
	default:
		return r.check()
	}
}
