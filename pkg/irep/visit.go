package irep

// VisitFunc is called for every field of the internal representation.
type VisitFunc func(node *Node)

// Visit walks the fields below each root depth first, following the order of
// Types for every node, and calls every handler in order on each field.
// The roots themselves are not passed to the handlers.
func Visit(roots []*Node, handlers []VisitFunc) {
	if len(handlers) == 0 {
		return
	}
	for _, root := range roots {
		visitChildren(root, handlers)
	}
}

func visitChildren(node *Node, handlers []VisitFunc) {
	for _, typeName := range node.Types {
		for _, child := range node.TypedChildren[typeName] {
			for _, handler := range handlers {
				handler(child)
			}
			visitChildren(child, handlers)
		}
	}
}
