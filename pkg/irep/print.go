package irep

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

const indentation = "  "

// Print writes a readable outline of doc to w: operations in document order,
// then fragments by name. Selections on abstract types are grouped by object type.
func Print(w io.Writer, doc *Document) error {
	p := printer{out: w}
	roots := append([]*Node(nil), doc.OperationDefinitions...)
	names := make([]string, 0, len(doc.FragmentDefinitions))
	for name := range doc.FragmentDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		roots = append(roots, doc.FragmentDefinitions[name])
	}
	for i, root := range roots {
		if i != 0 {
			p.write("\n")
		}
		p.printRoot(root)
	}
	return p.err
}

// PrintString returns the outline written by Print.
func PrintString(doc *Document) (string, error) {
	buf := &bytes.Buffer{}
	err := Print(buf, doc)
	return buf.String(), err
}

type printer struct {
	out io.Writer
	err error
}

func (p *printer) write(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.out, format, args...)
}

func (p *printer) printRoot(root *Node) {
	var head string
	switch root.Kind {
	case NodeKindFragment:
		head = "fragment " + root.Name
	default:
		head = string(root.OperationType)
		if root.Name != "" {
			head += " " + root.Name
		}
	}
	if root.ReturnType != nil {
		p.write("%s: %s\n", head, root.ReturnType.Name)
	} else {
		p.write("%s\n", head)
	}
	p.printChildren(root, 1)
}

func (p *printer) printChildren(node *Node, depth int) {
	abstract := node.ReturnType != nil && node.ReturnType.IsAbstractType()
	for _, typeName := range node.Types {
		children := node.TypedChildren[typeName]
		childDepth := depth
		if abstract {
			if len(children) == 0 {
				continue
			}
			p.indent(depth)
			p.write("on %s:\n", typeName)
			childDepth++
		}
		for _, child := range children {
			p.printField(child, childDepth)
		}
	}
}

func (p *printer) printField(node *Node, depth int) {
	p.indent(depth)
	name := node.Name
	if node.FieldName != node.Name {
		name = fmt.Sprintf("%s (%s)", node.Name, node.FieldName)
	}
	p.write("%s: %s\n", name, typeString(node.Definition))
	p.printChildren(node, depth+1)
}

func (p *printer) indent(depth int) {
	for i := 0; i < depth; i++ {
		p.write(indentation)
	}
}

func typeString(definition *ast.FieldDefinition) string {
	if definition == nil || definition.Type == nil {
		return "?"
	}
	return definition.Type.String()
}
