package sieve

import "strings"

// Node is the interface implemented by all expression tree nodes. A tree is
// immutable once built and owned by the Predicate that compiled it.
type Node interface {
	// node is a marker method to keep the node set closed.
	node()
	// String returns a canonical representation of the (sub)expression.
	String() string
}

// AndNode matches when every child matches. Children are evaluated in
// order with short-circuiting.
type AndNode struct {
	Children []Node
}

// OrNode matches when any child matches. Children are evaluated in order
// with short-circuiting.
type OrNode struct {
	Children []Node
}

// NotNode inverts its child's result.
type NotNode struct {
	Child Node
}

// AtomNode is a single compiled field=value condition. For ordinary atoms
// the matcher is built once at compile time and reused for every item. A
// template atom (value containing {{ ... }}) keeps the raw pattern instead
// and builds its matcher per item, after rendering; that is the one
// exception to the compile-once rule.
type AtomNode struct {
	Field   *Field
	Negated bool
	Value   string

	// matcher decides the atom for one extracted field value.
	// nil when template is set.
	matcher func(any) bool

	// template is the raw deferred pattern, rendered per item.
	template string
}

func (n *AndNode) node()  {}
func (n *OrNode) node()   {}
func (n *NotNode) node()  {}
func (n *AtomNode) node() {}

func (n *AndNode) String() string {
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = groupString(c)
	}
	return strings.Join(parts, " ")
}

func (n *OrNode) String() string {
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = groupString(c)
	}
	return strings.Join(parts, " OR ")
}

func (n *NotNode) String() string {
	return "NOT " + groupString(n.Child)
}

func (n *AtomNode) String() string {
	neg := ""
	if n.Negated {
		neg = "!"
	}
	return neg + n.Field.Name + "=" + n.Value
}

// groupString parenthesizes composite children so the canonical form
// re-parses with the same shape.
func groupString(n Node) string {
	switch n.(type) {
	case *AtomNode:
		return n.String()
	default:
		return "( " + n.String() + " )"
	}
}

// label returns the node's tree label for Tree output.
func label(n Node) string {
	switch n.(type) {
	case *AndNode:
		return "AND"
	case *OrNode:
		return "OR"
	case *NotNode:
		return "NOT"
	default:
		return n.String()
	}
}

func children(n Node) []Node {
	switch t := n.(type) {
	case *AndNode:
		return t.Children
	case *OrNode:
		return t.Children
	case *NotNode:
		return []Node{t.Child}
	default:
		return nil
	}
}

// buildTree recursively renders the expression tree with box-drawing
// characters. depth limits recursion to a maximum of 20 levels.
func buildTree(n Node, sb *strings.Builder, prefix string, depth int) {
	if depth >= 20 {
		return
	}
	kids := children(n)
	for i, child := range kids {
		isLast := i == len(kids)-1
		var connector, childPrefix string
		if isLast {
			connector = "└── "
			childPrefix = "    "
		} else {
			connector = "├── "
			childPrefix = "│   "
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(label(child))
		sb.WriteString("\n")
		buildTree(child, sb, prefix+childPrefix, depth+1)
	}
}

// atoms collects every atom in the tree, in expression order.
func atoms(n Node) []*AtomNode {
	switch t := n.(type) {
	case *AtomNode:
		return []*AtomNode{t}
	default:
		var out []*AtomNode
		for _, c := range children(n) {
			out = append(out, atoms(c)...)
		}
		return out
	}
}
