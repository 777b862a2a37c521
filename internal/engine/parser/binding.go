package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Containers a target may be nested in on the left of an assignment.
var patternContainers = map[string]bool{
	"pattern_list":             true,
	"tuple_pattern":            true,
	"list_pattern":             true,
	"list_splat_pattern":       true,
	"parenthesized_expression": true,
	"expression_list":          true,
	"tuple":                    true,
	"list":                     true,
}

// IsBindingTarget reports whether node is the target of an assignment-like
// construct: a name or attribute on the left of `=`, an augmented
// assignment, a for loop or comprehension clause, a walrus, or an `as` clause.
func IsBindingTarget(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "identifier", "attribute":
	case "as_pattern_target":
		// Grammar versions that alias the target itself.
		return node.ChildCount() == 0
	default:
		return false
	}

	child := node
	parent := node.Parent()
	for parent != nil && patternContainers[parent.Kind()] {
		child = parent
		parent = parent.Parent()
	}
	if parent == nil {
		return false
	}

	switch parent.Kind() {
	case "assignment", "augmented_assignment", "for_statement", "for_in_clause":
		return SameNode(parent.ChildByFieldName("left"), child)
	case "named_expression":
		return SameNode(parent.ChildByFieldName("name"), child)
	case "as_pattern_target":
		return true
	case "except_clause":
		return SameNode(parent.ChildByFieldName("alias"), child)
	}
	return false
}

// BindingOwner returns the statement or clause that binds target and the
// chain of pattern containers between them, outermost first.
func BindingOwner(target *sitter.Node) (owner *sitter.Node, path []*sitter.Node) {
	parent := target.Parent()
	for parent != nil && patternContainers[parent.Kind()] {
		path = append([]*sitter.Node{parent}, path...)
		parent = parent.Parent()
	}
	return parent, path
}
