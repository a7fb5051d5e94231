// Package codegen builds the C source that a fully or partially
// specified Options value turns into. It is organised as a tree of
// Node values rather than the heterogeneous CodeGen/Conditional/
// Conditional2/Comment class hierarchy of the original tool: a single
// Node interface plays all four roles (plain text, conditional
// inclusion, if/else branching, and doc-comment wrapping), with the
// branch taken once at tree-build time rather than re-evaluated when
// the tree is rendered.
package codegen

import "strings"

// Node is one piece of the generated-code tree. Render flattens a Node
// (and its children, indented one more level each nesting) into lines
// of C source.
type Node interface {
	Render(indent string) []string
}

// Line is a single line of literal text, indented at render time.
type Line string

func (l Line) Render(indent string) []string {
	return []string{indent + string(l)}
}

// Blank is a convenience for an empty line. It renders as the bare
// indent, which Render (and Comment) then right-trim away, so blank
// lines in the output carry no whitespace, as in hand-written C.
var Blank Node = Line("")

// Block groups children under one additional indent level. An empty
// Indent renders children flush with the parent, used for simple
// sequencing where no extra nesting is wanted.
type Block struct {
	Indent   string
	Children []Node
}

func Seq(children ...Node) Block { return Block{Children: children} }
func Indented(children ...Node) Block {
	return Block{Indent: "    ", Children: children}
}

func (b Block) Render(indent string) []string {
	var out []string
	next := indent + b.Indent
	for _, c := range b.Children {
		out = append(out, c.Render(next)...)
	}
	return out
}

// If includes its children only when Pred is true; this is resolved at
// tree-construction time (the caller passes the already-evaluated
// bool), so an excluded branch never even allocates its child Nodes if
// the caller guards construction — but typically it's simplest to build
// both and let If silently drop the false side.
type If struct {
	Pred     bool
	Children []Node
}

func When(pred bool, children ...Node) If { return If{Pred: pred, Children: children} }

func (i If) Render(indent string) []string {
	if !i.Pred {
		return nil
	}
	var out []string
	for _, c := range i.Children {
		out = append(out, c.Render(indent)...)
	}
	return out
}

// IfElse renders Then when Pred is true, Else otherwise. Every branch
// point in the original tool's codegen that used Conditional2 becomes
// one of these; the dead branch (Conditional2's implicit "neither
// condition true" fallthrough to an empty block, reachable only for
// opt.algorithm == opt.reflect_in — a type mismatch the original never
// actually produces) has no equivalent here, by design.
type IfElse struct {
	Pred bool
	Then []Node
	Else []Node
}

func (i IfElse) Render(indent string) []string {
	if i.Pred {
		var out []string
		for _, c := range i.Then {
			out = append(out, c.Render(indent)...)
		}
		return out
	}
	var out []string
	for _, c := range i.Else {
		out = append(out, c.Render(indent)...)
	}
	return out
}

// Comment wraps its children in a /** ... */ Doxygen block, one line
// per child, each line prefixed with " * ".
type Comment struct {
	Children []Node
}

func Doc(lines ...Node) Comment { return Comment{Children: lines} }

func (c Comment) Render(indent string) []string {
	out := []string{indent + "/**"}
	for _, child := range c.Children {
		for _, line := range child.Render(indent + " * ") {
			out = append(out, strings.TrimRight(line, " "))
		}
	}
	out = append(out, indent+" */")
	return out
}

// Render flattens a top-level sequence of nodes to a single string,
// right-trimming trailing whitespace from every line the way the
// original tool's __str__ does.
func Render(nodes []Node) string {
	var lines []string
	for _, n := range nodes {
		lines = append(lines, n.Render("")...)
	}
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}
