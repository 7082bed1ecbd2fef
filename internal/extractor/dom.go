package extractor

import "io"

// Query selects descendant elements by tag, classes and visible text.
// Empty fields match anything. TextContains is case-insensitive.
type Query struct {
	Tag          string
	Classes      []string
	TextContains string
}

// Node is the minimal tree abstraction the extraction algorithms run against.
// Adapters wrap a concrete HTML parser.
type Node interface {
	// Find returns matching descendants in document order.
	Find(q Query) []Node
	// First returns the first matching descendant or nil.
	First(q Query) Node
	// Text returns the element text with whitespace collapsed.
	Text() string
	// TextExcluding returns Text with matching descendants removed.
	TextExcluding(q Query) string
	HasClass(class string) bool
	Attr(name string) string
	// PrevElement returns the immediately preceding element sibling or nil.
	PrevElement() Node
}

// Parser turns raw HTML into a Node tree.
type Parser interface {
	Parse(r io.Reader) (Node, error)
}
