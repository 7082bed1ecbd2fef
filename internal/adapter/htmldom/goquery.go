// Package htmldom adapts goquery to the extractor's Node abstraction.
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/budgetbloom/cardledger/internal/extractor"
)

// Parser implements extractor.Parser using goquery.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads an HTML document.
func (p *Parser) Parse(r io.Reader) (extractor.Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &node{sel: doc.Selection}, nil
}

type node struct {
	sel *goquery.Selection
}

func (n *node) Find(q extractor.Query) []extractor.Node {
	var out []extractor.Node
	n.sel.Find(selector(q)).Each(func(_ int, s *goquery.Selection) {
		if q.TextContains != "" && !strings.Contains(strings.ToLower(s.Text()), strings.ToLower(q.TextContains)) {
			return
		}
		out = append(out, &node{sel: s})
	})
	return out
}

func (n *node) First(q extractor.Query) extractor.Node {
	found := n.Find(q)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func (n *node) Text() string {
	return collapse(n.sel.Text())
}

func (n *node) TextExcluding(q extractor.Query) string {
	clone := n.sel.Clone()
	clone.Find(selector(q)).Remove()
	return collapse(clone.Text())
}

func (n *node) HasClass(class string) bool {
	return n.sel.HasClass(class)
}

func (n *node) Attr(name string) string {
	v, _ := n.sel.Attr(name)
	return strings.TrimSpace(v)
}

func (n *node) PrevElement() extractor.Node {
	prev := n.sel.Prev()
	if prev.Length() == 0 {
		return nil
	}
	return &node{sel: prev}
}

// selector renders the tag and class parts of q as a CSS selector.
func selector(q extractor.Query) string {
	var b strings.Builder
	if q.Tag != "" {
		b.WriteString(q.Tag)
	}
	for _, c := range q.Classes {
		b.WriteByte('.')
		b.WriteString(c)
	}
	if b.Len() == 0 {
		return "*"
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
