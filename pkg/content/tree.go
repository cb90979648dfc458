package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeType discriminates content-tree nodes.
type NodeType string

const (
	NodeTitle     NodeType = "title"
	NodeHeading   NodeType = "heading"
	NodeParagraph NodeType = "paragraph"
	NodeList      NodeType = "list"
	NodeArticle   NodeType = "article"
	NodeTable     NodeType = "table"
	NodeSignature NodeType = "signature"
)

// Signatory is one signing party of a signature block.
type Signatory struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// Node is one element of a content tree. Fields are populated according to
// Type:
//
//	title, heading, paragraph  Text
//	list                       Items
//	article                    Number, Title, Children
//	table                      Headers, Rows (Title is an optional caption)
//	signature                  Text (place/date line), Signatories
type Node struct {
	Type        NodeType    `json:"type"`
	Text        string      `json:"text,omitempty"`
	Number      int         `json:"number,omitempty"`
	Title       string      `json:"title,omitempty"`
	Children    []Node      `json:"children,omitempty"`
	Items       []string    `json:"items,omitempty"`
	Headers     []string    `json:"headers,omitempty"`
	Rows        [][]string  `json:"rows,omitempty"`
	Signatories []Signatory `json:"signatories,omitempty"`
}

// Tree is the renderer-agnostic representation of one document.
type Tree struct {
	Kind  string            `json:"kind"`
	Title string            `json:"title"`
	Nodes []Node            `json:"nodes"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// Title builds a title node.
func Title(text string) Node { return Node{Type: NodeTitle, Text: text} }

// Heading builds an unnumbered section heading.
func Heading(text string) Node { return Node{Type: NodeHeading, Text: text} }

// Paragraph builds a paragraph node.
func Paragraph(text string) Node { return Node{Type: NodeParagraph, Text: text} }

// Paragraphf builds a paragraph node from a format string.
func Paragraphf(format string, args ...any) Node {
	return Paragraph(fmt.Sprintf(format, args...))
}

// List builds a bulleted list.
func List(items ...string) Node {
	return Node{Type: NodeList, Items: append([]string(nil), items...)}
}

// Article builds a numbered article.
func Article(number int, title string, children ...Node) Node {
	return Node{Type: NodeArticle, Number: number, Title: title, Children: children}
}

// Table builds a table node. Every row should have len(headers) cells.
func Table(caption string, headers []string, rows [][]string) Node {
	return Node{Type: NodeTable, Title: caption, Headers: headers, Rows: rows}
}

// Signature builds a signature block.
func Signature(line string, signatories ...Signatory) Node {
	return Node{Type: NodeSignature, Text: line, Signatories: signatories}
}

// ArticleHeading is the canonical heading text of an article node.
func ArticleHeading(n Node) string {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Sprintf("Article %d", n.Number)
	}
	return fmt.Sprintf("Article %d - %s", n.Number, n.Title)
}

// Articles returns the article nodes of the tree in order.
func (t Tree) Articles() []Node {
	var out []Node
	for _, n := range t.Nodes {
		if n.Type == NodeArticle {
			out = append(out, n)
		}
	}
	return out
}

// Headings returns the ordered section and article headings. Two renderings
// of the same tree are content-equivalent when they expose the same sequence.
func (t Tree) Headings() []string {
	var out []string
	for _, n := range t.Nodes {
		switch n.Type {
		case NodeHeading:
			out = append(out, n.Text)
		case NodeArticle:
			out = append(out, ArticleHeading(n))
		}
	}
	return out
}

// Validate checks structural invariants every renderer relies on.
func (t Tree) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("content: tree %q has no nodes", t.Kind)
	}
	seen := make(map[int]struct{})
	for i, n := range t.Nodes {
		if !n.Type.Known() {
			return fmt.Errorf("content: node %d has unsupported type %q", i, n.Type)
		}
		switch n.Type {
		case NodeArticle:
			if n.Number <= 0 {
				return fmt.Errorf("content: article at %d has no number", i)
			}
			if _, dup := seen[n.Number]; dup {
				return fmt.Errorf("content: article %d emitted twice", n.Number)
			}
			seen[n.Number] = struct{}{}
		case NodeTable:
			if err := validateTable(n); err != nil {
				return fmt.Errorf("content: node %d: %w", i, err)
			}
		}
		for j, child := range n.Children {
			if !child.Type.Known() {
				return fmt.Errorf("content: node %d child %d has unsupported type %q", i, j, child.Type)
			}
			if child.Type == NodeTable {
				if err := validateTable(child); err != nil {
					return fmt.Errorf("content: node %d child %d: %w", i, j, err)
				}
			}
		}
	}
	return nil
}

func validateTable(n Node) error {
	for r, row := range n.Rows {
		if len(row) != len(n.Headers) {
			return fmt.Errorf("table row %d has %d cells, want %d", r, len(row), len(n.Headers))
		}
	}
	return nil
}

// Known reports whether the node type is part of the tree vocabulary.
func (t NodeType) Known() bool {
	switch t {
	case NodeTitle, NodeHeading, NodeParagraph, NodeList, NodeArticle, NodeTable, NodeSignature:
		return true
	default:
		return false
	}
}

// Fingerprint returns a stable JSON encoding of the tree, used as a cache key
// input.
func (t Tree) Fingerprint() ([]byte, error) {
	return json.Marshal(t)
}
