package layoutpdf

import (
	"fmt"

	"github.com/goliatone/go-legaldocs/pkg/content"
)

// Block is one laid-out element. Exactly one of Text, Table or Signatories is
// meaningful, depending on Style.
type Block struct {
	Style       content.StyleName
	Text        string
	Bullet      bool
	Table       *Table
	Signatories []content.Signatory
}

// Table is a tabular block.
type Table struct {
	Caption string
	Headers []string
	Rows    [][]string
}

// Layout flattens the tree into the ordered block sequence drawn on the page.
func Layout(tree content.Tree) ([]Block, error) {
	var blocks []Block
	for _, n := range tree.Nodes {
		out, err := layoutNode(n)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, out...)
	}
	return blocks, nil
}

func layoutNode(n content.Node) ([]Block, error) {
	switch n.Type {
	case content.NodeTitle:
		return []Block{{Style: content.StyleTitle, Text: n.Text}}, nil
	case content.NodeHeading:
		return []Block{{Style: content.StyleSection, Text: n.Text}}, nil
	case content.NodeParagraph:
		return []Block{{Style: content.StyleBody, Text: n.Text}}, nil
	case content.NodeList:
		out := make([]Block, 0, len(n.Items))
		for _, item := range n.Items {
			out = append(out, Block{Style: content.StyleListItem, Text: item, Bullet: true})
		}
		return out, nil
	case content.NodeTable:
		return []Block{{Style: content.StyleTable, Table: &Table{Caption: n.Title, Headers: n.Headers, Rows: n.Rows}}}, nil
	case content.NodeSignature:
		return []Block{{Style: content.StyleSignature, Text: n.Text, Signatories: n.Signatories}}, nil
	case content.NodeArticle:
		out := []Block{{Style: content.StyleArticle, Text: content.ArticleHeading(n)}}
		for _, child := range n.Children {
			if child.Type == content.NodeArticle {
				return nil, fmt.Errorf("layoutpdf: article %d nests another article", n.Number)
			}
			nested, err := layoutNode(child)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("layoutpdf: unsupported node type %q", n.Type)
	}
}

// Headings returns the section and article headings of blocks, in order.
func Headings(blocks []Block) []string {
	var out []string
	for _, b := range blocks {
		if b.Style == content.StyleSection || b.Style == content.StyleArticle {
			out = append(out, b.Text)
		}
	}
	return out
}
