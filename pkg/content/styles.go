package content

// StyleName identifies one entry of the shared style map.
type StyleName string

const (
	StyleTitle     StyleName = "title"
	StyleSection   StyleName = "section"
	StyleArticle   StyleName = "article"
	StyleBody      StyleName = "body"
	StyleListItem  StyleName = "list_item"
	StyleTable     StyleName = "table"
	StyleTableHead StyleName = "table_head"
	StyleSignature StyleName = "signature"
)

// Align is the horizontal alignment of a styled block.
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignJustify Align = "justify"
)

// Style is the renderer-neutral description of a block style. Sizes are in
// points.
type Style struct {
	Size        float64
	Bold        bool
	Italic      bool
	Underline   bool
	Align       Align
	SpaceBefore float64
	SpaceAfter  float64
	Uppercase   bool
}

// Styles maps node roles to visual styles. The layout-PDF, DOCX and browser
// renderers all read from this map so headings keep the same weight and
// alignment across formats.
var Styles = map[StyleName]Style{
	StyleTitle:     {Size: 16, Bold: true, Align: AlignCenter, SpaceAfter: 8, Uppercase: true},
	StyleSection:   {Size: 13, Bold: true, Align: AlignLeft, SpaceBefore: 8, SpaceAfter: 4, Underline: true},
	StyleArticle:   {Size: 12, Bold: true, Align: AlignLeft, SpaceBefore: 6, SpaceAfter: 3},
	StyleBody:      {Size: 11, Align: AlignJustify, SpaceAfter: 3},
	StyleListItem:  {Size: 11, Align: AlignLeft, SpaceAfter: 2},
	StyleTable:     {Size: 10, Align: AlignLeft},
	StyleTableHead: {Size: 10, Bold: true, Align: AlignCenter},
	StyleSignature: {Size: 11, Align: AlignLeft, SpaceBefore: 12},
}

// StyleFor returns the style registered for name, falling back to body.
func StyleFor(name StyleName) Style {
	if s, ok := Styles[name]; ok {
		return s
	}
	return Styles[StyleBody]
}

// StyleOf maps a node type to its style name.
func StyleOf(t NodeType) StyleName {
	switch t {
	case NodeTitle:
		return StyleTitle
	case NodeHeading:
		return StyleSection
	case NodeArticle:
		return StyleArticle
	case NodeList:
		return StyleListItem
	case NodeTable:
		return StyleTable
	case NodeSignature:
		return StyleSignature
	default:
		return StyleBody
	}
}
