package composer

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// BuildFunc produces the body of one article.
type BuildFunc func(env *env) ([]content.Node, error)

// ArticleSpec binds an article identifier to its title and body. Articles
// whose body is fixed legal text set Key and leave Build nil.
type ArticleSpec struct {
	ID    string
	Title string
	Key   string
	Build BuildFunc
}

// Manifest is the ordered article list of a document. Article numbers are
// taken from manifest position, so the article count is a property of the
// manifest alone.
type Manifest struct {
	Name     string
	Articles []ArticleSpec
}

// Len returns the number of articles the manifest emits.
func (m Manifest) Len() int {
	return len(m.Articles)
}

// Validate rejects empty manifests, missing builders and duplicate ids.
func (m Manifest) Validate() error {
	if len(m.Articles) == 0 {
		return fmt.Errorf("manifest %s: no articles", m.Name)
	}
	seen := make(map[string]int, len(m.Articles))
	for i, a := range m.Articles {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("manifest %s: article %d has no id", m.Name, i+1)
		}
		if a.Build == nil && a.Key == "" {
			return fmt.Errorf("manifest %s: article %q has no builder", m.Name, a.ID)
		}
		if prev, dup := seen[a.ID]; dup {
			return fmt.Errorf("manifest %s: article %q bound at %d and %d", m.Name, a.ID, prev, i+1)
		}
		seen[a.ID] = i + 1
	}
	return nil
}

// Build emits one article node per manifest entry, numbered from 1.
func (m Manifest) Build(kind string, e *env) ([]content.Node, error) {
	if err := m.Validate(); err != nil {
		return nil, &docerr.CompositionError{Kind: kind, Reason: err.Error()}
	}
	nodes := make([]content.Node, 0, len(m.Articles))
	for i, a := range m.Articles {
		var (
			body []content.Node
			err  error
		)
		if a.Build != nil {
			body, err = a.Build(e)
		} else {
			body, err = e.paragraphs(a.Key)
		}
		if err != nil {
			return nil, &docerr.CompositionError{Kind: kind, Reason: fmt.Sprintf("article %q: %v", a.ID, err)}
		}
		nodes = append(nodes, content.Article(i+1, a.Title, body...))
	}
	return nodes, nil
}

// CatalogKeys lists the catalog entries referenced by clause articles.
func (m Manifest) CatalogKeys() []string {
	var keys []string
	for _, a := range m.Articles {
		if a.Key != "" {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

// clause declares an article whose body is the catalog text under key.
func clause(id, title, key string) ArticleSpec {
	return ArticleSpec{ID: id, Title: title, Key: key}
}

// env carries what builders need: the catalog, the bundle and the template
// variables derived from it.
type env struct {
	catalog *boilerplate.Catalog
	bundle  records.Bundle
	vars    map[string]any
}

func (e *env) paragraphs(key string) ([]content.Node, error) {
	texts, err := e.catalog.Paragraphs(key, e.vars)
	if err != nil {
		return nil, err
	}
	nodes := make([]content.Node, 0, len(texts))
	for _, t := range texts {
		nodes = append(nodes, content.Paragraph(t))
	}
	return nodes, nil
}

func (e *env) list(key string) (content.Node, error) {
	items, err := e.catalog.List(key, e.vars)
	if err != nil {
		return content.Node{}, err
	}
	return content.List(items...), nil
}

func (e *env) text(key string) (string, error) {
	return e.catalog.Expand(key, e.vars)
}
