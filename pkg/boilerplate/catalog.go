package boilerplate

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var embeddedCatalog embed.FS

// Catalog stores the fixed legal texts used by composer strategies. Texts may
// carry pongo2 placeholders ({{ denomination }}) expanded at compose time.
type Catalog struct {
	texts map[string]string
	lists map[string][]string

	mu       sync.RWMutex
	compiled map[string]*pongo2.Template
}

type catalogFile struct {
	Texts map[string]string   `json:"texts" yaml:"texts"`
	Lists map[string][]string `json:"lists" yaml:"lists"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// EmbeddedFS exposes the built-in catalog files.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedCatalog, "catalog")
	if err != nil {
		return embeddedCatalog
	}
	return sub
}

// Default returns the catalog loaded from the embedded files. The result is
// computed once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadFS(EmbeddedFS())
	})
	return defaultCatalog, defaultErr
}

// MustDefault panics when the embedded catalog cannot be loaded.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFS walks fsys and parses every JSON/YAML catalog file. Keys must be
// unique across files.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{
		texts:    make(map[string]string),
		lists:    make(map[string][]string),
		compiled: make(map[string]*pongo2.Template),
	}
	if fsys == nil {
		return c, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("boilerplate: read %s: %w", path, err)
		}
		doc, err := parseFile(data, path)
		if err != nil {
			return err
		}

		for key, text := range doc.Texts {
			id := strings.TrimSpace(key)
			if id == "" {
				return fmt.Errorf("boilerplate: file %s defines an empty text key", path)
			}
			if _, exists := c.texts[id]; exists {
				return fmt.Errorf("boilerplate: duplicate text %q (file %s)", id, path)
			}
			c.texts[id] = strings.TrimSpace(text)
		}
		for key, items := range doc.Lists {
			id := strings.TrimSpace(key)
			if id == "" {
				return fmt.Errorf("boilerplate: file %s defines an empty list key", path)
			}
			if _, exists := c.lists[id]; exists {
				return fmt.Errorf("boilerplate: duplicate list %q (file %s)", id, path)
			}
			c.lists[id] = append([]string(nil), items...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func parseFile(data []byte, source string) (catalogFile, error) {
	var doc catalogFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return catalogFile{}, fmt.Errorf("boilerplate: file %s is empty", source)
	}
	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return catalogFile{}, fmt.Errorf("boilerplate: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return catalogFile{}, fmt.Errorf("boilerplate: parse %s: %w", source, err)
	}
	return doc, nil
}

// Has reports whether a text or list exists under key.
func (c *Catalog) Has(key string) bool {
	if c == nil {
		return false
	}
	if _, ok := c.texts[key]; ok {
		return true
	}
	_, ok := c.lists[key]
	return ok
}

// Keys returns every text and list key, sorted.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.texts)+len(c.lists))
	for k := range c.texts {
		keys = append(keys, k)
	}
	for k := range c.lists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Text returns the raw text under key.
func (c *Catalog) Text(key string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("boilerplate: catalog is nil")
	}
	text, ok := c.texts[key]
	if !ok {
		return "", fmt.Errorf("boilerplate: text %q not found", key)
	}
	return text, nil
}

// List returns the expanded items of the list under key.
func (c *Catalog) List(key string, vars map[string]any) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("boilerplate: catalog is nil")
	}
	items, ok := c.lists[key]
	if !ok {
		return nil, fmt.Errorf("boilerplate: list %q not found", key)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		expanded, err := c.expand(fmt.Sprintf("%s[%d]", key, i), item, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

// Expand returns the text under key with placeholders substituted.
func (c *Catalog) Expand(key string, vars map[string]any) (string, error) {
	text, err := c.Text(key)
	if err != nil {
		return "", err
	}
	return c.expand(key, text, vars)
}

// Paragraphs expands the text under key and splits it on blank lines.
func (c *Catalog) Paragraphs(key string, vars map[string]any) ([]string, error) {
	text, err := c.Expand(key, vars)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.Join(strings.Fields(block), " ")
		if block != "" {
			out = append(out, block)
		}
	}
	return out, nil
}

func (c *Catalog) expand(id, text string, vars map[string]any) (string, error) {
	if !strings.Contains(text, "{{") && !strings.Contains(text, "{%") {
		return text, nil
	}
	tmpl, err := c.template(id, text)
	if err != nil {
		return "", err
	}
	out, err := tmpl.Execute(pongo2.Context(vars))
	if err != nil {
		return "", fmt.Errorf("boilerplate: expand %q: %w", id, err)
	}
	return strings.TrimSpace(out), nil
}

func (c *Catalog) template(id, text string) (*pongo2.Template, error) {
	c.mu.RLock()
	tmpl, ok := c.compiled[id]
	c.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tmpl, ok := c.compiled[id]; ok {
		return tmpl, nil
	}
	// Legal texts are plain text; HTML escaping happens in the renderers.
	tmpl, err := pongo2.FromString("{% autoescape off %}" + text + "{% endautoescape %}")
	if err != nil {
		return nil, fmt.Errorf("boilerplate: compile %q: %w", id, err)
	}
	c.compiled[id] = tmpl
	return tmpl, nil
}
