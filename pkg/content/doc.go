// Package content defines the content tree: the renderer-agnostic document
// representation produced by composer strategies. Renderers consume only this
// tree, never the canonical records, and share the style map declared in
// styles.go so visual structure stays aligned across output formats.
package content
