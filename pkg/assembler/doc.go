// Package assembler normalizes loosely typed incorporation requests into the
// canonical records.Bundle. Alias resolution and value coercion live in
// internal/assembler; this package applies defaults, validates identity
// fields with go-playground/validator and recomputes share percentages so
// downstream documents stay consistent even when callers send stale values.
package assembler
