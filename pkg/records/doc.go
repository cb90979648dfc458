// Package records defines the canonical record set (company, associates,
// managers, lease) produced by the assembler, plus the document kinds,
// formats and artifact metadata shared across the pipeline.
package records
