// Package orchestrator wires the assembler → composer → renderer → packager
// pipeline behind a single entry point. Failures are isolated per format
// within a document and per kind within a batch.
package orchestrator
