// Package render defines the renderer contract shared by every output format
// and the registry used to pick one renderer per requested format.
package render
