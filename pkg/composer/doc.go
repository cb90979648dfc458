// Package composer turns a records.Bundle into a content.Tree, one pure
// strategy per document kind. Statutes and the lease are built from
// declarative article manifests; article numbers come from manifest
// position, so article counts are fixed per variant.
package composer
