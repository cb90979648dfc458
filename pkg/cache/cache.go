// Package cache remembers packaged artifacts by content so identical
// requests skip rendering. Entries are keyed by the tree fingerprint, the
// output format, the owning company and the requesting user.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "legaldocs:artifact:"

// Cache stores artifacts by key. A miss is reported as ok == false with a nil
// error.
type Cache interface {
	Get(ctx context.Context, key string) (records.GeneratedArtifact, bool, error)
	Put(ctx context.Context, key string, artifact records.GeneratedArtifact, ttl time.Duration) error
	// DeleteCompany drops every entry of companyID.
	DeleteCompany(ctx context.Context, companyID string) error
}

// Key derives the cache key of tree rendered by renderer into format for
// companyID. The requesting user is part of the key so every owner gets an
// artifact recorded under their own identity.
func Key(companyID, userID string, format records.Format, renderer string, tree content.Tree) (string, error) {
	payload, err := tree.Fingerprint()
	if err != nil {
		return "", fmt.Errorf("cache: fingerprint tree: %w", err)
	}
	if userID == "" {
		userID = "-"
	}
	sum := sha256.Sum256(payload)
	return companyPrefix(companyID) + keyEscaper.Replace(userID) + ":" + string(format) + ":" + renderer + ":" + hex.EncodeToString(sum[:]), nil
}

var keyEscaper = strings.NewReplacer(":", "_", "*", "_", "?", "_", "[", "_", "]", "_")

func companyPrefix(companyID string) string {
	return KeyPrefix + keyEscaper.Replace(companyID) + ":"
}
