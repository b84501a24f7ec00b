package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key derives the deterministic cache key for a synthesis request: a
// sha256 digest over the text, the resolved voice and the serialized
// option values. Identical requests always map to the same key, so
// concurrent writers overwrite with identical content.
func Key(text, voice, settings string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", text, voice, settings)))
	return hex.EncodeToString(sum[:])
}
