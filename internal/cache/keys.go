package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/meshworks/textgate/pkg/models"
)

// KeyVersion prefixes every cache key so the layout can evolve without
// colliding with old entries.
const KeyVersion = "v1"

// hashLength is the truncated hex digest length used inside keys.
const hashLength = 32

// BuildKey derives the deterministic fingerprint for a request:
// v1:<operation>:<hash(text)>:<hash(options)>[:<hash(question)>].
// Hashes are SHA-256 hex truncated to 32 chars over the canonical JSON
// serialization (sorted keys, no whitespace). user_metadata never
// participates.
func BuildKey(op models.Operation, text string, options map[string]interface{}, question string) string {
	key := KeyVersion + ":" + string(op) + ":" + digest([]byte(text)) + ":" + digestOptions(options)
	if op.RequiresQuestion() {
		key += ":" + digest([]byte(question))
	}
	return key
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:hashLength]
}

// digestOptions canonicalizes the options map. encoding/json marshals map
// keys in sorted order with no insignificant whitespace, which is exactly
// the canonical form the key format requires. A nil map hashes like an
// empty one.
func digestOptions(options map[string]interface{}) string {
	if options == nil {
		options = map[string]interface{}{}
	}
	canonical, err := json.Marshal(options)
	if err != nil {
		// Options arrive from decoded JSON, so marshaling cannot fail in
		// practice; an empty digest would silently alias keys, so hash the
		// error text instead.
		return digest([]byte(err.Error()))
	}
	return digest(canonical)
}
