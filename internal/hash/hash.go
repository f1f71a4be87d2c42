// Package hash derives content-addressed cache keys for note requests.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/notmat/api/internal/model"
)

// Content returns the hex-encoded SHA-256 of the given content.
func Content(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// CacheKey derives the deterministic fingerprint of a transform request.
// The triple is serialized through a fixed struct so semantically equal
// option sets always encode identically regardless of how the request
// body ordered its fields.
func CacheKey(userID, rawText string, options model.NoteOptions) string {
	canonical := struct {
		UserID  string            `json:"userId"`
		RawText string            `json:"rawText"`
		Options model.NoteOptions `json:"options"`
	}{userID, rawText, options}

	// Marshal of a plain struct cannot fail.
	data, _ := json.Marshal(canonical)
	return Content(data)
}
