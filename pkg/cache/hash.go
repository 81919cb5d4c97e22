package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// techKeyVersion changes whenever the cached representation of a parsed LEF
// file changes, invalidating older entries.
const techKeyVersion = 1

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// TechKey returns the key of the parsed form of a LEF file with the given
// content.
func TechKey(content []byte) string {
	return hashKey("lef", techKeyVersion, Hash(content))
}
