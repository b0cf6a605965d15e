package llmcache

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Separator joins logical key inputs before hashing.
const Separator = "_"

// Scheme identifies a key-derivation generation.
type Scheme uint8

const (
	SchemeCurrent Scheme = iota + 1 // SHA3-256, 64 hex chars
	SchemeLegacy                    // SHA-1, 40 hex chars
)

func (s Scheme) String() string {
	switch s {
	case SchemeCurrent:
		return "current"
	case SchemeLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// KeyLen is the length of a key produced under s, or 0 for an unknown scheme.
func (s Scheme) KeyLen() int {
	switch s {
	case SchemeCurrent:
		return 64
	case SchemeLegacy:
		return 40
	default:
		return 0
	}
}

// Key derives the current-scheme key for parts. Order matters.
func Key(parts ...string) string {
	sum := sha3.Sum256([]byte(strings.Join(parts, Separator)))
	return hex.EncodeToString(sum[:])
}

// LegacyKey derives the legacy-scheme key for parts.
//
// Deprecated: only for reading entries written by older releases. New entries
// are always stored under Key.
func LegacyKey(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, Separator)))
	return hex.EncodeToString(sum[:])
}

// Derive derives the key for parts under s. Unknown schemes fall back to the
// current scheme.
func Derive(s Scheme, parts ...string) string {
	if s == SchemeLegacy {
		return LegacyKey(parts...)
	}
	return Key(parts...)
}

// SchemeOf classifies an opaque key by its length and alphabet.
func SchemeOf(key string) (Scheme, bool) {
	var s Scheme
	switch len(key) {
	case SchemeCurrent.KeyLen():
		s = SchemeCurrent
	case SchemeLegacy.KeyLen():
		s = SchemeLegacy
	default:
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return 0, false
		}
	}
	return s, true
}
