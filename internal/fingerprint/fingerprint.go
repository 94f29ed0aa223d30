// Package fingerprint derives stable cache keys from free-text search queries.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// keyBytes is the number of digest bytes kept in a key (128 bits).
const keyBytes = 16

// Normalize lowercases the query and collapses whitespace runs to single spaces.
// Unicode input is composed (NFC) first so visually identical queries agree.
func Normalize(query string) string {
	composed := norm.NFC.String(query)
	lowered := cases.Lower(language.Und).String(composed)
	return strings.Join(strings.Fields(lowered), " ")
}

// Of returns the cache key for query: hex of the first 128 bits of SHA-256
// over the normalized query.
func Of(query string) string {
	sum := sha256.Sum256([]byte(Normalize(query)))
	return hex.EncodeToString(sum[:keyBytes])
}
