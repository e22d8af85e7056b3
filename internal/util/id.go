package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a URL-safe hex string ID, used for request correlation and
// publish-lock tokens.
func NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
