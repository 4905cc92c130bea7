package util

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// DigestKey returns prefix followed by "#" and the first 32 hex chars of the
// SHA-256 of payload. The prefix is kept verbatim so prefix scans still match.
func DigestKey(prefix, payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return fmt.Sprintf("%s#%x", prefix, sum)[:len(prefix)+1+32]
}

// GlobEscape quotes the redis glob metacharacters in s so it matches literally
// inside a MATCH pattern.
func GlobEscape(s string) string {
	if !strings.ContainsAny(s, `*?[]\^`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\', '^':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
