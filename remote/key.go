// Package remote implements the S3-shaped provider of spec.md §4.9: it
// turns a capability.RequestDescriptor into a signed HTTP request against a
// configured S3-compatible endpoint (AWS S3, Cloudflare R2, MinIO), and
// turns the HTTP response back into the structured errors the rest of the
// engine expects.
package remote

import (
	"strings"

	"github.com/mr-tron/base58"
)

// isSafeKeyByte reports whether b can appear unescaped in an S3 object key
// component, per spec.md §4.9 step 1: alphanumerics, '-', '_', '.'.
func isSafeKeyByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_' || b == '.':
		return true
	}
	return false
}

func isSafeKeyComponent(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		if !isSafeKeyByte(s[i]) {
			return false
		}
	}
	return true
}

// BuildObjectKey builds the S3 object key for path, a slash-separated
// hierarchy such as "<subject>/<catalog>/<digest>". Slashes are preserved
// as key hierarchy separators; each component between them is kept as-is
// if it uses the safe character set, or base58-encoded and prefixed with
// "!" otherwise, matching spec.md §4.9 step 1 exactly.
func BuildObjectKey(path string) string {
	components := strings.Split(path, "/")
	for i, c := range components {
		if isSafeKeyComponent(c) {
			continue
		}
		components[i] = "!" + base58.Encode([]byte(c))
	}
	return strings.Join(components, "/")
}
