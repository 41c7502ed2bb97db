package document

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Digest names the content hash used as the cache key.
type Digest string

const (
	DigestMD5     Digest = "md5"
	DigestSHA256  Digest = "sha256"
	DigestBLAKE2b Digest = "blake2b"
)

// ParseDigest accepts a case-insensitive algorithm name. Empty selects md5.
func ParseDigest(raw string) (Digest, error) {
	switch Digest(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DigestMD5:
		return DigestMD5, nil
	case DigestSHA256:
		return DigestSHA256, nil
	case DigestBLAKE2b:
		return DigestBLAKE2b, nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", raw)
	}
}

// Sum returns the lowercase hex digest of data.
func (d Digest) Sum(data []byte) string {
	switch d {
	case DigestSHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	case DigestBLAKE2b:
		sum := blake2b.Sum256(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := md5.Sum(data)
		return hex.EncodeToString(sum[:])
	}
}

// ValidHash reports whether raw looks like a digest produced by Sum. It guards
// identifiers that end up in file names and storage keys.
func ValidHash(raw string) bool {
	if len(raw) != hex.EncodedLen(md5.Size) && len(raw) != hex.EncodedLen(sha256.Size) {
		return false
	}
	for _, r := range raw {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
