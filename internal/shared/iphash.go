package shared

import (
	"encoding/hex"
	"net"

	"golang.org/x/crypto/blake2b"
)

// IPHasher derives a stable pseudonym for client IPs so audit entries
// can be correlated without storing the raw address.
type IPHasher struct {
	key []byte
}

// NewIPHasher builds a hasher keyed with the given secret. Keys longer
// than 64 bytes are rejected by blake2b; those are truncated.
func NewIPHasher(secret string) *IPHasher {
	key := []byte(secret)
	if len(key) > 64 {
		key = key[:64]
	}
	return &IPHasher{key: key}
}

// Hash returns the keyed hash of the remote address, or "" if the
// address is empty. Port suffixes are stripped before hashing.
func (h *IPHasher) Hash(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}
	mac, err := blake2b.New256(h.key)
	if err != nil {
		return ""
	}
	_, _ = mac.Write([]byte(remoteAddr))
	return hex.EncodeToString(mac.Sum(nil))
}
