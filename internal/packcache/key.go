package packcache

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/dchest/siphash"
)

// Fixed keys keep fingerprints stable across processes and releases.
const (
	fingerprintK0 = 0x70616b6875622d31
	fingerprintK1 = 0x9e3779b97f4a7c15
)

// Fingerprint returns the hex-encoded SipHash-128 of raw metadata bytes.
// Hash the decoded bytes rather than the base64 text so padded and unpadded
// encodings of one pack share a key.
func Fingerprint(payload []byte) string {
	lo, hi := siphash.Hash128(fingerprintK0, fingerprintK1, payload)
	buf := make([]byte, 0, 16)
	buf = binary.BigEndian.AppendUint64(buf, hi)
	buf = binary.BigEndian.AppendUint64(buf, lo)
	return hex.EncodeToString(buf)
}

// Key returns the cache key for a pack: the trimmed explicit ID when present,
// otherwise the payload fingerprint.
func Key(packID string, payload []byte) string {
	if id := strings.TrimSpace(packID); id != "" {
		return id
	}
	return Fingerprint(payload)
}
