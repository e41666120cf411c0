package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest - фиксированный 256 битный хеш.
type Digest [32]byte

// Sum hashes parts in order, length-prefixing each so ("ab","c") != ("a","bc").
func Sum(parts ...string) Digest {
	h := sha256.New()
	var lenBuf [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range lenBuf {
			lenBuf[i] = byte(n >> (8 * i))
		}
		_, _ = h.Write(lenBuf[:])
		_, _ = h.Write([]byte(p))
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Hex returns the lowercase hex form of d.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first n hex characters of d.
func (d Digest) Short(n int) string {
	s := d.Hex()
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[:n]
}
