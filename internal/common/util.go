package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes from crypto/rand. It panics only
// if the system random source is broken.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Use it on key material after use.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
