package common

import "crypto/rand"

// GenerateRandByteArray returns n random bytes. It panics if the system
// random source fails, which only happens on a broken platform.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Used for passwords read from the terminal.
// Copies made from b, such as string conversions, are not affected.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
