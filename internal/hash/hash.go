// Package hash provides PIN hashing for register operators. PINs are short
// numeric codes typed on the register; only the hash is stored locally and
// synchronized.
package hash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// PIN returns the hex-encoded SHA256 hash of an operator PIN. The employee
// email is mixed in so two operators sharing a PIN do not share a hash.
func PIN(email, pin string) string {
	h := sha256.Sum256([]byte(email + ":" + pin))
	return hex.EncodeToString(h[:])
}

// VerifyPIN reports whether the PIN matches a stored hash. Constant time.
func VerifyPIN(email, pin, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(PIN(email, pin)), []byte(hash)) == 1
}
