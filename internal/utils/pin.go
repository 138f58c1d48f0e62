package utils

import "golang.org/x/crypto/bcrypt"

// HashPIN returns the bcrypt hash of a wallet PIN using the given cost.
// Only the hash is ever stored; the plain PIN exists just for the duration
// of a settlement request.
func HashPIN(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPIN compares a bcrypt hash against a plain PIN.  bcrypt's
// comparison is constant time, so a mismatch leaks nothing about how close
// the guess was.
func VerifyPIN(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
