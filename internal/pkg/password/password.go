package password

import "golang.org/x/crypto/bcrypt"

// Hash turns a plaintext password into a salted bcrypt hash. bcrypt.DefaultCost
// (10) is the fixed work factor; plaintext must never reach the store.
func Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Compare reports whether plaintext matches hash. Fails closed: an account
// without a password hash matches nothing.
func Compare(hash, plaintext string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
