package security

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt digest. The salt is random per call,
// so hashing the same password twice yields different strings that both verify.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash verifies a plaintext password against a stored bcrypt
// hash. A malformed hash fails closed: false, with no detail about why.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
