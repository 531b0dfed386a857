package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash from a plaintext credential. A cost
// outside bcrypt's supported range falls back to the library default, so a
// misconfigured AUTH_BCRYPT_COST can never weaken hashing below the floor.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports a mismatch between the stored hash and a candidate
// password as a non-nil error. Callers map that to INVALID_CREDENTIALS.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
