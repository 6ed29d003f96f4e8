package auth

import (
	"golang.org/x/crypto/bcrypt"

	"timed-exam-service/internal/domain"
)

// BcryptVerifier checks role secrets against bcrypt hashes. A role without a
// configured hash never verifies.
type BcryptVerifier struct {
	hashes map[domain.Role][]byte
}

func NewBcryptVerifier(hashes map[domain.Role]string) *BcryptVerifier {
	v := &BcryptVerifier{hashes: make(map[domain.Role][]byte, len(hashes))}
	for role, hash := range hashes {
		if hash != "" {
			v.hashes[role] = []byte(hash)
		}
	}
	return v
}

func (v *BcryptVerifier) Verify(role domain.Role, secret string) bool {
	hash, ok := v.hashes[role]
	if !ok || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(secret)) == nil
}

// HashSecret produces the bcrypt hash stored in configuration for a role secret.
func HashSecret(secret string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
