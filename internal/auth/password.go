package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher хеширование и проверка паролей
type Hasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

// BcryptHasher реализация Hasher на bcrypt (соль внутри хеша)
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher создает BcryptHasher, cost <= 0 дает bcrypt.DefaultCost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
