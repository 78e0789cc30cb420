package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost соответствует соли с 10 раундами.
const PasswordCost = bcrypt.DefaultCost

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword хеширует пароль bcrypt со случайной солью.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword возвращает true, если пароль соответствует хешу.
// Пустой хеш никогда не совпадает.
func ComparePassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
