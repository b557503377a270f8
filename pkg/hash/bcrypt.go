package hash

import "golang.org/x/crypto/bcrypt"

func HashPassword(p string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword сравнивает пароль с bcrypt-хэшем. Пустой хэш никогда не совпадает.
func CheckPassword(hashed, plain string) bool {
	if hashed == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
