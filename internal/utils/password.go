package utils

import (
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// PasswordCost is the bcrypt work factor used for every stored hash
const PasswordCost = 10

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes)
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword returns the salted bcrypt hash of plain. The hash embeds
// algorithm version and cost so CheckPassword needs nothing else.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches hash
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
