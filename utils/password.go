package utils

import (
	"adconnect/config"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword bcrypt-hashes password with the configured cost.
func HashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if config.AppConfig != nil && config.AppConfig.SaltRound >= bcrypt.MinCost {
		cost = config.AppConfig.SaltRound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
