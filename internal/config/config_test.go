package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:      "8480",
		JWTSecret: "dev-secret-change-in-production",
		Env:       "development",
	}
}

func TestValidateDevelopmentDefaultsPass(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRequiresPort(t *testing.T) {
	c := validConfig()
	c.Port = ""
	assert.Error(t, c.Validate())
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	c := validConfig()
	c.JWTSecret = ""
	assert.Error(t, c.Validate())
}

func TestValidateProductionRejectsDefaultSecret(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.DBPassword = "an-actually-strong-password"
	assert.Error(t, c.Validate())

	c.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, c.Validate())
}

func TestValidateProductionRejectsWeakDBPassword(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = "0123456789abcdef0123456789abcdef"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())
}
