// file: service/auth_service_test.go

package service

import (
	"multibank-api/model"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	password := "mySecretPassword123"

	hashedPassword, err := HashPassword(password)
	assert.NoError(t, err)
	assert.NotEqual(t, password, hashedPassword)

	assert.True(t, CheckPasswordHash(password, hashedPassword))
	assert.False(t, CheckPasswordHash("notMyPassword", hashedPassword))
}

func TestGenerateJWT(t *testing.T) {
	user := &model.User{ID: 42, Email: "user@example.com", Role: model.RoleAdmin}

	tokenString, err := GenerateJWT(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return getJwtKey(), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "user@example.com", claims.Subject)
}
