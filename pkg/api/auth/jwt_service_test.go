package auth

import (
	"testing"
	"time"

	"github.com/fastfile/fastfile/pkg/models"
)

func testConfig() JWTConfig {
	return JWTConfig{
		Secret:               "test-secret-key-must-be-32-chars!",
		Issuer:               "test-issuer",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	}
}

func TestNewJWTService_ValidConfig(t *testing.T) {
	service, err := NewJWTService(testConfig())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if service == nil {
		t.Fatal("Expected service to be non-nil")
	}
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{Secret: "", Issuer: "test-issuer"})
	if err == nil {
		t.Fatal("Expected error for empty secret")
	}
}

func TestNewJWTService_ShortSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{Secret: "short", Issuer: "test-issuer"})
	if err != ErrInvalidSecretLength {
		t.Fatalf("Expected ErrInvalidSecretLength, got: %v", err)
	}
}

func TestGenerateTokenPair(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	user := &models.User{
		ID:       "test-uuid",
		Username: "testuser",
		Email:    "test@example.com",
	}

	tokenPair, err := service.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if tokenPair.AccessToken == "" {
		t.Error("Expected non-empty access token")
	}
	if tokenPair.RefreshToken == "" {
		t.Error("Expected non-empty refresh token")
	}
	if tokenPair.TokenType != "Bearer" {
		t.Errorf("Expected TokenType 'Bearer', got '%s'", tokenPair.TokenType)
	}
	if tokenPair.ExpiresIn != int64(15*time.Minute/time.Second) {
		t.Errorf("Expected ExpiresIn %d, got %d", int64(15*time.Minute/time.Second), tokenPair.ExpiresIn)
	}
}

func TestValidateAccessToken(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	user := &models.User{
		ID:       "test-uuid",
		Username: "testuser",
		Email:    "test@example.com",
	}

	tokenPair, _ := service.GenerateTokenPair(user)

	claims, err := service.ValidateAccessToken(tokenPair.AccessToken)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if claims.Username != "testuser" {
		t.Errorf("Expected username 'testuser', got '%s'", claims.Username)
	}
	if claims.UserID != "test-uuid" {
		t.Errorf("Expected UserID 'test-uuid', got '%s'", claims.UserID)
	}
	if claims.Email != "test@example.com" {
		t.Errorf("Expected email 'test@example.com', got '%s'", claims.Email)
	}
	if !claims.IsAccessToken() {
		t.Error("Expected IsAccessToken() to return true")
	}
}

func TestValidateAccessToken_InvalidToken(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	_, err := service.ValidateAccessToken("invalid-token")
	if err == nil {
		t.Fatal("Expected error for invalid token")
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	service, _ := NewJWTService(testConfig())
	other, _ := NewJWTService(JWTConfig{Secret: "another-secret-key-that-is-32-ch!"})

	tokenPair, _ := service.GenerateTokenPair(&models.User{ID: "u", Username: "u"})

	if _, err := other.ValidateAccessToken(tokenPair.AccessToken); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got: %v", err)
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	config := testConfig()
	config.AccessTokenDuration = -time.Minute
	service, _ := NewJWTService(config)

	tokenPair, _ := service.GenerateTokenPair(&models.User{ID: "u", Username: "u"})

	if _, err := service.ValidateAccessToken(tokenPair.AccessToken); err != ErrExpiredToken {
		t.Errorf("Expected ErrExpiredToken, got: %v", err)
	}
}

func TestValidateAccessToken_WrongTokenType(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	tokenPair, _ := service.GenerateTokenPair(&models.User{ID: "u", Username: "u"})

	// Try to validate refresh token as access token
	if _, err := service.ValidateAccessToken(tokenPair.RefreshToken); err != ErrInvalidTokenType {
		t.Errorf("Expected ErrInvalidTokenType, got: %v", err)
	}
}

func TestValidateRefreshToken(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	tokenPair, _ := service.GenerateTokenPair(&models.User{ID: "u", Username: "testuser"})

	claims, err := service.ValidateRefreshToken(tokenPair.RefreshToken)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if claims.Username != "testuser" {
		t.Errorf("Expected username 'testuser', got '%s'", claims.Username)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("Expected token type 'refresh', got '%s'", claims.TokenType)
	}
}

func TestValidateRefreshToken_WrongTokenType(t *testing.T) {
	service, _ := NewJWTService(testConfig())

	tokenPair, _ := service.GenerateTokenPair(&models.User{ID: "u", Username: "u"})

	// Try to validate access token as refresh token
	if _, err := service.ValidateRefreshToken(tokenPair.AccessToken); err != ErrInvalidTokenType {
		t.Errorf("Expected ErrInvalidTokenType, got: %v", err)
	}
}
