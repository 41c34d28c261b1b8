package auth

import (
	"testing"

	"github.com/raven-med/radtag/internal/config"
	"github.com/raven-med/radtag/internal/constant"
)

// Perform token generation and verify the generated token to ensure VerifyJwtToken is correct
func TestJWT(t *testing.T) {
	jwtService := NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, nil)

	payload := JWTPayload{
		ID:        42,
		Email:     "test@gmail.com",
		FirstName: "Test",
		LastName:  "User",
	}

	refreshToken, accessToken, err := jwtService.GenerateRefreshAndAccessToken(payload)
	if err != nil {
		t.Fatalf("An error occurred during refresh token and access token generation. Error: %v", err)
	}

	refreshClaims, err := jwtService.VerifyJwtToken(*refreshToken)
	if err != nil {
		t.Errorf("An error occurred during refresh token verification. Error: %v", err)
	}
	if refreshClaims.Type != constant.JWT_TYPE_REFRESH {
		t.Errorf("VerifyJwtToken() refresh token type = %v, want %v", refreshClaims.Type, constant.JWT_TYPE_REFRESH)
	}

	accessClaims, err := jwtService.VerifyJwtToken(*accessToken)
	if err != nil {
		t.Errorf("An error occurred during access token verification. Error: %v", err)
	}
	if accessClaims.Type != constant.JWT_TYPE_ACCESS {
		t.Errorf("VerifyJwtToken() access token type = %v, want %v", accessClaims.Type, constant.JWT_TYPE_ACCESS)
	}

	if accessClaims.User != payload {
		t.Errorf("VerifyJwtToken() payload = %+v, want %+v", accessClaims.User, payload)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	jwtService := NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, nil)
	other := NewJwt(config.AuthConfig{JWT_SECRET: "other-secret"}, nil)

	_, accessToken, err := jwtService.GenerateRefreshAndAccessToken(JWTPayload{ID: 1})
	if err != nil {
		t.Fatalf("GenerateRefreshAndAccessToken() error = %v", err)
	}

	if _, err := other.VerifyJwtToken(*accessToken); err == nil {
		t.Error("VerifyJwtToken() accepted a token signed with a different secret")
	}
}
