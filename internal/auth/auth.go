package auth

import "github.com/golang-jwt/jwt/v5"

type Authenticator interface {
	GenerateToken(userID string) (string, error)
	ValidateToken(token string) (*jwt.Token, error)
}

// SubjectFromToken returns the "sub" claim of a validated token.
func SubjectFromToken(token *jwt.Token) (string, error) {
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}
