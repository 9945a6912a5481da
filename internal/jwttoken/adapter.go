package jwttoken

import "domcart/internal/platform/middleware"

// ValidatorAdapter exposes Service as the middleware.TokenValidator the
// router wants: token in, bare user ID out.
type ValidatorAdapter struct {
	Service *Service
}

var _ middleware.TokenValidator = ValidatorAdapter{}

func (a ValidatorAdapter) Validate(tokenString string) (string, error) {
	claims, err := a.Service.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
