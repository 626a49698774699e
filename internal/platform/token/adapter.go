package token

import (
	"veridoc/internal/platform/middleware"
)

// MiddlewareAdapter exposes the token service through the middleware's
// validator interface.
type MiddlewareAdapter struct {
	service *Service
}

// NewMiddlewareAdapter wraps a token service for the auth middleware.
func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

// ValidateToken validates the token and converts its claims.
func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
	}, nil
}
