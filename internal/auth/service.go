// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth handles the caller-side token lifecycle of the service.
//
// Tokens are minted by the users service. This package only lets a caller
// revoke the token it presents, so that it stops working here before expiry.
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
	"github.com/taibuivan/readanddownload/internal/platform/sec"
)

// RevocationStore records revoked tokens.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// Service implements logout.
type Service struct {
	store  RevocationStore
	now    func() time.Time
	logger *slog.Logger
}

// NewService builds a Service. A nil store makes Logout answer 503.
func NewService(store RevocationStore, logger *slog.Logger) *Service {
	return &Service{store: store, now: time.Now, logger: logger}
}

/*
Logout revokes token until its expiry.

Returns:
  - apperr.ServiceUnavailable when no revocation store is configured
  - apperr.Internal when the store fails
*/
func (service *Service) Logout(ctx context.Context, claims *sec.AuthClaims, token string) error {
	if service.store == nil {
		return apperr.ServiceUnavailable("El cierre de sesión no está disponible")
	}

	// Tokens without exp never reach here; VerifyToken requires it.
	if claims == nil || claims.ExpiresAt == nil {
		return apperr.InvalidCredential("Token inválido")
	}

	ttl := claims.ExpiresAt.Sub(service.now())
	if ttl <= 0 {
		return nil
	}

	if err := service.store.Revoke(ctx, token, ttl); err != nil {
		return apperr.Internal(err)
	}

	service.logger.InfoContext(ctx, "token_revoked",
		slog.String("user_id", claims.Identity()),
		slog.Duration("ttl", ttl),
	)
	return nil
}
