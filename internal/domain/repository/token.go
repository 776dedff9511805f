package repository

import "context"

// AccessTokenRepository consulta el estado de revocación de access tokens
// emitidos, indexados por su claim jti.
type AccessTokenRepository interface {
	// IsRevoked reporta si el token fue revocado.
	// Un jti desconocido se considera revocado.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
