package repository

import "context"

// Client representa un cliente OAuth tal como lo ve el servicio de introspección.
type Client struct {
	ID         string `yaml:"id" bson:"_id"`
	Name       string `yaml:"name" bson:"name"`
	SecretHash string `yaml:"secret_hash" bson:"secret"` // bcrypt o argon2id
	Revoked    bool   `yaml:"revoked" bson:"revoked"`
}

// ClientRepository consulta la revocación a nivel de client (claim aud).
type ClientRepository interface {
	// IsRevoked reporta si el client fue revocado.
	// Un client desconocido se considera revocado.
	IsRevoked(ctx context.Context, clientID string) (bool, error)
}

// ClientCredentialRepository expone el material necesario para autenticar al
// caller del endpoint con client_id/client_secret.
type ClientCredentialRepository interface {
	// GetClient retorna ErrNotFound si no existe.
	GetClient(ctx context.Context, clientID string) (*Client, error)
}

// ClientStore agrupa ambas capacidades sobre la misma tabla/colección.
type ClientStore interface {
	ClientRepository
	ClientCredentialRepository
}
