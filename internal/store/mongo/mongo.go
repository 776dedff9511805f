// Package mongo implementa los repositorios de introspección sobre MongoDB.
// Colecciones: oauth_access_tokens, oauth_clients y users, con clave _id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collAccessTokens = "oauth_access_tokens"
	collClients      = "oauth_clients"
	collUsers        = "users"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New conecta a MongoDB. El ping inicial tiene timeout propio.
func New(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		return nil, errors.New("mongo: database is required")
	}
	opts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) AccessTokens() repository.AccessTokenRepository {
	return &revocationRepo{coll: s.db.Collection(collAccessTokens)}
}

func (s *Store) Clients() repository.ClientStore {
	c := s.db.Collection(collClients)
	return &clientRepo{revocationRepo: revocationRepo{coll: c}}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepo{coll: s.db.Collection(collUsers)}
}

// revocationRepo lee {_id, revoked}. Un documento ausente se reporta revocado.
type revocationRepo struct {
	coll *mongo.Collection
}

func (r *revocationRepo) IsRevoked(ctx context.Context, id string) (bool, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	opts := options.FindOne().SetProjection(bson.D{{Key: "revoked", Value: 1}})

	var doc struct {
		Revoked bool `bson:"revoked"`
	}
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return true, nil
		}
		return false, err
	}
	return doc.Revoked, nil
}

type clientRepo struct {
	revocationRepo
}

func (r *clientRepo) GetClient(ctx context.Context, clientID string) (*repository.Client, error) {
	filter := bson.D{{Key: "_id", Value: clientID}}
	var c repository.Client
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

type userRepo struct {
	coll *mongo.Collection
}

func (r *userRepo) FindByID(ctx context.Context, userID string) (*repository.User, error) {
	filter := bson.D{{Key: "_id", Value: userID}}
	var u repository.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
