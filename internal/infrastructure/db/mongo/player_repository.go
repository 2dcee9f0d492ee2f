package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

const collectionPlayers = "players"

// PlayerRepository implements ports.PlayerRepository using MongoDB.
type PlayerRepository struct {
	col *mongo.Collection
}

func NewPlayerRepository(db *mongo.Database) *PlayerRepository {
	return &PlayerRepository{col: db.Collection(collectionPlayers)}
}

// mongoPlayer is the stored document shape. The hex object id maps to the
// domain's string id; version backs the ledger's optimistic-concurrency check.
type mongoPlayer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Username    string             `bson:"username"`
	Email       string             `bson:"email,omitempty"`
	Biometrics  domain.Biometrics  `bson:"biometrics"`
	Progression domain.Progression `bson:"progression"`
	Version     int64              `bson:"version"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *mongoPlayer) toDomain() *domain.Player {
	return &domain.Player{
		ID:          d.ID.Hex(),
		Username:    d.Username,
		Email:       d.Email,
		Biometrics:  d.Biometrics,
		Progression: d.Progression,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Create inserts a new player document. Duplicate usernames surface as
// domain.ErrUserExists (a unique index backs this).
func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoPlayer{
		Username:    p.Username,
		Email:       p.Email,
		Biometrics:  p.Biometrics,
		Progression: p.Progression,
		Version:     1,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert player: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *PlayerRepository) FindByID(ctx context.Context, id string) (*domain.Player, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPlayerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPlayer
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("find player: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PlayerRepository) FindByUsername(ctx context.Context, username string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPlayer
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("find player: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateBiometrics replaces the onboarding answers. The version bump keeps an
// in-flight ledger commit from silently overwriting this write (it will see a
// conflict and retry).
func (r *PlayerRepository) UpdateBiometrics(ctx context.Context, id string, b domain.Biometrics) (*domain.Player, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPlayerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"biometrics": b, "updated_at": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoPlayer
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("update biometrics: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the necessary indexes on the players collection.
func (r *PlayerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
