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
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

const collectionChoices = "choice_log"

// ChoiceRepository implements ports.ChoiceRepository using MongoDB. Commit
// needs a transaction across two collections, so it holds the client as well
// as the database.
type ChoiceRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewChoiceRepository(client *mongo.Client, db *mongo.Database) *ChoiceRepository {
	return &ChoiceRepository{client: client, db: db}
}

type mongoChoice struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	PlayerID        primitive.ObjectID `bson:"player_id"`
	FoodName        string             `bson:"food_name"`
	Tag             string             `bson:"tag"`
	VitalityDelta   int                `bson:"vitality_delta"`
	ExperienceDelta int                `bson:"experience_delta"`
	Narrative       string             `bson:"narrative"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (d *mongoChoice) toDomain() *domain.ChoiceRecord {
	return &domain.ChoiceRecord{
		ID:              d.ID.Hex(),
		PlayerID:        d.PlayerID.Hex(),
		FoodName:        d.FoodName,
		Tag:             domain.ChoiceTag(d.Tag),
		VitalityDelta:   d.VitalityDelta,
		ExperienceDelta: d.ExperienceDelta,
		Narrative:       d.Narrative,
		CreatedAt:       d.CreatedAt,
	}
}

// Commit writes the choice record and the updated progression in one
// transaction. The profile update matches on the version read by the caller;
// a mismatch means another commit landed in between and surfaces as
// domain.ErrWriteConflict with nothing written. A log entry therefore never
// exists without its profile update, and vice versa.
func (r *ChoiceRepository) Commit(ctx context.Context, playerID string, expectedVersion int64, next domain.Progression, rec *domain.ChoiceRecord) error {
	oid, err := primitive.ObjectIDFromHex(playerID)
	if err != nil {
		return domain.ErrPlayerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", domain.ErrPersistenceUnavailable, err)
	}
	defer session.EndSession(ctx)

	players := r.db.Collection(collectionPlayers)
	choices := r.db.Collection(collectionChoices)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := players.UpdateOne(sc,
			bson.M{"_id": oid, "version": expectedVersion},
			bson.M{
				"$set": bson.M{"progression": next, "updated_at": time.Now().UTC()},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			n, err := players.CountDocuments(sc, bson.M{"_id": oid})
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, domain.ErrPlayerNotFound
			}
			return nil, domain.ErrWriteConflict
		}

		doc := mongoChoice{
			PlayerID:        oid,
			FoodName:        rec.FoodName,
			Tag:             string(rec.Tag),
			VitalityDelta:   rec.VitalityDelta,
			ExperienceDelta: rec.ExperienceDelta,
			Narrative:       rec.Narrative,
			CreatedAt:       rec.CreatedAt,
		}
		if _, err := choices.InsertOne(sc, doc); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) || errors.Is(err, domain.ErrWriteConflict) {
			return err
		}
		return fmt.Errorf("%w: commit choice: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

// List returns a page of a player's records, newest first, plus the total.
func (r *ChoiceRepository) List(ctx context.Context, filter ports.ChoiceFilter) ([]*domain.ChoiceRecord, int64, error) {
	oid, err := primitive.ObjectIDFromHex(filter.PlayerID)
	if err != nil {
		return nil, 0, domain.ErrPlayerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"player_id": oid}
	created := bson.M{}
	if !filter.DateFrom.IsZero() {
		created["$gte"] = filter.DateFrom.UTC()
	}
	if !filter.DateTo.IsZero() {
		created["$lte"] = filter.DateTo.UTC()
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	col := r.db.Collection(collectionChoices)

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count choices: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list choices: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*domain.ChoiceRecord
	for cursor.Next(ctx) {
		var doc mongoChoice
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode choice: %w", err)
		}
		records = append(records, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("list choices: %w", err)
	}

	return records, total, nil
}

// CountByTag counts a player's optimized and indulgent records since an instant.
func (r *ChoiceRepository) CountByTag(ctx context.Context, playerID string, since time.Time) (int64, int64, error) {
	oid, err := primitive.ObjectIDFromHex(playerID)
	if err != nil {
		return 0, 0, domain.ErrPlayerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	col := r.db.Collection(collectionChoices)
	base := bson.M{"player_id": oid, "created_at": bson.M{"$gte": since.UTC()}}

	countFor := func(tag domain.ChoiceTag) (int64, error) {
		query := bson.M{"tag": string(tag)}
		for k, v := range base {
			query[k] = v
		}
		return col.CountDocuments(ctx, query)
	}

	good, err := countFor(domain.ChoiceOptimized)
	if err != nil {
		return 0, 0, fmt.Errorf("count choices: %w", err)
	}
	bad, err := countFor(domain.ChoiceIndulgent)
	if err != nil {
		return 0, 0, fmt.Errorf("count choices: %w", err)
	}
	return good, bad, nil
}

// EnsureIndexes creates the necessary indexes on the choice log.
func (r *ChoiceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "player_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "player_id", Value: 1}, {Key: "tag", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.db.Collection(collectionChoices).Indexes().CreateMany(ctx, indexes)
	return err
}
