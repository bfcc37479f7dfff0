package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

const collectionDrivers = "drivers"

type DriverRepository struct {
	col *mongo.Collection
}

func NewDriverRepository(db *mongo.Database) *DriverRepository {
	return &DriverRepository{col: db.Collection(collectionDrivers)}
}

// Create inserts a new driver profile. One profile per user account.
func (r *DriverRepository) Create(ctx context.Context, d *domain.Driver) (*domain.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	d.ID = primitive.NewObjectID().Hex()
	_, err := r.col.InsertOne(ctx, d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDriverExists
		}
		return nil, err
	}
	return d, nil
}

func (r *DriverRepository) FindByID(ctx context.Context, id string) (*domain.Driver, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *DriverRepository) FindByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *DriverRepository) findOne(ctx context.Context, filter bson.M) (*domain.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.Driver
	err := r.col.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, err
	}
	return &d, nil
}

// UpdateLocation records the driver's latest known position.
func (r *DriverRepository) UpdateLocation(ctx context.Context, id string, pos domain.Coordinates, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"last_location": bson.M{"lat": pos.Lat, "lng": pos.Lng},
			"located_at":    at.UTC(),
		},
	})
}

// SetVerification applies the admin decision on the driver's documents.
func (r *DriverRepository) SetVerification(ctx context.Context, id string, status domain.VerificationStatus) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"verification": string(status)},
	})
}

// AddEarnings increments the driver's completion counters.
func (r *DriverRepository) AddEarnings(ctx context.Context, id string, deliveries int64, amountUSD float64) error {
	return r.updateOne(ctx, id, bson.M{
		"$inc": bson.M{
			"earnings.deliveries_completed": deliveries,
			"earnings.total_usd":            amountUSD,
		},
	})
}

func (r *DriverRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrDriverNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the drivers collection.
func (r *DriverRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "verification", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
