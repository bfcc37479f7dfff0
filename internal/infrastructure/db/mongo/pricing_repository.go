package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

const collectionPricing = "pricing_config"

// PricingRepository stores the versioned zone/price table as a single
// document per version; the highest version is current.
type PricingRepository struct {
	col *mongo.Collection
}

func NewPricingRepository(db *mongo.Database) *PricingRepository {
	return &PricingRepository{col: db.Collection(collectionPricing)}
}

type pricingDoc struct {
	Version   int64         `bson:"version"`
	Zones     []domain.Zone `bson:"zones"`
	CreatedAt time.Time     `bson:"created_at"`
}

var errNoPricingConfig = errors.New("no pricing configuration installed")

// Current returns the latest installed pricing configuration.
func (r *PricingRepository) Current(ctx context.Context) (*ports.PricingConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})

	var doc pricingDoc
	err := r.col.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errNoPricingConfig
		}
		return nil, err
	}
	return &ports.PricingConfig{Version: doc.Version, Zones: doc.Zones}, nil
}

// Replace installs a new zone table with the next version number. Older
// versions are kept for quote auditability.
func (r *PricingRepository) Replace(ctx context.Context, zones []domain.Zone) (*ports.PricingConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	next := int64(1)
	current, err := r.Current(ctx)
	if err == nil {
		next = current.Version + 1
	} else if !errors.Is(err, errNoPricingConfig) {
		return nil, err
	}

	doc := pricingDoc{
		Version:   next,
		Zones:     zones,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return &ports.PricingConfig{Version: next, Zones: zones}, nil
}

// SeedIfEmpty installs the given default zones when no configuration exists.
func (r *PricingRepository) SeedIfEmpty(ctx context.Context, zones []domain.Zone) error {
	_, err := r.Current(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errNoPricingConfig) {
		return err
	}
	_, err = r.Replace(ctx, zones)
	return err
}
