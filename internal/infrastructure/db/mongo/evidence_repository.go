package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionEvidence = "evidence_refs"

// EvidenceRepository is the blob-reference registry for delivery proof
// photos. The blobs themselves live in external storage; this collection
// records which references are valid.
type EvidenceRepository struct {
	col *mongo.Collection
}

func NewEvidenceRepository(db *mongo.Database) *EvidenceRepository {
	return &EvidenceRepository{col: db.Collection(collectionEvidence)}
}

// Register records an uploaded reference. Re-registering is a no-op.
func (r *EvidenceRepository) Register(ctx context.Context, reference, uploadedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$setOnInsert": bson.M{
			"reference":   reference,
			"uploaded_by": uploadedBy,
			"uploaded_at": time.Now().UTC(),
		},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"reference": reference}, update, options.Update().SetUpsert(true))
	return err
}

// Exists reports whether the reference points at a registered blob.
func (r *EvidenceRepository) Exists(ctx context.Context, reference string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"reference": reference}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EnsureIndexes creates necessary indexes on the evidence_refs collection.
func (r *EvidenceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "reference", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
