package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

const collectionTaskGroups = "task_groups"

type TaskGroupRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewTaskGroupRepository(db *mongo.Database) *TaskGroupRepository {
	return &TaskGroupRepository{db: db, col: db.Collection(collectionTaskGroups)}
}

// CreateGroupsAndCommit inserts new task group documents at version 0 and
// replaces every affected order inside the same transaction. A version
// precondition failure on any order aborts the whole transaction, so a
// conflicting order write can never leave orphaned groups behind.
func (r *TaskGroupRepository) CreateGroupsAndCommit(ctx context.Context, groups []*domain.TaskGroup, orders []*domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	docs := make([]interface{}, 0, len(groups))
	for _, g := range groups {
		g.ID = primitive.NewObjectID().Hex()
		g.Version = 0
		docs = append(docs, g)
	}

	orderCol := r.db.Collection(collectionOrders)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.col.InsertMany(sc, docs); err != nil {
			return nil, err
		}
		for _, o := range orders {
			if err := replaceVersioned(sc, orderCol, o.ID, o.Version, orderVersionBumped(o)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	for _, o := range orders {
		o.Version++
	}
	return nil
}

func (r *TaskGroupRepository) FindByID(ctx context.Context, id string) (*domain.TaskGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var g domain.TaskGroup
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// FindByOrderID returns every group holding line items of the order.
func (r *TaskGroupRepository) FindByOrderID(ctx context.Context, orderID string) ([]*domain.TaskGroup, error) {
	return r.findAll(ctx, bson.M{"line_items.order_id": orderID})
}

// FindByDriverID returns the groups currently assigned to the driver.
func (r *TaskGroupRepository) FindByDriverID(ctx context.Context, driverID string) ([]*domain.TaskGroup, error) {
	return r.findAll(ctx, bson.M{"driver_id": driverID})
}

func (r *TaskGroupRepository) findAll(ctx context.Context, filter bson.M) ([]*domain.TaskGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []*domain.TaskGroup
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CommitTransition persists the group and every affected order inside one
// transaction. Each replace is guarded by a compare-and-set on the version
// read by the caller; a failed precondition on any document aborts the whole
// transaction and surfaces domain.ErrVersionConflict with nothing written.
func (r *TaskGroupRepository) CommitTransition(ctx context.Context, group *domain.TaskGroup, orders []*domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	orderCol := r.db.Collection(collectionOrders)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := replaceVersioned(sc, r.col, group.ID, group.Version, versionBumped(group)); err != nil {
			return nil, err
		}
		for _, o := range orders {
			if err := replaceVersioned(sc, orderCol, o.ID, o.Version, orderVersionBumped(o)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	group.Version++
	for _, o := range orders {
		o.Version++
	}
	return nil
}

// replaceVersioned swaps a document iff its stored version matches expected.
func replaceVersioned(ctx context.Context, col *mongo.Collection, id string, expected int64, doc interface{}) error {
	res, err := col.ReplaceOne(ctx, bson.M{"_id": id, "version": expected}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func versionBumped(g *domain.TaskGroup) domain.TaskGroup {
	out := *g
	out.Version = g.Version + 1
	return out
}

func orderVersionBumped(o *domain.Order) domain.Order {
	out := *o
	out.Version = o.Version + 1
	return out
}

// EnsureIndexes creates necessary indexes on the task_groups collection.
func (r *TaskGroupRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "line_items.order_id", Value: 1}}},
		{Keys: bson.D{{Key: "driver_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
