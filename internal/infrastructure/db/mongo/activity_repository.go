package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
)

const activityCollection = "console_activity"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	col *mongo.Collection
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(activityCollection)}
}

type activityDoc struct {
	ID         string    `bson:"_id"`
	ActorID    string    `bson:"actor_id,omitempty"`
	ActorEmail string    `bson:"actor_email,omitempty"`
	Action     string    `bson:"action"`
	TargetKind string    `bson:"target_kind"`
	TargetID   string    `bson:"target_id"`
	Detail     string    `bson:"detail,omitempty"`
	At         time.Time `bson:"at"`
}

func toActivityDoc(a *domain.Activity) activityDoc {
	return activityDoc{
		ID:         a.ID,
		ActorID:    a.ActorID,
		ActorEmail: a.ActorEmail,
		Action:     a.Action,
		TargetKind: a.TargetKind,
		TargetID:   a.TargetID,
		Detail:     a.Detail,
		At:         a.At.UTC(),
	}
}

func (d activityDoc) toDomain() domain.Activity {
	return domain.Activity{
		ID:         d.ID,
		ActorID:    d.ActorID,
		ActorEmail: d.ActorEmail,
		Action:     d.Action,
		TargetKind: d.TargetKind,
		TargetID:   d.TargetID,
		Detail:     d.Detail,
		At:         d.At.UTC(),
	}
}

// Insert stores one entry. Re-inserting an id already stored is a no-op,
// so a retried write never duplicates an entry.
func (r *ActivityRepository) Insert(ctx context.Context, a *domain.Activity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toActivityDoc(a)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// List returns a page of entries, newest first, and the total count.
func (r *ActivityRepository) List(ctx context.Context, page, limit int) ([]domain.Activity, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count activity: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetSkip(skipFor(page, limit)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find activity: %w", err)
	}
	defer cur.Close(ctx)

	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode activity: %w", err)
	}

	items := make([]domain.Activity, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toDomain())
	}
	return items, total, nil
}

// EnsureIndexes creates the indexes used by List and target lookups.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "target_kind", Value: 1}, {Key: "target_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func skipFor(page, limit int) int64 {
	if page < 1 || limit < 1 {
		return 0
	}
	return int64((page - 1) * limit)
}
