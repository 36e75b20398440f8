package installation

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/sportdex/internal/domain"
	"github.com/kailas-cloud/sportdex/internal/domain/facility"
)

// Document field names.
const (
	fieldID                  = "_id"
	fieldLocation            = "location"
	fieldEquipments          = "equipments"
	fieldActivities          = "activities"
	fieldEquipmentID         = "equipments.id"
	fieldEquipmentActivities = "equipments.activities"
	fieldEquipmentCount      = "equipmentCount"
)

// Repo stores facility records in a document collection.
type Repo struct {
	coll *mongo.Collection
}

// New creates a facility repository.
func New(coll *mongo.Collection) *Repo {
	return &Repo{coll: coll}
}

// EnsureIndexes creates the 2dsphere index required by geo search.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldLocation, Value: "2dsphere"}},
		Options: options.Index().SetName("location_2dsphere"),
	})
	if err != nil {
		return wrap("create 2dsphere index", err)
	}
	return nil
}

// Upsert replaces the whole record with the same id, creating it if absent.
func (r *Repo) Upsert(ctx context.Context, f *facility.Facility) error {
	doc := normalize(*f)
	_, err := r.coll.ReplaceOne(ctx,
		bson.D{{Key: fieldID, Value: doc.ID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return wrap(fmt.Sprintf("upsert facility %s", doc.ID), err)
	}
	return nil
}

// AppendEquipment pushes e onto the equipments of facility facilityID.
// It reports false when no such facility exists; nothing is created then.
func (r *Repo) AppendEquipment(ctx context.Context, facilityID string, e facility.Equipment) (bool, error) {
	if e.Activities == nil {
		e.Activities = []string{}
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: fieldID, Value: facilityID}},
		bson.D{{Key: "$push", Value: bson.D{{Key: fieldEquipments, Value: e}}}},
	)
	if err != nil {
		return false, wrap(fmt.Sprintf("append equipment %s to %s", e.ID, facilityID), err)
	}
	return res.MatchedCount > 0, nil
}

// AppendActivity pushes activity onto the equipment equipmentID of facility
// facilityID and onto its facility-level activity list, in one update. When
// the equipment appears more than once, only its first entry receives the
// activity. It reports false when the facility has no such equipment.
func (r *Repo) AppendActivity(ctx context.Context, facilityID, equipmentID, activity string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: fieldID, Value: facilityID}, {Key: fieldEquipmentID, Value: equipmentID}},
		bson.D{{Key: "$push", Value: bson.D{
			{Key: "equipments.$.activities", Value: activity},
			{Key: fieldActivities, Value: activity},
		}}},
	)
	if err != nil {
		return false, wrap(fmt.Sprintf("append activity to equipment %s of %s", equipmentID, facilityID), err)
	}
	return res.MatchedCount > 0, nil
}

// EquipmentOwners maps each equipment id to the facility holding it. An id
// held by several facilities maps to the first one in natural order.
func (r *Repo) EquipmentOwners(ctx context.Context) (map[string]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "$natural", Value: 1}}).
		SetProjection(bson.D{{Key: fieldID, Value: 1}, {Key: fieldEquipmentID, Value: 1}})

	cur, err := r.coll.Find(ctx, bson.D{{Key: fieldEquipmentID, Value: bson.D{{Key: "$exists", Value: true}}}}, opts)
	if err != nil {
		return nil, wrap("list equipment owners", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	owners := map[string]string{}
	for cur.Next(ctx) {
		var doc struct {
			ID         string `bson:"_id"`
			Equipments []struct {
				ID string `bson:"id"`
			} `bson:"equipments"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, wrap("decode equipment owners", err)
		}
		for _, e := range doc.Equipments {
			if _, seen := owners[e.ID]; !seen && e.ID != "" {
				owners[e.ID] = doc.ID
			}
		}
	}
	if err := cur.Err(); err != nil {
		return nil, wrap("list equipment owners", err)
	}
	return owners, nil
}

// Get returns the record with the given id or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (facility.Facility, error) {
	var f facility.Facility
	err := r.coll.FindOne(ctx, bson.D{{Key: fieldID, Value: id}}).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return facility.Facility{}, fmt.Errorf("facility %s: %w", id, domain.ErrNotFound)
		}
		return facility.Facility{}, wrap(fmt.Sprintf("get facility %s", id), err)
	}
	return f, nil
}

// List returns up to limit records after skipping offset, in natural order.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]facility.Facility, error) {
	if limit <= 0 {
		return []facility.Facility{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "$natural", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, wrap("list facilities", err)
	}
	return decodeAll(ctx, cur)
}

// Count returns the number of records.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, wrap("count facilities", err)
	}
	return n, nil
}

// MaxEquipments returns a record with the largest number of equipments.
// Ties go to whichever record the engine yields first.
func (r *Repo) MaxEquipments(ctx context.Context) (facility.Facility, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{{Key: fieldEquipmentCount, Value: sizeOf(fieldEquipments)}}}},
		{{Key: "$sort", Value: bson.D{{Key: fieldEquipmentCount, Value: -1}}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$project", Value: bson.D{{Key: fieldEquipmentCount, Value: 0}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return facility.Facility{}, wrap("max equipments", err)
	}
	out, err := decodeAll(ctx, cur)
	if err != nil {
		return facility.Facility{}, err
	}
	if len(out) == 0 {
		return facility.Facility{}, fmt.Errorf("max equipments: %w", domain.ErrEmptyCollection)
	}
	return out[0], nil
}

// CountByActivity counts (facility, equipment, activity) triples per activity,
// most frequent first.
func (r *Repo) CountByActivity(ctx context.Context) ([]facility.ActivityCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$" + fieldEquipments}},
		{{Key: "$unwind", Value: "$" + fieldEquipmentActivities}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + fieldEquipmentActivities},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "activity", Value: "$_id"},
			{Key: "total", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "activity", Value: 1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrap("count by activity", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	out := []facility.ActivityCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrap("decode activity counts", err)
	}
	return out, nil
}

// AverageEquipments returns the mean number of equipments per record.
func (r *Repo) AverageEquipments(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: sizeOf(fieldEquipments)}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, wrap("average equipments", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var rows []struct {
		Average float64 `bson:"average"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, wrap("decode average", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("average equipments: %w", domain.ErrEmptyCollection)
	}
	return rows[0].Average, nil
}

// Near returns records within maxDistance meters of origin, nearest first.
func (r *Repo) Near(ctx context.Context, origin orb.Point, maxDistance float64) ([]facility.Facility, error) {
	filter := bson.D{{Key: fieldLocation, Value: bson.D{{Key: "$near", Value: bson.D{
		{Key: "$geometry", Value: facility.NewLocation(origin)},
		{Key: "$maxDistance", Value: maxDistance},
	}}}}}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, wrap("geo search", err)
	}
	return decodeAll(ctx, cur)
}

// Ping checks the document store connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.coll.Database().Client().Ping(ctx, nil); err != nil {
		return wrap("ping document store", err)
	}
	return nil
}

// wrap annotates err with msg, marking connection failures and timeouts
// as domain.ErrStoreUnavailable.
func wrap(msg string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]facility.Facility, error) {
	defer func() { _ = cur.Close(ctx) }()

	out := []facility.Facility{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrap("decode facilities", err)
	}
	return out, nil
}

// sizeOf counts the elements of an array field, treating a missing field as empty.
func sizeOf(field string) bson.D {
	return bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}}}
}

// normalize replaces nil slices with empty ones so appends find an array.
func normalize(f facility.Facility) facility.Facility {
	if f.Equipments == nil {
		f.Equipments = []facility.Equipment{}
	}
	for i := range f.Equipments {
		if f.Equipments[i].Activities == nil {
			f.Equipments[i].Activities = []string{}
		}
	}
	if f.Activities == nil {
		f.Activities = []string{}
	}
	if f.Location.Type == "" {
		f.Location.Type = facility.GeoJSONPoint
	}
	return f
}
