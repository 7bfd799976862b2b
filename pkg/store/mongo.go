package store

import (
	"context"
	"errors"

	"github.com/chanhyuk05/tayobell/pkg/transit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore relies on the unique (stationid, routeno) index on the calls
// collection for call uniqueness.
type MongoStore struct {
	Snapshots *mongo.Collection
	Calls     *mongo.Collection
}

func NewMongoStore(snapshots *mongo.Collection, calls *mongo.Collection) *MongoStore {
	return &MongoStore{
		Snapshots: snapshots,
		Calls:     calls,
	}
}

func keyFilter(stationID string, routeNo string) bson.M {
	return bson.M{"stationid": stationID, "routeno": routeNo}
}

// UpsertSnapshot only matches a stored snapshot with an older capturedat. When
// a newer one is stored the upsert collides with the unique key index and the
// write is dropped as stale.
func (m *MongoStore) UpsertSnapshot(ctx context.Context, snapshot transit.ArrivalSnapshot) error {
	filter := keyFilter(snapshot.StationID, snapshot.RouteNo)
	filter["capturedat"] = bson.M{"$lt": snapshot.CapturedAt}

	_, err := m.Snapshots.UpdateOne(
		ctx,
		filter,
		bson.M{"$set": snapshot},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}

	return err
}

func (m *MongoStore) FindSnapshot(ctx context.Context, stationID string, routeNo string) (*transit.ArrivalSnapshot, error) {
	var snapshot *transit.ArrivalSnapshot
	err := m.Snapshots.FindOne(ctx, keyFilter(stationID, routeNo)).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	return snapshot, err
}

func (m *MongoStore) ListSnapshots(ctx context.Context, stationID string) ([]transit.ArrivalSnapshot, error) {
	cursor, err := m.Snapshots.Find(ctx, bson.M{"stationid": stationID}, options.Find().SetSort(bson.D{{Key: "routeno", Value: 1}}))
	if err != nil {
		return nil, err
	}

	snapshots := []transit.ArrivalSnapshot{}
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}

	return snapshots, nil
}

func (m *MongoStore) CreateCall(ctx context.Context, record transit.CallRecord) (bool, error) {
	_, err := m.Calls.InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	return true, nil
}

func (m *MongoStore) DeleteCall(ctx context.Context, stationID string, routeNo string) error {
	_, err := m.Calls.DeleteOne(ctx, keyFilter(stationID, routeNo))
	return err
}

func (m *MongoStore) FindCall(ctx context.Context, stationID string, routeNo string) (*transit.CallRecord, error) {
	var record *transit.CallRecord
	err := m.Calls.FindOne(ctx, keyFilter(stationID, routeNo)).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	return record, err
}

func (m *MongoStore) ListCalls(ctx context.Context, stationID string) ([]transit.CallRecord, error) {
	cursor, err := m.Calls.Find(ctx, bson.M{"stationid": stationID}, options.Find().SetSort(bson.D{{Key: "routeno", Value: 1}}))
	if err != nil {
		return nil, err
	}

	records := []transit.CallRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}
