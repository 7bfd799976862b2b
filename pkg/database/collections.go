package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SnapshotsCollection = "arrival_snapshots"
	CallsCollection     = "call_records"
)

func createIndexes() {
	createCollectionIndexes(SnapshotsCollection, snapshotIndexes())
	createCollectionIndexes(CallsCollection, callIndexes())
}

func createCollectionIndexes(name string, indexes []mongo.IndexModel) {
	_, err := GetCollection(name).Indexes().CreateMany(context.Background(), indexes, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Str("collection", name).Msg("Creating Index")
	}
}

func routeKeyIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{
			{Key: "stationid", Value: 1},
			{Key: "routeno", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
}

// Snapshots are superseded in place and never expire.
func snapshotIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{routeKeyIndex()}
}

// Call uniqueness per (station, route) is enforced here
func callIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{routeKeyIndex()}
}
