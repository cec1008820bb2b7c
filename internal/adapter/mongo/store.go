// Package mongo persists catchments, rainfall events and simulation runs in
// MongoDB and backs the monitoring loop's CatchmentSource and ResultRecorder.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/couchcryptid/flood-risk-engine/internal/config"
	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

const (
	catchmentsCollection  = "catchments"
	eventsCollection      = "rainfall_events"
	simulationsCollection = "simulations"
)

// Store wraps the MongoDB client and database handles.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// Connect establishes the MongoDB connection, verifies it with a ping and
// ensures the indexes the service queries against.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(cfg.MongoDatabase),
		logger: logger,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	logger.Info("connected to mongodb", "database", cfg.MongoDatabase)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}

	indexes := map[string][]mongo.IndexModel{
		catchmentsCollection: {unique("catchment_id")},
		eventsCollection: {
			unique("event_id"),
			{Keys: bson.D{{Key: "generated_at", Value: -1}}},
		},
		simulationsCollection: {
			unique("simulation_id"),
			{Keys: bson.D{{Key: "catchment_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// ListCatchments returns every catchment in the collection.
func (s *Store) ListCatchments(ctx context.Context) ([]domain.Catchment, error) {
	cursor, err := s.db.Collection(catchmentsCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list catchments: %w", err)
	}
	var catchments []domain.Catchment
	if err := cursor.All(ctx, &catchments); err != nil {
		return nil, fmt.Errorf("decode catchments: %w", err)
	}
	return catchments, nil
}

// GetCatchment fetches one catchment by id.
func (s *Store) GetCatchment(ctx context.Context, id string) (domain.Catchment, error) {
	var c domain.Catchment
	err := s.db.Collection(catchmentsCollection).
		FindOne(ctx, bson.D{{Key: "catchment_id", Value: id}}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Catchment{}, fmt.Errorf("catchment %q: %w", id, domain.ErrNoCatchment)
	}
	if err != nil {
		return domain.Catchment{}, fmt.Errorf("get catchment %q: %w", id, err)
	}
	return c, nil
}

// GetRainfallEvent fetches one rainfall event by id.
func (s *Store) GetRainfallEvent(ctx context.Context, id string) (domain.RainfallEvent, error) {
	var e domain.RainfallEvent
	err := s.db.Collection(eventsCollection).
		FindOne(ctx, bson.D{{Key: "event_id", Value: id}}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.RainfallEvent{}, fmt.Errorf("rainfall event %q: %w", id, domain.ErrNoRainfallEvent)
	}
	if err != nil {
		return domain.RainfallEvent{}, fmt.Errorf("get rainfall event %q: %w", id, err)
	}
	return e, nil
}

// LatestRainfallEvent returns the most recently generated event of any type.
func (s *Store) LatestRainfallEvent(ctx context.Context) (domain.RainfallEvent, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "generated_at", Value: -1}})
	var e domain.RainfallEvent
	err := s.db.Collection(eventsCollection).FindOne(ctx, bson.D{}, opts).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.RainfallEvent{}, domain.ErrNoRainfallEvent
	}
	if err != nil {
		return domain.RainfallEvent{}, fmt.Errorf("latest rainfall event: %w", err)
	}
	return e, nil
}

// SaveRainfallEvent upserts an event by its deterministic id, so re-ingesting
// the same observation window is a no-op rather than a duplicate.
func (s *Store) SaveRainfallEvent(ctx context.Context, e domain.RainfallEvent) error {
	filter := bson.D{{Key: "event_id", Value: e.ID}}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(eventsCollection).ReplaceOne(ctx, filter, e, opts); err != nil {
		return fmt.Errorf("save rainfall event %q: %w", e.ID, err)
	}
	return nil
}

// simulationRecord is the stored form of a simulation run, with an audit id
// and notes wrapped around the result.
type simulationRecord struct {
	SimulationID            string    `bson:"simulation_id"`
	Notes                   string    `bson:"notes,omitempty"`
	CreatedAt               time.Time `bson:"created_at"`
	domain.SimulationResult `bson:",inline"`
}

// SaveSimulation records a simulation run with a fresh audit id.
func (s *Store) SaveSimulation(ctx context.Context, res domain.SimulationResult, notes string) error {
	rec := simulationRecord{
		SimulationID:     uuid.NewString(),
		Notes:            notes,
		CreatedAt:        time.Now().UTC(),
		SimulationResult: res,
	}
	if _, err := s.db.Collection(simulationsCollection).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("save simulation for %q: %w", res.CatchmentID, err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
