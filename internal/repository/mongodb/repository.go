package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
)

const (
	countsCollection   = "count_records"
	countersCollection = "counters"
	counterName        = "count_records"
)

// MongoDBRepository implements repository.Ledger on MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	counts   *mongo.Collection
	counters *mongo.Collection
	logger   *zap.Logger
	now      func() time.Time
}

var _ repository.Ledger = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects, verifies the connection and ensures the
// unique (item_name, date) index exists.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection.
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	r := &MongoDBRepository{
		client:   client,
		counts:   db.Collection(countsCollection),
		counters: db.Collection(countersCollection),
		logger:   logger,
		now:      time.Now,
	}

	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return r, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.counts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "item_name", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_item_date"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: -1}, {Key: "item_name", Value: 1}, {Key: "id", Value: -1}},
			Options: options.Index().SetName("idx_history_order"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create count indexes: %w", err)
	}
	return nil
}

// Get returns the entry for (itemName, date).
func (r *MongoDBRepository) Get(ctx context.Context, itemName, date string) (models.CountRecord, error) {
	var rec models.CountRecord
	err := r.counts.FindOne(ctx, bson.M{"item_name": itemName, "date": date}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CountRecord{}, repository.ErrNotFound
	}
	if err != nil {
		return models.CountRecord{}, fmt.Errorf("failed to find count: %w", err)
	}
	return rec, nil
}

// Upsert stores the record under its (item_name, date) key.
func (r *MongoDBRepository) Upsert(ctx context.Context, record models.CountRecord) (models.CountRecord, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return models.CountRecord{}, err
	}

	filter := bson.M{"item_name": record.ItemName, "date": record.Date}
	update := bson.M{
		"$set": bson.M{
			"yesterday_count":   record.YesterdayCount,
			"current_count":     record.CurrentCount,
			"restocks_received": record.RestocksReceived,
			"sold_calculated":   record.SoldCalculated,
		},
		"$setOnInsert": bson.M{
			"id":         id,
			"created_at": r.now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.CountRecord
	if err := r.counts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return models.CountRecord{}, fmt.Errorf("failed to upsert count: %w", err)
	}

	r.logger.Debug("count upserted", zap.String("item", stored.ItemName), zap.String("date", stored.Date), zap.Int64("id", stored.ID))
	return stored, nil
}

// nextID hands out monotonically increasing ids used for insertion ordering.
func (r *MongoDBRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": counterName},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate count id: %w", err)
	}
	return counter.Seq, nil
}

// ListByDate returns one day's entries ordered by item name.
func (r *MongoDBRepository) ListByDate(ctx context.Context, date string) ([]models.CountRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "item_name", Value: 1}})
	return r.find(ctx, bson.M{"date": date}, opts)
}

// ListPage returns one page of history and the total entry count.
func (r *MongoDBRepository) ListPage(ctx context.Context, offset, limit int) ([]models.CountRecord, int, error) {
	total, err := r.counts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count history: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "item_name", Value: 1}, {Key: "id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	records, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	return records, int(total), nil
}

// ListRange returns entries within the inclusive date range.
func (r *MongoDBRepository) ListRange(ctx context.Context, from, to string) ([]models.CountRecord, error) {
	filter := bson.M{}
	dateFilter := bson.M{}
	if from != "" {
		dateFilter["$gte"] = from
	}
	if to != "" {
		dateFilter["$lte"] = to
	}
	if len(dateFilter) > 0 {
		filter["date"] = dateFilter
	}

	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	return r.find(ctx, filter, opts)
}

// Delete removes the entry for (itemName, date).
func (r *MongoDBRepository) Delete(ctx context.Context, itemName, date string) error {
	res, err := r.counts.DeleteOne(ctx, bson.M{"item_name": itemName, "date": date})
	if err != nil {
		return fmt.Errorf("failed to delete count: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoDBRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.CountRecord, error) {
	cursor, err := r.counts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}

	records := make([]models.CountRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode counts: %w", err)
	}
	return records, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
