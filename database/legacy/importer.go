// Package legacy imports users and reports from the legacy MongoDB
// document store. Document ids are kept as their ObjectID hex strings so
// submitter references stay intact; rows already present are skipped.
package legacy

import (
	"context"
	"fmt"
	"log"

	"github.com/greencampus/facility-reports/database"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 100

// Source yields raw documents of one collection
type Source interface {
	Each(ctx context.Context, collection string, fn func(raw bson.Raw) error) error
}

// Report per-collection import counts
type Report struct {
	Collection string
	Read       int64
	Imported   int64
	Skipped    int64
}

// Importer copies every legacy collection into the relational store
type Importer struct {
	db        *gorm.DB
	source    Source
	batchSize int
	dryRun    bool
}

// NewImporter creates an importer; batchSize <= 0 uses the default
func NewImporter(db *gorm.DB, source Source, batchSize int, dryRun bool) *Importer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Importer{db: db, source: source, batchSize: batchSize, dryRun: dryRun}
}

// Run imports users first so entry references resolve, then the reports
func (im *Importer) Run(ctx context.Context) ([]Report, error) {
	steps := []func(context.Context) (Report, error){
		func(ctx context.Context) (Report, error) {
			return importCollection(ctx, im, UsersCollection, (*userDoc).model)
		},
		func(ctx context.Context) (Report, error) {
			return importCollection(ctx, im, WasteCollection, (*wasteDoc).model)
		},
		func(ctx context.Context) (Report, error) {
			return importCollection(ctx, im, ResourcesCollection, (*resourceDoc).model)
		},
		func(ctx context.Context) (Report, error) {
			return importCollection(ctx, im, SpacesCollection, (*spaceDoc).model)
		},
	}

	reports := make([]Report, 0, len(steps))
	for _, step := range steps {
		report, err := step(ctx)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
		log.Printf("[Import] %s: read %d, imported %d, skipped %d",
			report.Collection, report.Read, report.Imported, report.Skipped)
	}
	return reports, nil
}

// importCollection decodes documents of type D and inserts the converted M
// rows batch by batch
func importCollection[D any, M any](ctx context.Context, im *Importer, collection string, convert func(*D) *M) (Report, error) {
	report := Report{Collection: collection}
	batch := make([]*M, 0, im.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n := int64(len(batch))
		if im.dryRun {
			report.Imported += n
			batch = batch[:0]
			return nil
		}

		var inserted int64
		err := database.TransactionWithContext(ctx, im.db, func(tx *gorm.DB) error {
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch)
			inserted = result.RowsAffected
			return result.Error
		})
		if err != nil {
			return fmt.Errorf("failed to insert %s batch: %w", collection, err)
		}
		report.Imported += inserted
		report.Skipped += n - inserted
		batch = batch[:0]
		return nil
	}

	err := im.source.Each(ctx, collection, func(raw bson.Raw) error {
		doc := new(D)
		if err := bson.Unmarshal(raw, doc); err != nil {
			return fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		report.Read++
		batch = append(batch, convert(doc))
		if len(batch) >= im.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	return report, flush()
}

// MongoSource reads collections from a live MongoDB database
type MongoSource struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens and pings the legacy database
func Connect(ctx context.Context, uri, dbName string) (*MongoSource, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoSource{client: client, db: client.Database(dbName)}, nil
}

// Each iterates the collection in natural order
func (s *MongoSource) Each(ctx context.Context, collection string, fn func(raw bson.Raw) error) error {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	for cursor.Next(ctx) {
		if err := fn(cursor.Current); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// Close disconnects the client
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
