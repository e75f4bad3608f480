// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package record

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
	"github.com/taibuivan/readanddownload/internal/platform/dberr"
)

// mongoDocument is the stored shape of a record.
type mongoDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	ISBN      string             `bson:"isbn"`
	Title     string             `bson:"title"`
	Author    string             `bson:"author"`
	Language  string             `bson:"language"`
	Date      string             `bson:"date"`
	Format    string             `bson:"format"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *mongoDocument) toRecord() *Record {
	return &Record{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		ISBN:      d.ISBN,
		Title:     d.Title,
		Author:    d.Author,
		Language:  d.Language,
		Date:      d.Date,
		Format:    d.Format,
		CreatedAt: d.CreatedAt,
	}
}

// mongoCountFields maps count fields to document keys.
var mongoCountFields = map[CountField]string{
	ByISBN: "isbn",
	ByUser: "userId",
}

// MongoRepository stores one kind in its own collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository returns a repository over kind.Collection.
func NewMongoRepository(db *mongo.Database, kind Kind) *MongoRepository {
	return &MongoRepository{collection: db.Collection(kind.Collection)}
}

// EnsureIndexes creates the unique isbn index and the userId lookup index.
// It is idempotent.
func (repository *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "isbn", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("isbn_unique"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_idx"),
		},
	})
	return dberr.Wrap(err, "ensure_indexes")
}

func (repository *MongoRepository) Create(ctx context.Context, record *Record) error {
	doc := mongoDocument{
		ID:        primitive.NewObjectID(),
		UserID:    record.UserID,
		ISBN:      record.ISBN,
		Title:     record.Title,
		Author:    record.Author,
		Language:  record.Language,
		Date:      record.Date,
		Format:    record.Format,
		CreatedAt: record.CreatedAt,
	}

	if _, err := repository.collection.InsertOne(ctx, doc); err != nil {
		return dberr.Wrap(err, "create_record")
	}

	record.ID = doc.ID.Hex()
	return nil
}

func (repository *MongoRepository) FindByID(ctx context.Context, id string) (*Record, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, dberr.ErrNotFound
	}

	var doc mongoDocument
	if err := repository.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, dberr.Wrap(err, "find_record")
	}

	return doc.toRecord(), nil
}

func (repository *MongoRepository) FindAll(ctx context.Context) ([]*Record, error) {
	cursor, err := repository.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, dberr.Wrap(err, "list_records")
	}

	var docs []mongoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dberr.Wrap(err, "decode_records")
	}

	records := make([]*Record, 0, len(docs))
	for i := range docs {
		records = append(records, docs[i].toRecord())
	}
	return records, nil
}

func (repository *MongoRepository) CountWhere(ctx context.Context, field CountField, value string) (int64, error) {
	key, ok := mongoCountFields[field]
	if !ok {
		return 0, apperr.Internal(fmt.Errorf("record: unsupported count field %q", field))
	}

	count, err := repository.collection.CountDocuments(ctx, bson.M{key: value})
	if err != nil {
		return 0, dberr.Wrap(err, "count_records")
	}
	return count, nil
}

// Update overwrites the mutable fields. id and date never change.
func (repository *MongoRepository) Update(ctx context.Context, record *Record) error {
	objectID, err := primitive.ObjectIDFromHex(record.ID)
	if err != nil {
		return dberr.ErrNotFound
	}

	result, err := repository.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"userId":   record.UserID,
			"isbn":     record.ISBN,
			"title":    record.Title,
			"author":   record.Author,
			"language": record.Language,
			"format":   record.Format,
		}},
	)
	if err != nil {
		return dberr.Wrap(err, "update_record")
	}

	if result.MatchedCount == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *MongoRepository) DeleteByID(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dberr.ErrNotFound
	}

	result, err := repository.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return dberr.Wrap(err, "delete_record")
	}

	if result.DeletedCount == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *MongoRepository) Ping(ctx context.Context) error {
	return repository.collection.Database().Client().Ping(ctx, readpref.Primary())
}
