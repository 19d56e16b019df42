package markerstore

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultDatabase = "moviecatalog"

// MongoStore implements RemoteStore on a MongoDB database. Documents
// use the stringified movie id as _id, matching the layout every other
// client of the shared store expects.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to the remote store at uri.
func NewMongo(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to marker store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach marker store: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(defaultDatabase)}, nil
}

// Close disconnects from the remote store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func docKey(movieID int) string {
	return strconv.Itoa(movieID)
}

type markerDoc struct {
	Key      string `bson:"_id"`
	ID       int    `bson:"id"`
	Title    string `bson:"title"`
	Username string `bson:"username"`
}

// Set upserts the document keyed by ref.ID.
func (s *MongoStore) Set(ctx context.Context, coll Collection, ref MovieRef) error {
	doc := markerDoc{Key: docKey(ref.ID), ID: ref.ID, Title: ref.Title, Username: ref.Username}
	_, err := s.db.Collection(string(coll)).ReplaceOne(
		ctx,
		bson.M{"_id": doc.Key},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s/%d: %w", coll, ref.ID, err)
	}
	return nil
}

// Delete removes the document keyed by movieID.
func (s *MongoStore) Delete(ctx context.Context, coll Collection, movieID int) error {
	_, err := s.db.Collection(string(coll)).DeleteOne(ctx, bson.M{"_id": docKey(movieID)})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%d: %w", coll, movieID, err)
	}
	return nil
}

// List returns a snapshot of all documents in the collection.
func (s *MongoStore) List(ctx context.Context, coll Collection) ([]MovieRef, error) {
	cursor, err := s.db.Collection(string(coll)).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", coll, err)
	}
	defer cursor.Close(ctx)

	var refs []MovieRef
	for cursor.Next(ctx) {
		var doc markerDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", coll, err)
		}
		refs = append(refs, MovieRef{ID: doc.ID, Title: doc.Title, Username: doc.Username})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", coll, err)
	}
	return refs, nil
}

// Contains reports whether a document for movieID exists.
func (s *MongoStore) Contains(ctx context.Context, coll Collection, movieID int) (bool, error) {
	err := s.db.Collection(string(coll)).FindOne(ctx, bson.M{"_id": docKey(movieID)}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s/%d: %w", coll, movieID, err)
	}
	return true, nil
}

// Watch subscribes to the collection's change stream. Events are
// reduced to set/removed per movie id; the channel closes when ctx is
// cancelled or the stream errors out.
func (s *MongoStore) Watch(ctx context.Context, coll Collection) (<-chan Event, error) {
	stream, err := s.db.Collection(string(coll)).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", coll, err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var change struct {
				OperationType string `bson:"operationType"`
				DocumentKey   struct {
					ID string `bson:"_id"`
				} `bson:"documentKey"`
			}
			if err := stream.Decode(&change); err != nil {
				continue
			}
			movieID, err := strconv.Atoi(change.DocumentKey.ID)
			if err != nil {
				continue
			}
			select {
			case events <- Event{
				Collection: coll,
				MovieID:    movieID,
				Removed:    change.OperationType == "delete",
			}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
