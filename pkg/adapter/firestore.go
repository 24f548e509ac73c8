package adapter

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const firestoreCollection = "blobs"

// firestoreStore keeps each key as a document in a fixed collection
type firestoreStore struct {
	client *firestore.Client
}

type firestoreDoc struct {
	Value string `firestore:"value"`
}

// NewFirestoreStore creates a Firestore-backed KVStore
func NewFirestoreStore(ctx context.Context, projectID, databaseID string) (KVStore, error) {
	if projectID == "" {
		return nil, goerr.New("project ID is required")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	return &firestoreStore{client: client}, nil
}

func (s *firestoreStore) Get(ctx context.Context, key string) (string, bool, error) {
	snap, err := s.client.Collection(firestoreCollection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to get document", goerr.V("key", key))
	}

	var doc firestoreDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", false, goerr.Wrap(err, "failed to decode document", goerr.V("key", key))
	}
	return doc.Value, true, nil
}

func (s *firestoreStore) Set(ctx context.Context, key, value string) error {
	_, err := s.client.Collection(firestoreCollection).Doc(key).Set(ctx, firestoreDoc{Value: value})
	if err != nil {
		return goerr.Wrap(err, "failed to set document", goerr.V("key", key))
	}
	return nil
}

func (s *firestoreStore) Close() error {
	return s.client.Close()
}
