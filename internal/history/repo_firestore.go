package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// FirestoreRepo implements Repo on a Firestore collection, one document per record.
type FirestoreRepo struct {
	client     *firestore.Client
	collection string
}

type firestoreDoc struct {
	OwnerID       string    `firestore:"ownerId"`
	CareerGoal    string    `firestore:"careerGoal"`
	ResumeScore   int       `firestore:"resumeScore"`
	Summary       string    `firestore:"summary"`
	MissingSkills []string  `firestore:"missingSkills"`
	Result        string    `firestore:"result"`
	Model         string    `firestore:"model"`
	Source        string    `firestore:"source"`
	CreatedAt     time.Time `firestore:"createdAt"`
}

// NewFirestoreRepo connects to projectID and stores records in collection.
func NewFirestoreRepo(ctx context.Context, projectID, collection string) (*FirestoreRepo, error) {
	if projectID == "" {
		return nil, errors.New("firestore project id is required")
	}
	if collection == "" {
		collection = "analyses"
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &FirestoreRepo{client: client, collection: collection}, nil
}

// Close releases the client.
func (r *FirestoreRepo) Close() error {
	return r.client.Close()
}

// Create writes the record under its ID.
func (r *FirestoreRepo) Create(ctx context.Context, rec Record) error {
	_, err := r.client.Collection(r.collection).Doc(rec.ID).Set(ctx, toFirestore(rec))
	if err != nil {
		return fmt.Errorf("firestore set %s/%s: %w", r.collection, rec.ID, err)
	}
	return nil
}

// ListByOwner returns records newest first.
func (r *FirestoreRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	limit, offset = clampPage(limit, offset)
	iter := r.client.Collection(r.collection).
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc).
		Offset(offset).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	out := []Record{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore query %s: %w", r.collection, err)
		}
		var doc firestoreDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
		}
		out = append(out, fromFirestore(snap.Ref.ID, doc))
	}
	return out, nil
}

// Latest returns the newest record for the owner.
func (r *FirestoreRepo) Latest(ctx context.Context, ownerID string) (Record, error) {
	items, err := r.ListByOwner(ctx, ownerID, 1, 0)
	if err != nil {
		return Record{}, err
	}
	if len(items) == 0 {
		return Record{}, ErrNotFound
	}
	return items[0], nil
}

func toFirestore(rec Record) firestoreDoc {
	return firestoreDoc{
		OwnerID:       rec.OwnerID,
		CareerGoal:    rec.CareerGoal,
		ResumeScore:   rec.ResumeScore,
		Summary:       rec.Summary,
		MissingSkills: nonNil(rec.MissingSkills),
		Result:        string(rec.Result),
		Model:         rec.Model,
		Source:        rec.Source,
		CreatedAt:     rec.CreatedAt.UTC(),
	}
}

func fromFirestore(id string, doc firestoreDoc) Record {
	return Record{
		ID:            id,
		OwnerID:       doc.OwnerID,
		CareerGoal:    doc.CareerGoal,
		ResumeScore:   doc.ResumeScore,
		Summary:       doc.Summary,
		MissingSkills: doc.MissingSkills,
		Result:        json.RawMessage(doc.Result),
		Model:         doc.Model,
		Source:        doc.Source,
		CreatedAt:     doc.CreatedAt,
	}
}
