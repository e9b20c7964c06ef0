package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"leadtrack/models"
)

// InteractionStore is the document collaborator holding interaction events.
type InteractionStore struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewInteractionStore(coll *mongo.Collection, timeout time.Duration) *InteractionStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &InteractionStore{coll: coll, timeout: timeout}
}

func (s *InteractionStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func mongoErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrDependencyUnavailable, op, err)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: interaction id %q", models.ErrInvalidInput, id)
	}
	return oid, nil
}

// Insert stores a new interaction document and fills in its generated id.
func (s *InteractionStore) Insert(ctx context.Context, in *models.Interaction) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if in.Order == nil {
		in.Order = []models.Order{}
	}
	res, err := s.coll.InsertOne(ctx, in)
	if err != nil {
		return mongoErr("insert interaction", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		in.ID = oid
	}
	return nil
}

// Update replaces the mutable content of an interaction by id.
func (s *InteractionStore) Update(ctx context.Context, id string, in *models.Interaction) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if in.Order == nil {
		in.Order = []models.Order{}
	}
	patch := bson.M{
		"lead_id":           in.LeadID,
		"call_id":           in.CallID,
		"interaction_type":  in.InteractionType,
		"interaction_date":  in.InteractionDate,
		"order":             in.Order,
		"interaction_notes": in.Notes,
		"follow_up":         in.FollowUp,
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": patch})
	if err != nil {
		return mongoErr("update interaction", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: interaction %s", models.ErrNotFound, id)
	}
	in.ID = oid
	return nil
}

func (s *InteractionStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mongoErr("delete interaction", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: interaction %s", models.ErrNotFound, id)
	}
	return nil
}

func (s *InteractionStore) FindByLead(ctx context.Context, leadID uint) ([]models.Interaction, error) {
	return s.find(ctx, bson.M{"lead_id": leadID})
}

func (s *InteractionStore) FindAll(ctx context.Context) ([]models.Interaction, error) {
	return s.find(ctx, bson.M{})
}

func (s *InteractionStore) find(ctx context.Context, filter bson.M) ([]models.Interaction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "interaction_date", Value: 1}}))
	if err != nil {
		return nil, mongoErr("find interactions", err)
	}
	defer cur.Close(ctx)

	var interactions []models.Interaction
	if err := cur.All(ctx, &interactions); err != nil {
		return nil, mongoErr("decode interactions", err)
	}
	return interactions, nil
}

// FindInWindow streams the loose metric projection of every interaction whose
// date falls in [start, end). Quantity and price are left untyped here so the
// aggregation can coerce malformed values instead of failing the scan.
func (s *InteractionStore) FindInWindow(ctx context.Context, start, end time.Time) ([]models.MetricDoc, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"interaction_date": bson.M{"$gte": start, "$lt": end}}
	projection := bson.M{"lead_id": 1, "interaction_date": 1, "order": 1}

	cur, err := s.coll.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, mongoErr("scan interactions", err)
	}
	defer cur.Close(ctx)

	var docs []models.MetricDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoErr("decode interaction scan", err)
	}
	return docs, nil
}
