package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agensilive/agensi_backend/config"
	"github.com/agensilive/agensi_backend/models"
)

// SessionRepository persists live sessions. The live_sessions collection
// carries a partial unique index on userId over open sessions, which is what
// makes Insert safe against two concurrent clock-ins.
type SessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(db *mongo.Client) *SessionRepository {
	return &SessionRepository{
		collection: config.GetCollection(db, "live_sessions"),
	}
}

// FindOpenByUser implements services.SessionStore.
func (r *SessionRepository) FindOpenByUser(ctx context.Context, userID primitive.ObjectID) (*models.LiveSession, error) {
	var session models.LiveSession
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "checkOut": nil}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Insert implements services.SessionStore. A second open session trips the
// partial unique index and surfaces as a ConflictError.
func (r *SessionRepository) Insert(ctx context.Context, session *models.LiveSession) (primitive.ObjectID, error) {
	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, &models.ConflictError{Message: "open session already exists"}
		}
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// GetOpen implements services.SessionStore.
func (r *SessionRepository) GetOpen(ctx context.Context, id, userID primitive.ObjectID) (*models.LiveSession, error) {
	var session models.LiveSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "userId": userID, "checkOut": nil}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Message: "open session not found"}
		}
		return nil, err
	}
	return &session, nil
}

// Close implements services.SessionStore. The checkOut filter makes closing
// idempotent: a session closed by a concurrent request reports NotFound.
func (r *SessionRepository) Close(ctx context.Context, id primitive.ObjectID, checkOut time.Time, durationMinutes int) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "checkOut": nil},
		bson.M{"$set": bson.M{"checkOut": checkOut, "durationMinutes": durationMinutes}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Message: "open session not found"}
	}
	return nil
}

// ListByUserAndPeriod returns all sessions for a creator whose date falls in
// the given "YYYY-MM" period, ordered by check-in.
func (r *SessionRepository) ListByUserAndPeriod(ctx context.Context, userID primitive.ObjectID, period string) ([]models.LiveSession, error) {
	filter := bson.M{
		"userId": userID,
		"date":   bson.M{"$regex": "^" + period},
	}
	opts := options.Find().SetSort(bson.D{{Key: "checkIn", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.LiveSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListOpen returns every currently open session, for the admin live feed.
func (r *SessionRepository) ListOpen(ctx context.Context) ([]models.LiveSession, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"checkOut": nil})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.LiveSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
