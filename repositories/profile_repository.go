package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agensilive/agensi_backend/config"
	"github.com/agensilive/agensi_backend/models"
)

// ProfileRepository reads and writes creator profiles. It backs the session
// resolver, so absence is reported as a NotFoundError the retry loop can
// treat as transient.
type ProfileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Client) *ProfileRepository {
	return &ProfileRepository{
		collection: config.GetCollection(db, "profiles"),
	}
}

// GetProfile implements services.ProfileStore.
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*models.CreatorProfile, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.ValidationError{Field: "id", Message: "invalid profile id"}
	}

	var profile models.CreatorProfile
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Message: "profile not found"}
		}
		return nil, err
	}
	return &profile, nil
}

// GetByEmail looks a profile up by its unique email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Message: "profile not found"}
		}
		return nil, err
	}
	return &profile, nil
}

// Insert creates a profile; a duplicate email violates the unique index and
// is reported as a ConflictError.
func (r *ProfileRepository) Insert(ctx context.Context, profile *models.CreatorProfile) (primitive.ObjectID, error) {
	result, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, &models.ConflictError{Message: "email already registered"}
		}
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

// UpdateStatus transitions a profile to a new status.
func (r *ProfileRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Message: "profile not found"}
	}
	return nil
}

// Update applies a partial update to compensation and profile fields.
func (r *ProfileRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Message: "profile not found"}
	}
	return nil
}

// List returns profiles filtered by role and/or status.
func (r *ProfileRepository) List(ctx context.Context, filter bson.M) ([]models.CreatorProfile, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.CreatorProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
