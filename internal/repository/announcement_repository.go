package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/hsms-announcement-api/internal/models"
)

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	collection *mongo.Collection
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *mongo.Database) *AnnouncementRepository {
	return &AnnouncementRepository{collection: db.Collection("announcements")}
}

// sortNewestFirst orders by creation time descending. created_at is an
// RFC3339 UTC string, so lexicographic order matches chronological order.
var sortNewestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

// FindActive returns announcements whose date window contains the provided
// calendar date: start_date absent or <= today, and expiration_date >= today.
func (r *AnnouncementRepository) FindActive(ctx context.Context, today string) ([]models.Announcement, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"start_date": bson.M{"$exists": false}},
			bson.M{"start_date": bson.M{"$lte": today}},
		},
		"expiration_date": bson.M{"$gte": today},
	}

	cursor, err := r.collection.Find(ctx, filter, sortNewestFirst)
	if err != nil {
		return nil, fmt.Errorf("find active announcements: %w", err)
	}
	defer cursor.Close(ctx)

	announcements := []models.Announcement{}
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, fmt.Errorf("decode active announcements: %w", err)
	}
	return announcements, nil
}

// FindAll returns every announcement, newest-created first.
func (r *AnnouncementRepository) FindAll(ctx context.Context) ([]models.Announcement, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, sortNewestFirst)
	if err != nil {
		return nil, fmt.Errorf("find announcements: %w", err)
	}
	defer cursor.Close(ctx)

	announcements := []models.Announcement{}
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, fmt.Errorf("decode announcements: %w", err)
	}
	return announcements, nil
}

// GetByID returns a single announcement. Returns mongo.ErrNoDocuments when
// no document matches.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Announcement, error) {
	var announcement models.Announcement
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&announcement); err != nil {
		return nil, err
	}
	return &announcement, nil
}

// Insert stores a new announcement and assigns its identifier.
func (r *AnnouncementRepository) Insert(ctx context.Context, announcement *models.Announcement) error {
	result, err := r.collection.InsertOne(ctx, announcement)
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		announcement.ID = oid
	}
	return nil
}

// Replace overwrites message and date window wholesale and stamps the
// update metadata. It reports how many documents matched so the caller can
// distinguish a missing record.
func (r *AnnouncementRepository) Replace(ctx context.Context, id primitive.ObjectID, message string, startDate *string, expirationDate, updatedBy string) (int64, error) {
	set := bson.M{
		"message":         message,
		"expiration_date": expirationDate,
		"updated_by":      updatedBy,
		"updated_at":      time.Now().UTC().Format(time.RFC3339),
	}
	update := bson.M{"$set": set}
	if startDate != nil {
		set["start_date"] = *startDate
	} else {
		// A replace without a start date removes the field so the
		// announcement stays eligible for the active window.
		update["$unset"] = bson.M{"start_date": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return 0, fmt.Errorf("replace announcement: %w", err)
	}
	return result.MatchedCount, nil
}

// Delete removes an announcement, reporting how many documents were deleted.
func (r *AnnouncementRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete announcement: %w", err)
	}
	return result.DeletedCount, nil
}
