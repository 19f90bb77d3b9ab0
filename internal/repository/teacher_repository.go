package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TeacherRepository answers presence lookups against the teachers
// collection, which is keyed by username.
type TeacherRepository struct {
	collection *mongo.Collection
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *mongo.Database) *TeacherRepository {
	return &TeacherRepository{collection: db.Collection("teachers")}
}

// Exists reports whether a teacher document with the given username exists.
func (r *TeacherRepository) Exists(ctx context.Context, username string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"_id": username}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("lookup teacher %s: %w", username, err)
	}
	return true, nil
}
