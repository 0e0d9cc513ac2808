package repository

import (
	"context"
	"time"

	"github.com/planmaster/planmaster/internal/models"
	"github.com/planmaster/planmaster/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GoalRepository handles database operations related to goals. All
// read/write paths except InsertGoal are scoped by owner id.
type GoalRepository struct {
	collection *mongo.Collection
}

// NewGoalRepository creates a new instance of GoalRepository.
func NewGoalRepository(db *mongo.Database) *GoalRepository {
	return &GoalRepository{
		collection: db.Collection("goals"),
	}
}

// InsertGoal persists a new goal with its full roadmap in one write.
func (r *GoalRepository) InsertGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert goal")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, mongo.ErrNilDocument
	}
	goal.ID = insertedID

	logger.Log.WithField("goal_id", goal.ID.Hex()).Info("Goal created successfully")
	return goal, nil
}

// FindByOwnerAndID fetches a goal matching both the goal id and the
// owner id. Returns mongo.ErrNoDocuments when no such goal exists.
func (r *GoalRepository) FindByOwnerAndID(ctx context.Context, ownerID, goalID primitive.ObjectID) (*models.Goal, error) {
	var goal models.Goal

	err := r.collection.FindOne(ctx, bson.M{"_id": goalID, "user_id": ownerID}).Decode(&goal)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", goalID.Hex()).Warn("Goal not found for owner")
		return nil, err
	}

	return &goal, nil
}

// ListByOwner fetches all goals owned by the given user in the store's
// natural order.
func (r *GoalRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Goal, error) {
	var goals []models.Goal

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": ownerID})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", ownerID.Hex()).Error("Failed to fetch goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var goal models.Goal
		if err := cursor.Decode(&goal); err != nil {
			logger.Log.WithError(err).Error("Failed to decode goal")
			return nil, err
		}
		goals = append(goals, goal)
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": ownerID.Hex(),
		"count":   len(goals),
	}).Info("Goals fetched successfully")

	return goals, nil
}

// MergeFields applies a $set of the given fields to the goal matching
// (ownerID, goalID) and returns the updated document. Returns
// mongo.ErrNoDocuments when no goal matches.
func (r *GoalRepository) MergeFields(ctx context.Context, ownerID, goalID primitive.ObjectID, fields bson.M) (*models.Goal, error) {
	fields["updated_at"] = time.Now()

	var updated models.Goal
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": goalID, "user_id": ownerID},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", goalID.Hex()).Warn("Failed to merge goal fields")
		return nil, err
	}

	logger.Log.WithField("goal_id", goalID.Hex()).Info("Goal updated successfully")
	return &updated, nil
}

// DeleteByOwnerAndID removes the goal matching (ownerID, goalID).
// Returns mongo.ErrNoDocuments when nothing was deleted.
func (r *GoalRepository) DeleteByOwnerAndID(ctx context.Context, ownerID, goalID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": goalID, "user_id": ownerID})
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", goalID.Hex()).Error("Failed to delete goal")
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	logger.Log.WithField("goal_id", goalID.Hex()).Info("Goal deleted successfully")
	return nil
}
