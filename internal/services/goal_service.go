package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/planmaster/planmaster/internal/ai"
	"github.com/planmaster/planmaster/internal/apperrors"
	"github.com/planmaster/planmaster/internal/models"
	"github.com/planmaster/planmaster/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GoalStore is the persistence surface the goal service depends on.
type GoalStore interface {
	InsertGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	FindByOwnerAndID(ctx context.Context, ownerID, goalID primitive.ObjectID) (*models.Goal, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Goal, error)
	MergeFields(ctx context.Context, ownerID, goalID primitive.ObjectID, fields bson.M) (*models.Goal, error)
	DeleteByOwnerAndID(ctx context.Context, ownerID, goalID primitive.ObjectID) error
}

// RoadmapGenerator produces a bounded day-by-day plan for a goal.
type RoadmapGenerator interface {
	GenerateRoadmap(ctx context.Context, req ai.PlanRequest) (*ai.Plan, error)
}

// GoalService encapsulates the business logic for goals: creation via
// the roadmap generator, reads, per-task toggling, roadmap replacement
// and deletion, all scoped to the owning user.
type GoalService struct {
	store     GoalStore
	generator RoadmapGenerator
}

// NewGoalService creates a new instance of GoalService.
func NewGoalService(store GoalStore, generator RoadmapGenerator) *GoalService {
	return &GoalService{
		store:     store,
		generator: generator,
	}
}

// CreateGoal generates a roadmap for the request and persists the goal
// with it atomically. When generation fails nothing is persisted.
func (s *GoalService) CreateGoal(ctx context.Context, ownerID primitive.ObjectID, req ai.PlanRequest) (*models.Goal, error) {
	if req.Title == "" {
		logger.Log.Warn("Goal title is empty during creation")
		return nil, fmt.Errorf("%w: goal title is required", apperrors.ErrValidation)
	}
	if req.HoursPerDay <= 0 {
		logger.Log.Warn("Non-positive hours per day during goal creation")
		return nil, fmt.Errorf("%w: hours per day must be positive", apperrors.ErrValidation)
	}

	plan, err := s.generator.GenerateRoadmap(ctx, req)
	if err != nil {
		logger.Log.WithError(err).Error("Roadmap generation failed, goal not created")
		return nil, err
	}

	roadmap := make([]models.RoadmapEntry, 0, len(plan.Roadmap))
	for _, day := range plan.Roadmap {
		roadmap = append(roadmap, models.RoadmapEntry{
			ID:        primitive.NewObjectID(),
			Day:       day.Day,
			Task:      day.Task,
			Completed: false,
		})
	}

	goal := &models.Goal{
		UserID:            ownerID,
		Title:             req.Title,
		Description:       req.Description,
		Deadline:          req.Deadline,
		HoursPerDay:       req.HoursPerDay,
		AdjustmentMessage: plan.AdjustmentMessage,
		Roadmap:           roadmap,
	}

	created, err := s.store.InsertGoal(ctx, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to persist goal")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStore, err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"goal_id": created.ID.Hex(),
		"days":    len(created.Roadmap),
	}).Info("Goal created with generated roadmap")

	return created, nil
}

// GetGoals retrieves all goals owned by the user.
func (s *GoalService) GetGoals(ctx context.Context, ownerID primitive.ObjectID) ([]models.Goal, error) {
	goals, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", ownerID.Hex()).Error("Failed to list goals")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStore, err)
	}
	return goals, nil
}

// GetGoal retrieves a single goal owned by the user.
func (s *GoalService) GetGoal(ctx context.Context, ownerID primitive.ObjectID, goalID string) (*models.Goal, error) {
	objID, err := primitive.ObjectIDFromHex(goalID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid goal ID", apperrors.ErrValidation)
	}

	goal, err := s.store.FindByOwnerAndID(ctx, ownerID, objID)
	if err != nil {
		return nil, s.storeErr(err, goalID)
	}
	return goal, nil
}

// ToggleTask flips the completed flag on one roadmap entry and persists
// the whole roadmap. The goal is loaded by (owner, goal) so a goal
// owned by someone else is indistinguishable from a missing one.
func (s *GoalService) ToggleTask(ctx context.Context, ownerID primitive.ObjectID, goalID, entryID string) (*models.Goal, error) {
	objID, err := primitive.ObjectIDFromHex(goalID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid goal ID", apperrors.ErrValidation)
	}
	entryObjID, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid task ID", apperrors.ErrValidation)
	}

	goal, err := s.store.FindByOwnerAndID(ctx, ownerID, objID)
	if err != nil {
		return nil, s.storeErr(err, goalID)
	}

	found := false
	for i := range goal.Roadmap {
		if goal.Roadmap[i].ID == entryObjID {
			goal.Roadmap[i].Completed = !goal.Roadmap[i].Completed
			found = true
			break
		}
	}
	if !found {
		logger.Log.WithFields(map[string]interface{}{
			"goal_id": goalID,
			"task_id": entryID,
		}).Warn("Task not found in roadmap")
		return nil, fmt.Errorf("%w: task not found", apperrors.ErrNotFound)
	}

	updated, err := s.store.MergeFields(ctx, ownerID, objID, bson.M{"roadmap": goal.Roadmap})
	if err != nil {
		return nil, s.storeErr(err, goalID)
	}

	logger.Log.WithFields(map[string]interface{}{
		"goal_id": goalID,
		"task_id": entryID,
	}).Info("Task completion toggled")

	return updated, nil
}

// ReplaceRoadmap replaces the goal's roadmap with the caller-supplied
// sequence. This is the only path for reordering, inserting or removing
// entries; days and entry ids are kept verbatim.
func (s *GoalService) ReplaceRoadmap(ctx context.Context, ownerID primitive.ObjectID, goalID string, update models.GoalUpdate) (*models.Goal, error) {
	objID, err := primitive.ObjectIDFromHex(goalID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid goal ID", apperrors.ErrValidation)
	}
	if update.Roadmap == nil {
		return nil, fmt.Errorf("%w: roadmap is required", apperrors.ErrValidation)
	}

	for i := range update.Roadmap {
		if update.Roadmap[i].ID.IsZero() {
			update.Roadmap[i].ID = primitive.NewObjectID()
		}
	}

	updated, err := s.store.MergeFields(ctx, ownerID, objID, bson.M{"roadmap": update.Roadmap})
	if err != nil {
		return nil, s.storeErr(err, goalID)
	}

	logger.Log.WithFields(map[string]interface{}{
		"goal_id": goalID,
		"days":    len(update.Roadmap),
	}).Info("Roadmap replaced")

	return updated, nil
}

// DeleteGoal removes the goal owned by the user. A repeat delete fails
// with NotFound.
func (s *GoalService) DeleteGoal(ctx context.Context, ownerID primitive.ObjectID, goalID string) error {
	objID, err := primitive.ObjectIDFromHex(goalID)
	if err != nil {
		return fmt.Errorf("%w: invalid goal ID", apperrors.ErrValidation)
	}

	if err := s.store.DeleteByOwnerAndID(ctx, ownerID, objID); err != nil {
		return s.storeErr(err, goalID)
	}

	logger.Log.WithField("goal_id", goalID).Info("Goal deleted")
	return nil
}

func (s *GoalService) storeErr(err error, goalID string) error {
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: goal %s", apperrors.ErrNotFound, goalID)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrStore, err)
}
