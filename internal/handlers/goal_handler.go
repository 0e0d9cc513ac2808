package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/planmaster/planmaster/internal/ai"
	"github.com/planmaster/planmaster/internal/apperrors"
	"github.com/planmaster/planmaster/internal/models"
	"github.com/planmaster/planmaster/internal/services"
	"github.com/planmaster/planmaster/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalHandler handles HTTP requests related to goals.
type GoalHandler struct {
	Service *services.GoalService
}

// NewGoalHandler creates a new instance of GoalHandler.
func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{Service: goalService}
}

type createGoalRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Deadline    string  `json:"deadline"`
	HoursPerDay float64 `json:"hours_per_day"`
}

func callerID(r *http.Request) (primitive.ObjectID, error) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return primitive.NilObjectID, fmt.Errorf("%w: missing credentials", apperrors.ErrAuth)
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid user ID in token", apperrors.ErrAuth)
	}
	return userID, nil
}

// CreateGoalHandler generates a roadmap for the submitted goal and
// persists it.
func (h *GoalHandler) CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during goal creation")
		respondError(w, fmt.Errorf("%w: invalid request payload", apperrors.ErrValidation))
		return
	}
	defer r.Body.Close()

	deadline, err := time.Parse("2006-01-02", req.Deadline)
	if err != nil {
		logrus.WithError(err).Warn("Invalid deadline format during goal creation")
		respondError(w, fmt.Errorf("%w: deadline must be YYYY-MM-DD", apperrors.ErrValidation))
		return
	}

	goal, err := h.Service.CreateGoal(r.Context(), userID, ai.PlanRequest{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
		HoursPerDay: req.HoursPerDay,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"goalID": goal.ID.Hex(),
	}).Info("Goal successfully created")

	respondJSON(w, http.StatusCreated, goal)
}

// GetGoalsHandler lists all goals owned by the caller.
func (h *GoalHandler) GetGoalsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	goals, err := h.Service.GetGoals(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}

	respondJSON(w, http.StatusOK, goals)
}

// GetGoalHandler fetches a single goal owned by the caller.
func (h *GoalHandler) GetGoalHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	goal, err := h.Service.GetGoal(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, goal)
}

// ToggleTaskHandler flips the completed state of one roadmap task.
func (h *GoalHandler) ToggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	vars := mux.Vars(r)
	goal, err := h.Service.ToggleTask(r.Context(), userID, vars["id"], vars["taskId"])
	if err != nil {
		respondError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"goalID": vars["id"],
		"taskID": vars["taskId"],
	}).Info("Task toggled")

	respondJSON(w, http.StatusOK, goal)
}

// ReplaceRoadmapHandler replaces a goal's roadmap with the submitted
// sequence. Only the roadmap may be updated after creation; any other
// field in the payload is rejected.
func (h *GoalHandler) ReplaceRoadmapHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request payload", apperrors.ErrValidation))
		return
	}
	defer r.Body.Close()

	for field := range raw {
		if field != "roadmap" {
			respondError(w, fmt.Errorf("%w: field %q cannot be updated", apperrors.ErrValidation, field))
			return
		}
	}

	var update models.GoalUpdate
	if rawRoadmap, ok := raw["roadmap"]; ok {
		if err := json.Unmarshal(rawRoadmap, &update.Roadmap); err != nil {
			respondError(w, fmt.Errorf("%w: invalid roadmap payload", apperrors.ErrValidation))
			return
		}
	}

	goal, err := h.Service.ReplaceRoadmap(r.Context(), userID, mux.Vars(r)["id"], update)
	if err != nil {
		respondError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"goalID": mux.Vars(r)["id"],
	}).Info("Roadmap successfully replaced")

	respondJSON(w, http.StatusOK, goal)
}

// DeleteGoalHandler deletes a goal owned by the caller.
func (h *GoalHandler) DeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	goalID := mux.Vars(r)["id"]
	if err := h.Service.DeleteGoal(r.Context(), userID, goalID); err != nil {
		respondError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID": userID.Hex(),
		"goalID": goalID,
	}).Info("Goal deleted successfully")

	w.WriteHeader(http.StatusNoContent)
}
