package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal represents one planning engagement: the user's stated goal plus
// the AI-generated day-by-day roadmap attached to it.
type Goal struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Deadline          time.Time          `bson:"deadline" json:"deadline"`
	HoursPerDay       float64            `bson:"hours_per_day" json:"hours_per_day"`
	AdjustmentMessage *string            `bson:"adjustment_message,omitempty" json:"adjustment_message,omitempty"`
	Roadmap           []RoadmapEntry     `bson:"roadmap" json:"roadmap"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// RoadmapEntry is one planned day of work. Day numbers are nominally
// 1..N but become caller-controlled after roadmap edits, so the entry
// ID is the only stable handle.
type RoadmapEntry struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Day       int                `bson:"day" json:"day"`
	Task      string             `bson:"task" json:"task"`
	Completed bool               `bson:"completed" json:"completed"`
}

// GoalUpdate is the payload accepted by the roadmap replacement
// endpoint. Only the roadmap may be replaced after creation.
type GoalUpdate struct {
	Roadmap []RoadmapEntry `json:"roadmap"`
}
