package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/planmaster/planmaster/internal/apperrors"
	"github.com/sirupsen/logrus"
)

// MaxPlanDays is the hard cap on roadmap length. The prompt instructs
// the engine to condense longer plans, and the parsed result is
// truncated as well so the cap holds even when the engine ignores it.
const MaxPlanDays = 365

// PlanRequest carries the user's goal parameters into generation.
type PlanRequest struct {
	Title       string
	Description string
	Deadline    time.Time
	HoursPerDay float64
}

// PlanDay is one generated roadmap entry before entry ids are assigned.
type PlanDay struct {
	Day  int    `json:"day"`
	Task string `json:"task"`
}

// Plan is the normalized generation result. AdjustmentMessage is nil
// when the plan fits the requested deadline.
type Plan struct {
	AdjustmentMessage *string   `json:"adjustmentMessage"`
	Roadmap           []PlanDay `json:"roadmap"`
}

// Generator turns goal parameters into a bounded day-by-day plan using
// an external text-generation capability.
type Generator struct {
	client TextGenerator
	now    func() time.Time
}

func NewGenerator(client TextGenerator) *Generator {
	return &Generator{
		client: client,
		now:    time.Now,
	}
}

// BuildPrompt encodes the generation policy: the plan starts tomorrow,
// infeasible deadlines are extended, nothing exceeds MaxPlanDays, and
// any deviation from the requested deadline must be explained.
func BuildPrompt(req PlanRequest, now time.Time) string {
	daysUntilDeadline := int(req.Deadline.Sub(now).Hours() / 24)

	var b strings.Builder
	fmt.Fprintf(&b, "Create a day-by-day roadmap for the following goal.\n\n")
	fmt.Fprintf(&b, "Goal: %s\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&b, "Details: %s\n", req.Description)
	}
	fmt.Fprintf(&b, "Today's date: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "Requested deadline: %s (%d days from today)\n", req.Deadline.Format("2006-01-02"), daysUntilDeadline)
	fmt.Fprintf(&b, "Available time: %g hours per day\n\n", req.HoursPerDay)

	b.WriteString("Rules:\n")
	b.WriteString("1. The plan starts tomorrow (day 1 is the day after today's date).\n")
	fmt.Fprintf(&b, "2. The user wants to finish within %d days.\n", daysUntilDeadline)
	b.WriteString("3. If the goal cannot realistically be completed by the requested deadline at the stated daily capacity, extend the plan to a realistic length instead.\n")
	fmt.Fprintf(&b, "4. The plan must never exceed %d days. If a realistic plan would be longer, condense it to exactly %d days covering only the core essentials.\n", MaxPlanDays, MaxPlanDays)
	b.WriteString("5. If the plan deviates from the requested deadline, set adjustmentMessage to a short explanation of why. Otherwise set it to null.\n\n")

	b.WriteString("Respond with exactly one JSON object in this shape and no other text:\n")
	b.WriteString(`{"adjustmentMessage": string or null, "roadmap": [{"day": 1, "task": "..."}, ...]}`)

	return b.String()
}

// ParsePlan extracts the structured plan from raw completion text. The
// engine often wraps JSON in markdown fences, so those are stripped
// before the first-brace-to-last-brace slice is unmarshalled. A missing
// roadmap field yields an empty plan, not an error.
func ParsePlan(raw string) (*Plan, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in generated text", apperrors.ErrGeneration)
	}

	var plan Plan
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &plan); err != nil {
		return nil, fmt.Errorf("%w: malformed plan JSON: %v", apperrors.ErrGeneration, err)
	}

	if plan.Roadmap == nil {
		plan.Roadmap = []PlanDay{}
	}
	return &plan, nil
}

// GenerateRoadmap runs the full generation pipeline: prompt, one call
// to the external capability, parse, and cap enforcement. On any
// failure the caller receives ErrGeneration and nothing is persisted.
func (g *Generator) GenerateRoadmap(ctx context.Context, req PlanRequest) (*Plan, error) {
	prompt := BuildPrompt(req, g.now())

	raw, err := g.client.Generate(ctx, prompt)
	if err != nil {
		logrus.WithError(err).Error("Text generation call failed")
		return nil, err
	}

	plan, err := ParsePlan(raw)
	if err != nil {
		logrus.WithError(err).WithField("raw_length", len(raw)).Error("Failed to parse generated plan")
		return nil, err
	}

	if len(plan.Roadmap) > MaxPlanDays {
		logrus.WithField("days", len(plan.Roadmap)).Warn("Generated plan exceeds cap, truncating")
		plan.Roadmap = plan.Roadmap[:MaxPlanDays]
	}

	logrus.WithFields(logrus.Fields{
		"days":     len(plan.Roadmap),
		"adjusted": plan.AdjustmentMessage != nil,
	}).Info("Roadmap generated")

	return plan, nil
}
