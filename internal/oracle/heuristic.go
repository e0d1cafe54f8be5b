package oracle

import (
	"context"
	"strings"
	"time"

	"group-planner/internal/models"
)

// Heuristic is a rule-based oracle. It stands in for a genuine
// plan-authoring backend; callers must not rely on its keyword behavior.
type Heuristic struct {
	now func() time.Time
}

// NewHeuristic creates a heuristic oracle using the wall clock.
func NewHeuristic() *Heuristic {
	return &Heuristic{now: time.Now}
}

// NewHeuristicAt creates a heuristic oracle with a fixed clock.
func NewHeuristicAt(now func() time.Time) *Heuristic {
	return &Heuristic{now: now}
}

// Propose builds a default plan for the upcoming Saturday.
func (h *Heuristic) Propose(_ context.Context, event EventContext, _ PreferenceSet) (PlanDraft, error) {
	return PlanDraft{
		Date:       h.nextSaturday().Format("2006-01-02"),
		Time:       "2:00 PM - 5:00 PM",
		Location:   "Central Park",
		Activities: []string{"Picnic", "Board Games", "Nature Walk"},
		Accommodations: map[string]string{
			"dietary":       "Vegetarian options available",
			"accessibility": "Accessible paths available",
			"children":      "Playground nearby for kids",
		},
		Notes: "In case of rain, we'll meet at Coffee House on Main St instead. " +
			"Everyone should bring a water bottle and comfortable shoes.",
		Reasoning: "This plan accommodates everyone's schedule preferences while providing " +
			"a mix of activities that align with participants' interests. The location is " +
			"centrally located and offers options for both active and passive participation.",
	}, nil
}

// Revise adjusts the prior draft based on keywords in the feedback.
func (h *Heuristic) Revise(_ context.Context, prior PlanDraft, feedback, _ string) (PlanDraft, error) {
	revised := prior
	revised.Activities = append([]string(nil), prior.Activities...)
	revised.Accommodations = make(map[string]string, len(prior.Accommodations))
	for k, v := range prior.Accommodations {
		revised.Accommodations[k] = v
	}

	lower := strings.ToLower(feedback)

	if strings.Contains(lower, "time") {
		revised.Time = "3:00 PM - 6:00 PM"
		revised.Notes += "\nTime adjusted based on participant feedback."
	}
	if strings.Contains(lower, "location") {
		revised.Location = "Riverside Park"
		revised.Notes += "\nLocation changed based on participant feedback."
	}
	if strings.Contains(lower, "activity") || strings.Contains(lower, "activities") {
		revised.Activities = []string{"Picnic", "Frisbee", "Card Games"}
		revised.Notes += "\nActivities adjusted based on participant preferences."
	}

	return revised, nil
}

// FollowUp suggests one advisory question past the canonical list.
func (h *Heuristic) FollowUp(_ context.Context, _ EventContext, _ []models.QuestionResponse) (string, error) {
	return "Based on what you've shared so far, is there anything specific that would make this event perfect for you?", nil
}

func (h *Heuristic) nextSaturday() time.Time {
	now := h.now()
	days := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}
