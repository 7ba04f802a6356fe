package pipeline

import "github.com/felixgeelhaar/ace/internal/playbook"

// Stage output schemas. Each stage prompt instructs the model to answer
// with one JSON object in the corresponding shape.

// TrivialityCheck decides whether a session is worth analyzing at all.
type TrivialityCheck struct {
	Trivial bool   `json:"trivial"`
	Reason  string `json:"reason"`
}

// TrajectoryPoint is a single decision point in the reconstructed
// reasoning trajectory.
type TrajectoryPoint struct {
	Action                 string `json:"action"`
	ReconstructedReasoning string `json:"reconstructed_reasoning"`
	Outcome                string `json:"outcome"` // success, failure, neutral
	OutcomeAnalysis        string `json:"outcome_analysis"`
}

// TrajectoryOutput is the trajectory reconstructor's result.
type TrajectoryOutput struct {
	TrajectoryPoints []TrajectoryPoint `json:"trajectory_points"`
}

// Reflection covers both failure and success reflections; Type selects
// which of the field groups is populated.
type Reflection struct {
	Type string `json:"type"` // "failure" or "success"

	// failure fields
	ErrorIdentification string `json:"error_identification,omitempty"`
	RootCause           string `json:"root_cause,omitempty"`
	CorrectApproach     string `json:"correct_approach,omitempty"`

	// success fields
	SuccessIdentification string `json:"success_identification,omitempty"`
	ContributingFactors   string `json:"contributing_factors,omitempty"`
	GeneralizablePattern  string `json:"generalizable_pattern,omitempty"`

	KeyInsight string `json:"key_insight"`
}

// BulletFeedback tags an existing playbook bullet as helpful, harmful,
// or neutral for this session.
type BulletFeedback struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

// ReflectorOutput is the reflector's result.
type ReflectorOutput struct {
	Reflections    []Reflection     `json:"reflections"`
	BulletFeedback []BulletFeedback `json:"bullet_feedback"`
}

// CuratorOutput is the curator's result: the delta operations to apply,
// plus its reasoning for the log.
type CuratorOutput struct {
	Reasoning  string        `json:"reasoning"`
	Operations []playbook.Op `json:"operations"`
}
