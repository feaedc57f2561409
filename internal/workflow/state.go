package workflow

import "github.com/tmalunga/syllabussense/pkg/models"

// State is the mutable working record threaded through one topic's pass over
// the graph. A fresh State is created per topic; nothing in it survives to
// the next topic.
type State struct {
	// Topic is the input section, set before the run and never mutated.
	Topic models.Topic

	// Subtopics is produced by subtopic extraction.
	Subtopics []models.Subtopic

	// QuestionPlan is produced by question planning.
	QuestionPlan models.QuestionPlan

	// PlanPosition is the cursor into QuestionPlan: the index of the first
	// slot not yet handed to generation.
	PlanPosition int

	// BatchSize is the configured number of slots per generation call.
	BatchSize int

	// CurrentBatch holds the slots selected for the generation call in
	// flight. Empty means the plan is exhausted.
	CurrentBatch []models.PlannedQuestion

	// CurrentQuestions holds the questions produced for CurrentBatch.
	CurrentQuestions []models.Question

	// Questions accumulates every question produced for this topic.
	Questions []models.Question
}
