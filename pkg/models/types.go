package models

import (
	"fmt"
	"time"
)

// ElementType identifies the kind of content fragment inside a topic.
type ElementType string

const (
	// ElementParagraph is a plain run of text.
	ElementParagraph ElementType = "paragraph"
	// ElementTable is a grid of cells, row-major.
	ElementTable ElementType = "table"
)

// Element is a single content fragment extracted from a syllabus document.
// Exactly one of Text or Rows is populated, depending on Type.
type Element struct {
	Type ElementType `json:"type"`
	Text string      `json:"text,omitempty"`
	Rows [][]string  `json:"rows,omitempty"`
}

// Topic is one top-level section of a syllabus document, as yielded by a
// topic source. Immutable once yielded.
type Topic struct {
	Title    string    `json:"title"`
	Elements []Element `json:"elements"`
}

// Subtopic is a derived unit of study within a topic, extracted by the
// language model from the topic's raw content.
type Subtopic struct {
	SubtopicName        string   `json:"subtopic_name"`
	TopicTitle          string   `json:"topic_title,omitempty"`
	AcademicClass       string   `json:"academic_class,omitempty"`
	Subject             string   `json:"subject,omitempty"`
	LearningObjectives  []string `json:"learning_objectives,omitempty"`
	KeyConcepts         []string `json:"key_concepts,omitempty"`
	AssessmentCriteria  []string `json:"assessment_criteria,omitempty"`
	SuggestedActivities []string `json:"suggested_activities,omitempty"`
}

// SubtopicsResponse is the expected shape of the subtopic extraction reply.
type SubtopicsResponse struct {
	Subtopics []Subtopic `json:"subtopics"`
}

// PlannedQuestion is a single slot in a question plan: intended coverage
// without final question text.
type PlannedQuestion struct {
	QuestionID  string `json:"question_id"`
	Topic       string `json:"topic,omitempty"`
	Subtopic    string `json:"subtopic"`
	Difficulty  string `json:"difficulty"`
	ConceptArea string `json:"concept_area,omitempty"`
	Status      string `json:"status,omitempty"` // planned, generating, completed
}

// QuestionPlan is the ordered coverage plan for one topic.
type QuestionPlan struct {
	PlannedQuestions []PlannedQuestion `json:"planned_questions"`
	TotalQuestions   int               `json:"total_questions,omitempty"`
}

// Len returns the number of planned slots.
func (p QuestionPlan) Len() int { return len(p.PlannedQuestions) }

// Choice is one answer option of a multiple-choice question.
type Choice struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Solution explains the correct answer.
type Solution struct {
	Explanation string   `json:"explanation"`
	Steps       []string `json:"steps,omitempty"`
}

// Question is a fully realized multiple-choice question. Immutable once
// created by the generation stage.
type Question struct {
	QuestionID       string   `json:"question_id"`
	Text             string   `json:"text"`
	Topic            string   `json:"topic"`
	Category         string   `json:"category,omitempty"`
	AcademicClass    string   `json:"academic_class,omitempty"`
	ExaminationLevel string   `json:"examination_level,omitempty"`
	Difficulty       string   `json:"difficulty"`
	Tags             []string `json:"tags,omitempty"`
	Choices          []Choice `json:"choices"`
	Solution         Solution `json:"solution"`
	Hint             string   `json:"hint,omitempty"`
}

// ValidateChoices checks the multiple-choice invariant: at least two choices
// and exactly one marked correct.
func (q Question) ValidateChoices() error {
	if len(q.Choices) < 2 {
		return fmt.Errorf("question %s: need at least 2 choices, got %d", q.QuestionID, len(q.Choices))
	}
	correct := 0
	for _, c := range q.Choices {
		if c.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("question %s: exactly one choice must be correct, got %d", q.QuestionID, correct)
	}
	return nil
}

// QuestionsResponse is the expected shape of the batch generation reply.
type QuestionsResponse struct {
	Questions []Question `json:"questions"`
}

// SessionStats tracks counters for one generation run.
type SessionStats struct {
	StartTime          time.Time
	EndTime            time.Time
	TopicsProcessed    int
	QuestionsPlanned   int
	QuestionsGenerated int
	QuestionsSaved     int
	DegradedStages     int
	StallWarnings      int
	SaveFailures       int
	TotalDuration      time.Duration
}
