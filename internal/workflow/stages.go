package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tmalunga/syllabussense/internal/genai"
	"github.com/tmalunga/syllabussense/internal/util"
	"github.com/tmalunga/syllabussense/pkg/models"
)

// Planned-question status values.
const (
	statusPlanned    = "planned"
	statusGenerating = "generating"
)

// subtopicExtraction asks the model to break the topic's raw content into
// subtopics. On model failure the stage degrades to no subtopics, which ends
// the topic a few stages later with zero questions.
func (w *Workflow) subtopicExtraction(ctx context.Context, st *State) error {
	topicJSON, err := json.MarshalIndent(st.Topic, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal topic: %w", err)
	}

	prompt, err := util.RenderTemplate(w.cfg.PromptTemplates.SubtopicExtraction, map[string]any{
		"Subject":       w.cfg.Generation.Subject,
		"AcademicClass": w.cfg.Generation.AcademicClass,
		"TopicJSON":     string(topicJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to render extraction prompt: %w", err)
	}

	var resp models.SubtopicsResponse
	err = w.svc.Generate(ctx, genai.Request{
		System: w.cfg.PromptTemplates.SubtopicSystemPrompt,
		Prompt: prompt,
		Schema: genai.SubtopicsSchema,
	}, &resp)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.degrade(StageSubtopicExtraction, st.Topic.Title, err)
		st.Subtopics = nil
		return nil
	}

	st.Subtopics = resp.Subtopics
	w.logger.Info("extracted subtopics", "topic", st.Topic.Title, "count", len(st.Subtopics))
	return nil
}

// questionPlanning turns the subtopics into an ordered plan of question
// slots. With no subtopics, or on model failure, the plan is empty and the
// topic ends without generating anything.
func (w *Workflow) questionPlanning(ctx context.Context, st *State) error {
	st.PlanPosition = 0

	if len(st.Subtopics) == 0 {
		w.logger.Warn("no subtopics to plan for", "topic", st.Topic.Title)
		st.QuestionPlan = models.QuestionPlan{}
		return nil
	}

	subtopicsJSON, err := json.MarshalIndent(st.Subtopics, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal subtopics: %w", err)
	}

	prompt, err := util.RenderTemplate(w.cfg.PromptTemplates.QuestionPlanning, map[string]any{
		"Subject":       w.cfg.Generation.Subject,
		"SubtopicsJSON": string(subtopicsJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to render planning prompt: %w", err)
	}

	var plan models.QuestionPlan
	err = w.svc.Generate(ctx, genai.Request{
		System: w.cfg.PromptTemplates.PlanningSystemPrompt,
		Prompt: prompt,
		Schema: genai.QuestionPlanSchema,
	}, &plan)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.degrade(StageQuestionPlanning, st.Topic.Title, err)
		st.QuestionPlan = models.QuestionPlan{}
		return nil
	}

	for i := range plan.PlannedQuestions {
		pq := &plan.PlannedQuestions[i]
		if pq.QuestionID == "" {
			pq.QuestionID = uuid.NewString()
		}
		if pq.Topic == "" {
			pq.Topic = st.Topic.Title
		}
		pq.Status = statusPlanned
	}
	plan.TotalQuestions = plan.Len()

	st.QuestionPlan = plan
	w.stats.QuestionsPlanned += plan.Len()
	w.resetProgress(plan.Len(), st.Topic.Title)
	w.logger.Info("planned questions", "topic", st.Topic.Title, "count", plan.Len())
	return nil
}

// batchSelection slices the next batch of slots off the plan. The cursor
// advances only when the batch is non-empty; an empty batch is the
// exhaustion signal the routing edge acts on.
func (w *Workflow) batchSelection(_ context.Context, st *State) error {
	pos := st.PlanPosition
	total := st.QuestionPlan.Len()
	if pos >= total {
		st.CurrentBatch = nil
		return nil
	}

	end := min(pos+st.BatchSize, total)
	batch := make([]models.PlannedQuestion, end-pos)
	copy(batch, st.QuestionPlan.PlannedQuestions[pos:end])
	for i := range batch {
		batch[i].Status = statusGenerating
	}

	st.CurrentBatch = batch
	st.PlanPosition = end
	return nil
}

// batchGeneration produces finished questions for the current batch in a
// single model call. On failure, or when the batch's subtopic is missing
// from the extraction output, the stage degrades to zero questions but the
// cursor keeps its advance so the run moves on to the next batch.
func (w *Workflow) batchGeneration(ctx context.Context, st *State) error {
	if len(st.CurrentBatch) == 0 {
		st.CurrentQuestions = nil
		return nil
	}

	subtopic, ok := findSubtopic(st.Subtopics, st.CurrentBatch[0].Subtopic)
	if !ok {
		w.logger.Warn("batch references unknown subtopic, skipping",
			"topic", st.Topic.Title,
			"subtopic", st.CurrentBatch[0].Subtopic)
		w.degrade(StageBatchGeneration, st.Topic.Title, genai.ErrSchemaValidation)
		st.CurrentQuestions = nil
		return nil
	}

	batchJSON, err := json.MarshalIndent(st.CurrentBatch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	prompt, err := util.RenderTemplate(w.cfg.PromptTemplates.QuestionGeneration, map[string]any{
		"Subject":              w.cfg.Generation.Subject,
		"AcademicClass":        w.cfg.Generation.AcademicClass,
		"SubtopicName":         subtopic.SubtopicName,
		"TopicTitle":           st.Topic.Title,
		"LearningObjectives":   strings.Join(subtopic.LearningObjectives, "; "),
		"KeyConcepts":          strings.Join(subtopic.KeyConcepts, "; "),
		"AssessmentCriteria":   strings.Join(subtopic.AssessmentCriteria, "; "),
		"PlannedQuestionsJSON": string(batchJSON),
		"BatchSize":            len(st.CurrentBatch),
	})
	if err != nil {
		return fmt.Errorf("failed to render generation prompt: %w", err)
	}

	var resp models.QuestionsResponse
	err = w.svc.Generate(ctx, genai.Request{
		System: w.cfg.PromptTemplates.GenerationSystemPrompt,
		Prompt: prompt,
		Schema: genai.QuestionsSchema,
	}, &resp)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.degrade(StageBatchGeneration, st.Topic.Title, err)
		st.CurrentQuestions = nil
		return nil
	}

	st.CurrentQuestions = w.reconcileQuestions(st, resp.Questions)
	w.stats.QuestionsGenerated += len(st.CurrentQuestions)
	return nil
}

// reconcileQuestions aligns the model's output with the batch: IDs the model
// invented or dropped are replaced with the planned ones by position, topic
// and classification fields are stamped, and questions violating the
// multiple-choice invariant are discarded.
func (w *Workflow) reconcileQuestions(st *State, questions []models.Question) []models.Question {
	planned := make(map[string]models.PlannedQuestion, len(st.CurrentBatch))
	for _, pq := range st.CurrentBatch {
		planned[pq.QuestionID] = pq
	}

	kept := make([]models.Question, 0, len(questions))
	for i, q := range questions {
		pq, known := planned[q.QuestionID]
		if !known && i < len(st.CurrentBatch) {
			pq = st.CurrentBatch[i]
			q.QuestionID = pq.QuestionID
			known = true
		}
		if known && q.Difficulty == "" {
			q.Difficulty = pq.Difficulty
		}
		if q.Topic == "" {
			q.Topic = st.Topic.Title
		}
		if q.AcademicClass == "" {
			q.AcademicClass = w.cfg.Generation.AcademicClass
		}
		if q.ExaminationLevel == "" {
			q.ExaminationLevel = w.cfg.Generation.ExaminationLevel
		}

		if err := q.ValidateChoices(); err != nil {
			w.logger.Warn("discarding malformed question", "topic", st.Topic.Title, "error", err)
			continue
		}
		kept = append(kept, q)
	}

	if len(kept) != len(st.CurrentBatch) {
		w.logger.Warn("batch output did not match plan",
			"topic", st.Topic.Title,
			"planned", len(st.CurrentBatch),
			"kept", len(kept))
	}
	return kept
}

// questionSaving persists the current batch's questions. Sink failures are
// logged and counted but never abort the run; the questions remain in the
// state accumulator either way.
func (w *Workflow) questionSaving(_ context.Context, st *State) error {
	w.advanceProgress(len(st.CurrentBatch))

	if len(st.CurrentQuestions) == 0 {
		return nil
	}

	st.Questions = append(st.Questions, st.CurrentQuestions...)

	err := w.sink.Save(st.Topic.Title, st.CurrentQuestions)
	w.obs.OnSave(st.Topic.Title, len(st.CurrentQuestions), err)
	if err != nil {
		w.logger.Error("failed to save questions", "topic", st.Topic.Title, "error", err)
		w.stats.SaveFailures++
		return nil
	}

	w.stats.QuestionsSaved += len(st.CurrentQuestions)
	return nil
}

// degrade records a stage falling back to its empty default.
func (w *Workflow) degrade(stage, topic string, err error) {
	kind := classifyFailure(err)
	w.logger.Warn("stage degraded to empty output",
		"stage", stage,
		"topic", topic,
		"kind", kind,
		"error", err)
	w.stats.DegradedStages++
	w.obs.OnDegrade(stage, kind)
}

func classifyFailure(err error) string {
	switch {
	case errors.Is(err, genai.ErrSchemaValidation):
		return "schema"
	case errors.Is(err, genai.ErrDecode):
		return "decode"
	default:
		return "transport"
	}
}

func findSubtopic(subtopics []models.Subtopic, name string) (models.Subtopic, bool) {
	for _, s := range subtopics {
		if s.SubtopicName == name {
			return s, true
		}
	}
	return models.Subtopic{}, false
}
