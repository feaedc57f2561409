// Package workflow implements the syllabus-to-question-bank pipeline as a
// small stage graph. Five stages run per topic: subtopic extraction, question
// planning, batch selection, batch question generation and question saving,
// with a conditional edge looping saving back to selection until the plan is
// exhausted. Model failures degrade stages to empty defaults; only context
// cancellation and infrastructure errors abort a run.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/tmalunga/syllabussense/internal/config"
	"github.com/tmalunga/syllabussense/internal/genai"
	"github.com/tmalunga/syllabussense/internal/syllabus"
	"github.com/tmalunga/syllabussense/internal/util"
	"github.com/tmalunga/syllabussense/internal/writer"
	"github.com/tmalunga/syllabussense/pkg/models"
)

// Stage names, as they appear in logs, metrics and routing.
const (
	StageSubtopicExtraction = "subtopic_extraction"
	StageQuestionPlanning   = "question_planning"
	StageBatchSelection     = "batch_selection"
	StageBatchGeneration    = "batch_question_generation"
	StageQuestionSaving     = "question_saving"
)

// Routing labels for the edge out of question saving.
const (
	routeContinue = "continue"
	routeEnd      = "end"
)

// Workflow drives the pipeline over every topic a source yields.
type Workflow struct {
	cfg    *config.Config
	svc    genai.Service
	source syllabus.Source
	sink   writer.Sink
	obs    Observer
	logger *slog.Logger
	stats  *models.SessionStats

	// lastSavedPosition is the plan position remembered by the loop guard.
	// It is scoped to the run, not the topic.
	lastSavedPosition int

	showProgress bool
	bar          *progressbar.ProgressBar
}

// NewWorkflow wires a workflow over the given collaborators. A nil observer
// is replaced with a no-op one.
func NewWorkflow(cfg *config.Config, svc genai.Service, source syllabus.Source, sink writer.Sink, obs Observer, logger *slog.Logger, showProgress bool) *Workflow {
	if obs == nil {
		obs = NoopObserver{}
	}
	return &Workflow{
		cfg:               cfg,
		svc:               svc,
		source:            source,
		sink:              sink,
		obs:               obs,
		logger:            logger,
		stats:             &models.SessionStats{},
		lastSavedPosition: -1,
		showProgress:      showProgress,
	}
}

// Stats returns the run counters. Valid after Run returns.
func (w *Workflow) Stats() *models.SessionStats {
	return w.stats
}

// Run processes topics from the source until it is exhausted or the
// configured topic cap is reached. The returned stats are valid even when an
// error is returned.
func (w *Workflow) Run(ctx context.Context) (*models.SessionStats, error) {
	w.stats.StartTime = time.Now()
	defer func() {
		w.stats.EndTime = time.Now()
		w.stats.TotalDuration = w.stats.EndTime.Sub(w.stats.StartTime)
	}()

	graph := w.buildGraph()
	if err := graph.Validate(); err != nil {
		return w.stats, err
	}

	limit := w.cfg.Generation.TopicsNum
	for limit == 0 || w.stats.TopicsProcessed < limit {
		topic, err := w.source.Next()
		if errors.Is(err, syllabus.ErrExhausted) {
			break
		}
		if err != nil {
			return w.stats, fmt.Errorf("failed to read next topic: %w", err)
		}

		w.logger.Info("processing topic", "title", topic.Title)
		st := &State{Topic: topic, BatchSize: w.cfg.Generation.BatchSize}
		if err := graph.Run(ctx, st); err != nil {
			w.finishProgress()
			return w.stats, fmt.Errorf("topic %q: %w", topic.Title, err)
		}
		w.finishProgress()

		w.stats.TopicsProcessed++
		w.obs.OnTopicDone(topic.Title, len(st.Questions))
		w.logger.Info("topic complete",
			"title", topic.Title,
			"planned", st.QuestionPlan.Len(),
			"generated", len(st.Questions))
	}

	w.logger.Info("run complete",
		"topics", w.stats.TopicsProcessed,
		"planned", w.stats.QuestionsPlanned,
		"generated", w.stats.QuestionsGenerated,
		"saved", w.stats.QuestionsSaved,
		"degraded_stages", w.stats.DegradedStages,
		"stall_warnings", w.stats.StallWarnings)
	return w.stats, nil
}

func (w *Workflow) buildGraph() *Graph {
	return NewGraph(w.obs).
		AddNode(StageSubtopicExtraction, w.subtopicExtraction).
		AddNode(StageQuestionPlanning, w.questionPlanning).
		AddNode(StageBatchSelection, w.batchSelection).
		AddNode(StageBatchGeneration, w.batchGeneration).
		AddNode(StageQuestionSaving, w.questionSaving).
		AddEdge(StageSubtopicExtraction, StageQuestionPlanning).
		AddEdge(StageQuestionPlanning, StageBatchSelection).
		AddEdge(StageBatchSelection, StageBatchGeneration).
		AddEdge(StageBatchGeneration, StageQuestionSaving).
		AddConditionalEdge(StageQuestionSaving, ConditionalEdge{
			Decide: w.routeAfterSave,
			Routes: map[string]string{
				routeContinue: StageBatchSelection,
				routeEnd:      End,
			},
		}).
		SetEntryPoint(StageSubtopicExtraction)
}

// routeAfterSave decides whether to loop back for another batch. The loop
// guard compares the plan position against the position remembered at the
// previous evaluation; seeing the same position twice while wanting to
// continue means no progress is being made and the topic is forced to end.
// The remembered position is updated on every evaluation and carries across
// topics within a run.
func (w *Workflow) routeAfterSave(st *State) string {
	pos := st.PlanPosition
	decision := routeEnd
	if pos < st.QuestionPlan.Len() {
		decision = routeContinue
	}

	if decision == routeContinue && pos == w.lastSavedPosition {
		w.logger.Warn("loop stall detected, forcing topic to end",
			"topic", st.Topic.Title,
			"position", pos,
			"plan_size", st.QuestionPlan.Len())
		w.stats.StallWarnings++
		w.obs.OnStall(st.Topic.Title, pos)
		decision = routeEnd
	}
	w.lastSavedPosition = pos
	return decision
}

func (w *Workflow) resetProgress(total int, topic string) {
	w.finishProgress()
	if !w.showProgress || total == 0 {
		return
	}
	w.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(util.TruncateString(topic, 30)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func (w *Workflow) advanceProgress(n int) {
	if w.bar != nil && n > 0 {
		_ = w.bar.Add(n)
	}
}

func (w *Workflow) finishProgress() {
	if w.bar != nil {
		_ = w.bar.Finish()
		w.bar = nil
	}
}
