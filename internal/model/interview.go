package model

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// InterviewContext is the user-supplied input for one run. It is passed by
// value and never mutated once a run starts.
type InterviewContext struct {
	PainPoint       string `validate:"required,notblank"`
	CustomerProfile string `validate:"required,notblank"`
	PriorLearnings  string // optional, empty = absent
}

// HasPriorLearnings reports whether the learnings merge stage applies.
func (c InterviewContext) HasPriorLearnings() bool {
	return strings.TrimSpace(c.PriorLearnings) != ""
}

var contextValidator = newContextValidator()

func newContextValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks the required fields. Returns *InputError naming every
// missing field.
func (c InterviewContext) Validate() error {
	err := contextValidator.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	ie := &InputError{}
	for _, fe := range verrs {
		ie.Fields = append(ie.Fields, fieldLabel(fe.Field()))
	}
	return ie
}

func fieldLabel(field string) string {
	switch field {
	case "PainPoint":
		return "pain point"
	case "CustomerProfile":
		return "customer profile"
	default:
		return field
	}
}

// Stage is one discrete model invocation step of the pipeline.
type Stage int

const (
	QuestionGeneration Stage = iota
	InterviewSimulation
	Analysis
	LearningsMerge
)

func (s Stage) String() string {
	switch s {
	case QuestionGeneration:
		return "question_generation"
	case InterviewSimulation:
		return "interview_simulation"
	case Analysis:
		return "analysis"
	case LearningsMerge:
		return "learnings_merge"
	default:
		return "unknown"
	}
}

// Title is the heading renderers show above the stage output.
func (s Stage) Title() string {
	switch s {
	case QuestionGeneration:
		return "Generated Interview Questions"
	case InterviewSimulation:
		return "Simulated Interview"
	case Analysis:
		return "Interview Analysis"
	case LearningsMerge:
		return "Integrated Learnings"
	default:
		return "Unknown Stage"
	}
}

// StagesFor returns the ordered stages a run executes for ic: three, or four
// when prior learnings are present.
func StagesFor(ic InterviewContext) []Stage {
	stages := []Stage{QuestionGeneration, InterviewSimulation, Analysis}
	if ic.HasPriorLearnings() {
		stages = append(stages, LearningsMerge)
	}
	return stages
}

// Instructions is the system/user message pair sent for one stage.
type Instructions struct {
	System string
	User   string
}

// StageResult is the model output for one stage. Text is exactly what the
// provider returned.
type StageResult struct {
	Stage    Stage
	Text     string
	Model    string
	Duration time.Duration
}

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunAborted   RunStatus = "aborted"
)

// PipelineRun is the ordered record of one pipeline execution. When Status is
// RunAborted, Results holds the stages that finished before FailedStage.
type PipelineRun struct {
	ID          uuid.UUID
	Context     InterviewContext
	Model       string
	Results     []StageResult
	Status      RunStatus
	FailedStage Stage
	Err         error
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Result returns the result for stage s, if that stage ran.
func (r *PipelineRun) Result(s Stage) (StageResult, bool) {
	for _, res := range r.Results {
		if res.Stage == s {
			return res, true
		}
	}
	return StageResult{}, false
}

// UsageRecord is one row of the append-only usage log.
type UsageRecord struct {
	Timestamp       time.Time
	User            string
	Action          string
	PainPoint       string
	CustomerProfile string
}

// ActionInterviewStarted is the usage action logged when a run begins.
const ActionInterviewStarted = "Interview Started"

// Invoker sends one system/user instruction pair to a hosted model and
// returns the generated text.
type Invoker interface {
	Invoke(ctx context.Context, instr Instructions, modelID string) (string, error)
}

// ModelValidator checks whether a model identifier is servable with the
// current credential.
type ModelValidator interface {
	ValidateModel(ctx context.Context, modelID string) error
}

// UsageRecorder appends usage rows to a durable log.
type UsageRecorder interface {
	Record(ctx context.Context, rec UsageRecord) error
}

// RunNotifier is told about every finished run, completed or aborted.
type RunNotifier interface {
	NotifyRun(ctx context.Context, run *PipelineRun) error
}
