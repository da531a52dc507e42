// Package prompt turns a pipeline stage and its inputs into the instruction
// pair sent to the model.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/amishk599/interviewsim/internal/model"
)

// ErrMissingPrevious is returned when a stage that consumes the previous
// stage's output is built without it.
var ErrMissingPrevious = errors.New("previous stage output is required")

// templateData is what every stage template sees.
type templateData struct {
	PainPoint       string
	CustomerProfile string
	PriorLearnings  string
	Previous        string
}

// Build renders the instructions for stage. previous is the text of the
// stage before it and is ignored for QuestionGeneration. Inputs are embedded
// verbatim; Build has no side effects and is deterministic.
func Build(stage model.Stage, ic model.InterviewContext, previous string) (model.Instructions, error) {
	switch stage {
	case model.QuestionGeneration:
		previous = ""
	case model.InterviewSimulation, model.Analysis:
		if strings.TrimSpace(previous) == "" {
			return model.Instructions{}, fmt.Errorf("build %s: %w", stage, ErrMissingPrevious)
		}
	case model.LearningsMerge:
		if !ic.HasPriorLearnings() {
			return model.Instructions{}, &model.InputError{Fields: []string{"prior learnings"}}
		}
		if strings.TrimSpace(previous) == "" {
			return model.Instructions{}, fmt.Errorf("build %s: %w", stage, ErrMissingPrevious)
		}
	default:
		return model.Instructions{}, fmt.Errorf("build: unknown stage %d", int(stage))
	}

	data := templateData{
		PainPoint:       ic.PainPoint,
		CustomerProfile: ic.CustomerProfile,
		PriorLearnings:  ic.PriorLearnings,
		Previous:        previous,
	}

	system, err := render(stage.String()+".system", data)
	if err != nil {
		return model.Instructions{}, err
	}
	user, err := render(stage.String()+".user", data)
	if err != nil {
		return model.Instructions{}, err
	}
	return model.Instructions{System: system, User: user}, nil
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := stageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
