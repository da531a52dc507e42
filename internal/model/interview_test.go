package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestStagesFor(t *testing.T) {
	tests := []struct {
		name     string
		learning string
		want     int
	}{
		{"no learnings", "", 3},
		{"blank learnings", "   \n", 3},
		{"with learnings", "Previously found price sensitivity is high", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic := InterviewContext{PainPoint: "p", CustomerProfile: "c", PriorLearnings: tt.learning}
			got := StagesFor(ic)
			if len(got) != tt.want {
				t.Fatalf("len(StagesFor) = %d, want %d", len(got), tt.want)
			}
			if got[0] != QuestionGeneration || got[1] != InterviewSimulation || got[2] != Analysis {
				t.Errorf("unexpected order: %v", got)
			}
			if tt.want == 4 && got[3] != LearningsMerge {
				t.Errorf("last stage = %v, want LearningsMerge", got[3])
			}
		})
	}
}

func TestInterviewContext_Validate(t *testing.T) {
	tests := []struct {
		name       string
		ic         InterviewContext
		wantFields []string
	}{
		{"valid", InterviewContext{PainPoint: "p", CustomerProfile: "c"}, nil},
		{"missing pain point", InterviewContext{CustomerProfile: "c"}, []string{"pain point"}},
		{"blank profile", InterviewContext{PainPoint: "p", CustomerProfile: "  \t"}, []string{"customer profile"}},
		{"both missing", InterviewContext{PriorLearnings: "x"}, []string{"pain point", "customer profile"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ic.Validate()
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Validate() = %v, want *InputError", err)
			}
			if strings.Join(inputErr.Fields, ",") != strings.Join(tt.wantFields, ",") {
				t.Errorf("Fields = %v, want %v", inputErr.Fields, tt.wantFields)
			}
		})
	}
}

func TestStage_String(t *testing.T) {
	if QuestionGeneration.String() != "question_generation" {
		t.Errorf("String() = %q", QuestionGeneration.String())
	}
	if Stage(99).String() != "unknown" {
		t.Errorf("String() = %q, want unknown", Stage(99).String())
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"input", &InputError{Fields: []string{"pain point", "customer profile"}}, "Please fill in the pain point and customer profile to continue."},
		{"auth", &AuthError{}, "authentication failed: no API key provided. Please check your API key."},
		{"no model", fmt.Errorf("select: %w", ErrNoAvailableModel), "No available models found. Please check your API key and model access permissions."},
		{
			"stage transport",
			&StageError{Stage: InterviewSimulation, Err: fmt.Errorf("invoke: %w", &TransportError{Err: errors.New("connection reset")})},
			"Simulated Interview failed: transport error: connection reset",
		},
		{
			"stage timeout",
			&StageError{Stage: Analysis, Err: &TransportError{Timeout: true, Err: errors.New("deadline exceeded")}},
			"Interview Analysis failed: transport error (timeout): deadline exceeded",
		},
		{
			"stage local failure names stage once",
			&StageError{Stage: InterviewSimulation, Err: errors.New("build prompt: previous stage output is required")},
			"Simulated Interview failed: build prompt: previous stage output is required",
		},
		{
			"rate limited with retry hint",
			&StageError{Stage: QuestionGeneration, Err: &TransportError{
				StatusCode: 429,
				Err:        &HTTPError{StatusCode: 429, RetryAfter: 12 * time.Second, Err: errors.New("slow down")},
			}},
			"Generated Interview Questions failed: transport error: HTTP 429: slow down (retry after 12s)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{" 3 ", 3 * time.Second},
		{"0", 0},
		{"-2", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		if got := ParseRetryAfter(tt.in); got != tt.want {
			t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPipelineRun_Result(t *testing.T) {
	run := &PipelineRun{Results: []StageResult{{Stage: QuestionGeneration, Text: "q"}}}
	if res, ok := run.Result(QuestionGeneration); !ok || res.Text != "q" {
		t.Errorf("Result(QuestionGeneration) = %+v, %v", res, ok)
	}
	if _, ok := run.Result(Analysis); ok {
		t.Error("Result(Analysis) should be absent")
	}
}
