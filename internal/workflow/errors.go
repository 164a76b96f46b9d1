package workflow

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failed stage.
type Kind string

const (
	KindIngestion  Kind = "ingestion"
	KindBuild      Kind = "build"
	KindRetrieval  Kind = "retrieval"
	KindGeneration Kind = "generation"
	KindCanceled   Kind = "canceled"
	KindTimeout    Kind = "timeout"
	KindInternal   Kind = "internal"
)

// StageError is a failure that aborts a request.
type StageError struct {
	Stage State
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s failure: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// stageFailure attributes err to stage. Context errors take precedence over
// kind: a cancelled parent is Canceled, an expired stage deadline is Timeout.
func stageFailure(parent context.Context, stage State, kind Kind, err error) *StageError {
	switch {
	case parent.Err() != nil:
		kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	}
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// ErrorInfo is the serialisable form of a StageError.
type ErrorInfo struct {
	Stage   string `json:"stage"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func userMessage(e *StageError) string {
	switch e.Kind {
	case KindIngestion:
		return "I couldn't read the document. Please check that it is a readable PDF, markdown or text file."
	case KindBuild:
		return "I couldn't index the document. Please try again."
	case KindRetrieval:
		return "I couldn't search the document index. Please try again."
	case KindGeneration:
		return "I couldn't generate an answer. Please try again."
	case KindCanceled:
		return "The request was canceled before it completed."
	case KindTimeout:
		return fmt.Sprintf("The request timed out during %s. Please try again.", e.Stage)
	default:
		return "Something went wrong while processing your request."
	}
}
