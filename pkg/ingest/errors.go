package ingest

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline a submission failed.
type Stage string

const (
	StageMatching       Stage = "matching"
	StageDisambiguating Stage = "disambiguating"
	StageClaiming       Stage = "claiming"
	StageHarvesting     Stage = "harvesting"
	StageExtracting     Stage = "extracting"
	StagePersisting     Stage = "persisting"
)

// StageError is a stage-local failure re-raised with the original cause
// preserved for diagnostics. The orchestrator never retries across stages; a
// failed submission ends and the caller resubmits.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// FailedStage reports which stage an error belongs to, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
