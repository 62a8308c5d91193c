package usecase

import (
	"context"
	"fmt"
)

// StagedRun executes named stages in order and stops at the first failure.
// Stages already run stay committed; the store offers no cross-call rollback.
type StagedRun struct {
	stages []Stage
}

type Stage struct {
	Name string
	Fn   func(context.Context) error
}

// StageError reports which stage failed and how many stages completed before it.
type StageError struct {
	Stage     string
	Completed int
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func NewStagedRun() *StagedRun {
	return &StagedRun{stages: []Stage{}}
}

func (s *StagedRun) AddStage(name string, fn func(context.Context) error) {
	s.stages = append(s.stages, Stage{name, fn})
}

func (s *StagedRun) Execute(ctx context.Context) error {
	for i, stage := range s.stages {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: stage.Name, Completed: i, Err: err}
		}
		if err := stage.Fn(ctx); err != nil {
			return &StageError{Stage: stage.Name, Completed: i, Err: err}
		}
	}
	return nil
}
