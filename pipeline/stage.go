package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Stage is one actor of a pipeline. Run returns when the stage's input is exhausted,
// when it fails, or when ctx is done.
type Stage interface {
	Run(ctx context.Context) error
}

// StageFunc adapts a function to Stage.
type StageFunc func(ctx context.Context) error

// Run implements Stage.
func (f StageFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// RunStages runs every stage in its own goroutine and waits for all of them.
//
// It returns the first error. The context passed to the stages is canceled as soon as
// one of them fails.
func RunStages(ctx context.Context, stages ...Stage) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, stage := range stages {
		g.Go(func() error {
			return stage.Run(ctx)
		})
	}

	return g.Wait()
}
