package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// CycleRunner executes one publish cycle. The app container implements it
// so the worker always reaches the current pipeline, including after a
// settings reload.
type CycleRunner interface {
	RunPipeline(ctx context.Context, reason string) error
}

type Worker struct {
	runner CycleRunner
}

func NewWorker(runner CycleRunner) *Worker {
	return &Worker{runner: runner}
}

func (w *Worker) HandleRunPipelineTask(ctx context.Context, task *asynq.Task) error {
	var payload RunPipelinePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	// A failed cycle is already recorded and reported by the pipeline.
	// Never hand the error back to the queue: a retry would start a fresh
	// cycle against the next asset, not redo this one.
	if err := w.runner.RunPipeline(ctx, payload.Reason); err != nil {
		slog.Error("pipeline cycle failed", "reason", payload.Reason, "error", err)
	}

	return nil
}
