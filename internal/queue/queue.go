package queue

import (
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const TaskTypeRunPipeline = "pipeline:run"

type RunPipelinePayload struct {
	Reason string `json:"reason"`
}

// EnqueueRun schedules one publish cycle on the worker. Fire-and-forget:
// callers never wait for the cycle.
func EnqueueRun(client *asynq.Client, reason string) error {
	payload, err := json.Marshal(RunPipelinePayload{Reason: reason})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeRunPipeline, payload)
	if _, err := client.Enqueue(task); err != nil {
		return err
	}

	slog.Info("pipeline run enqueued", "reason", reason)
	return nil
}
