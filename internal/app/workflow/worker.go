package workflow

import (
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	sdkworkflow "go.temporal.io/sdk/workflow"
)

// ChunkActivities is the activity set a worker registers; implemented by
// activities.SessionActivities. Declared here so worker wiring does not
// import the activities package directly.
type ChunkActivities interface{}

// RunWorker registers the session workflow and activities on the task queue
// and blocks until interrupted.
func RunWorker(c client.Client, taskQueue string, sessionWorkflow interface{}, acts ChunkActivities) error {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}

	w := worker.New(c, taskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(sessionWorkflow, sdkworkflow.RegisterOptions{
		Name: SessionWorkflowName,
	})
	w.RegisterActivity(acts)

	return w.Run(worker.InterruptCh())
}
