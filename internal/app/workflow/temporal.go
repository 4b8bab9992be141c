package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"koenote-pipeline/internal/app/model"
)

// DefaultTaskQueue is the task queue shared by the worker and the client.
const DefaultTaskQueue = "koenote-transcription-queue"

// SessionWorkflowName is invoked by name so the client does not depend on
// the worker-side workflow package.
const SessionWorkflowName = "SessionTranscriptionWorkflow"

// TemporalClient implements Client on a Temporal cluster.
type TemporalClient struct {
	temporalClient client.Client
	taskQueue      string
}

// NewTemporalClient dials the Temporal frontend at hostPort.
func NewTemporalClient(hostPort, namespace, taskQueue string) (*TemporalClient, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Temporal client: %w", err)
	}
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &TemporalClient{temporalClient: c, taskQueue: taskQueue}, nil
}

func (t *TemporalClient) StartSession(ctx context.Context, req SessionRequest) (string, error) {
	workflowID := fmt.Sprintf("session-%s-%d", req.SessionID, time.Now().Unix())

	we, err := t.temporalClient.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: t.taskQueue,
	}, SessionWorkflowName, req)
	if err != nil {
		return "", fmt.Errorf("failed to start workflow: %w", err)
	}

	return we.GetID(), nil
}

func (t *TemporalClient) Describe(ctx context.Context, executionID string) (Status, []byte, error) {
	resp, err := t.temporalClient.DescribeWorkflowExecution(ctx, executionID, "")
	if err != nil {
		return "", nil, fmt.Errorf("failed to describe workflow %s: %w", executionID, err)
	}

	status := MapStatus(resp.WorkflowExecutionInfo.Status)
	if status != StatusCompleted {
		return status, nil, nil
	}

	// Completed executions return immediately from Get.
	var result model.SessionResult
	if err := t.temporalClient.GetWorkflow(ctx, executionID, "").Get(ctx, &result); err != nil {
		return status, nil, nil
	}
	output, err := json.Marshal(result)
	if err != nil {
		return status, nil, nil
	}
	return status, output, nil
}

func (t *TemporalClient) History(ctx context.Context, executionID string) ([]Event, error) {
	iter := t.temporalClient.GetWorkflowHistory(ctx, executionID, "", false,
		enumspb.HISTORY_EVENT_FILTER_TYPE_ALL_EVENT)

	var events []Event
	for iter.HasNext() {
		event, err := iter.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read workflow history: %w", err)
		}
		events = append(events, Event{
			ID:        event.GetEventId(),
			Type:      event.GetEventType().String(),
			Timestamp: event.GetEventTime().AsTime(),
		})
	}
	return events, nil
}

func (t *TemporalClient) Close() {
	t.temporalClient.Close()
}

// SDKClient exposes the underlying connection for worker registration.
func (t *TemporalClient) SDKClient() client.Client {
	return t.temporalClient
}

// MapStatus maps the orchestrator's execution status to the caller-facing
// tri-state: running executions are processing, successful ones completed,
// every other terminal state failed.
func MapStatus(status enumspb.WorkflowExecutionStatus) Status {
	switch status {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return StatusProcessing
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return StatusCompleted
	default:
		return StatusFailed
	}
}
