package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	enumspb "go.temporal.io/api/enums/v1"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   enumspb.WorkflowExecutionStatus
		expected Status
	}{
		{"running maps to processing", enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING, StatusProcessing},
		{"completed maps to completed", enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED, StatusCompleted},
		{"failed maps to failed", enumspb.WORKFLOW_EXECUTION_STATUS_FAILED, StatusFailed},
		{"canceled maps to failed", enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED, StatusFailed},
		{"terminated maps to failed", enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED, StatusFailed},
		{"timed out maps to failed", enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT, StatusFailed},
		{"unspecified maps to failed", enumspb.WORKFLOW_EXECUTION_STATUS_UNSPECIFIED, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapStatus(tt.status))
		})
	}
}
