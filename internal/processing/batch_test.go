package processing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshworks/textgate/pkg/models"
)

func batchOf(n int) *models.BatchTextProcessingRequest {
	batch := &models.BatchTextProcessingRequest{}
	for i := 0; i < n; i++ {
		batch.Requests = append(batch.Requests, models.TextProcessingRequest{
			Text:      fmt.Sprintf("Document number %d has enough content to be processed by the pipeline.", i),
			Operation: models.OperationSummarize,
		})
	}
	return batch
}

func TestBatchProcessAllSucceed(t *testing.T) {
	svc, _, _ := newPipeline(t)
	orch := NewBatchOrchestrator(svc, 4)

	resp, err := orch.Process(context.Background(), batchOf(12))
	require.NoError(t, err)

	assert.Equal(t, 12, resp.TotalRequests)
	assert.Equal(t, 12, resp.Completed)
	assert.Equal(t, 0, resp.Failed)
	assert.NotEmpty(t, resp.BatchID)
	require.Len(t, resp.Results, 12)
	for i, r := range resp.Results {
		assert.Equal(t, i, r.RequestIndex)
		assert.Equal(t, models.BatchItemCompleted, r.Status)
		require.NotNil(t, r.Response)
	}
}

func TestBatchKeepsProvidedBatchID(t *testing.T) {
	svc, _, _ := newPipeline(t)
	orch := NewBatchOrchestrator(svc, 2)

	batch := batchOf(1)
	batch.BatchID = "nightly-42"
	resp, err := orch.Process(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, "nightly-42", resp.BatchID)
}

func TestBatchOneFailureDoesNotAbortOthers(t *testing.T) {
	svc, _, _ := newPipeline(t)
	orch := NewBatchOrchestrator(svc, 1)

	batch := batchOf(3)
	batch.Requests[1].Text = "too short" // fails request validation

	resp, err := orch.Process(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Completed)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, models.BatchItemCompleted, resp.Results[0].Status)
	assert.Equal(t, models.BatchItemFailed, resp.Results[1].Status)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Equal(t, models.BatchItemCompleted, resp.Results[2].Status)
}

func TestBatchRejectsOutOfBoundsSize(t *testing.T) {
	svc, _, _ := newPipeline(t)
	orch := NewBatchOrchestrator(svc, 2)

	_, err := orch.Process(context.Background(), &models.BatchTextProcessingRequest{})
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = orch.Process(context.Background(), batchOf(models.BatchMaxSize+1))
	assert.ErrorAs(t, err, &ve)
}

func TestBatchCancellationMarksUnstartedItemsFailed(t *testing.T) {
	svc, _, _ := newPipeline(t)
	orch := NewBatchOrchestrator(svc, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := orch.Process(ctx, batchOf(5))
	require.NoError(t, err)

	assert.Equal(t, 5, resp.TotalRequests)
	assert.GreaterOrEqual(t, resp.Failed, 4)
	for _, r := range resp.Results[1:] {
		assert.Equal(t, models.BatchItemFailed, r.Status)
	}
}

func TestBatchResultsInInputOrder(t *testing.T) {
	svc, _, _ := newPipeline(t)
	orch := NewBatchOrchestrator(svc, 8)

	resp, err := orch.Process(context.Background(), batchOf(20))
	require.NoError(t, err)

	for i, r := range resp.Results {
		assert.Equal(t, i, r.RequestIndex)
	}
	assert.Less(t, resp.TotalProcessingTimeMS, int64((5 * time.Second).Milliseconds()))
}
