package processing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meshworks/textgate/pkg/models"
)

// DefaultBatchConcurrency bounds the fan-out when nothing is configured.
const DefaultBatchConcurrency = 10

// BatchOrchestrator fans batch items out through the pipeline under a
// bounded semaphore. One item's failure never aborts the others.
type BatchOrchestrator struct {
	service     *Service
	concurrency int
}

// NewBatchOrchestrator wires the orchestrator around a pipeline.
func NewBatchOrchestrator(service *Service, concurrency int) *BatchOrchestrator {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	return &BatchOrchestrator{service: service, concurrency: concurrency}
}

// Process runs every item of the batch and reports per-item outcomes in
// input order. If the context expires mid-batch, in-flight items finish or
// time out individually and not-yet-started items are marked failed with
// the cancellation error.
func (o *BatchOrchestrator) Process(ctx context.Context, batch *models.BatchTextProcessingRequest) (*models.BatchTextProcessingResponse, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	batchID := batch.BatchID
	if batchID == "" {
		batchID = uuid.New().String()
	}

	start := time.Now()
	results := make([]models.BatchItemResult, len(batch.Requests))
	sem := make(chan struct{}, o.concurrency)

	var wg sync.WaitGroup
	for i := range batch.Requests {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// Everything not yet started fails with the cancellation
			// error; in-flight items run to completion below.
			for j := i; j < len(batch.Requests); j++ {
				results[j] = models.BatchItemResult{
					RequestIndex: j,
					Status:       models.BatchItemFailed,
					Error:        ctx.Err().Error(),
				}
			}
			wg.Wait()
			return o.summarize(batchID, results, start), nil
		}

		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			defer func() { <-sem }()

			req := batch.Requests[index]
			resp, err := o.service.Process(ctx, &req)
			if err != nil {
				results[index] = models.BatchItemResult{
					RequestIndex: index,
					Status:       models.BatchItemFailed,
					Error:        err.Error(),
				}
				return
			}
			results[index] = models.BatchItemResult{
				RequestIndex: index,
				Status:       models.BatchItemCompleted,
				Response:     resp,
			}
		}(i)
	}

	wg.Wait()
	return o.summarize(batchID, results, start), nil
}

func (o *BatchOrchestrator) summarize(batchID string, results []models.BatchItemResult, start time.Time) *models.BatchTextProcessingResponse {
	resp := &models.BatchTextProcessingResponse{
		BatchID:               batchID,
		TotalRequests:         len(results),
		Results:               results,
		TotalProcessingTimeMS: time.Since(start).Milliseconds(),
	}
	for _, r := range results {
		if r.Status == models.BatchItemCompleted {
			resp.Completed++
		} else {
			resp.Failed++
		}
	}
	return resp
}
