package analyzer

import (
	"context"
	"log/slog"
	"sync"
)

const numWorkers = 10

type batchJob struct {
	index int
	item  BatchItem
}

func analyzeWorker(ctx context.Context, logger *slog.Logger, wg *sync.WaitGroup, jobs <-chan batchJob, results []BatchResult) {
	defer wg.Done()
	for job := range jobs {
		results[job.index] = BatchResult{
			ID:     job.item.ID,
			Result: Analyze(ctx, logger.With(slog.String("document_id", job.item.ID)), job.item.HTML),
		}
	}
}

// AnalyzeBatch analyzes every item on a bounded worker pool. Results keep
// the order of items.
func AnalyzeBatch(ctx context.Context, logger *slog.Logger, items []BatchItem) []BatchResult {
	if len(items) == 0 {
		logger.DebugContext(ctx, "No documents to analyze, skipping batch")
		return []BatchResult{}
	}

	total := len(items)
	logger.InfoContext(ctx, "Starting batch analysis", slog.Int("total_documents", total))

	jobs := make(chan batchJob, total)
	results := make([]BatchResult, total)

	workers := numWorkers
	if total < workers {
		workers = total
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go analyzeWorker(ctx, logger, &wg, jobs, results)
	}

	for i, item := range items {
		jobs <- batchJob{index: i, item: item}
	}
	close(jobs)

	wg.Wait()

	logger.InfoContext(ctx, "Finished batch analysis", slog.Int("total_documents", total))

	return results
}
