package engine

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"alphatrawler/internal/config"
	"alphatrawler/internal/model"
)

// SweepResult is one parameter set's outcome. Results come back in the order
// the parameter sets were submitted, regardless of which worker ran them.
type SweepResult struct {
	Params  config.Params       `json:"params"`
	Metrics model.MetricsReport `json:"metrics"`
	Error   string              `json:"error,omitempty"`
}

// SweepRunner fans independent backtest runs out over a worker pool.
// Each run gets its own Params copy and writes only its own result slot, so
// there is no shared mutable state between workers.
type SweepRunner struct {
	workerCount int
	logger      *zap.Logger
}

func NewSweepRunner(workerCount int, logger *zap.Logger) *SweepRunner {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &SweepRunner{workerCount: workerCount, logger: logger}
}

func (r *SweepRunner) Run(ctx context.Context, points []model.PricePoint, paramSets []config.Params) []SweepResult {
	results := make([]SweepResult, len(paramSets))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workerCount; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-jobs:
					if !ok {
						return
					}
					results[i] = r.runOne(points, paramSets[i])
					r.logger.Debug("sweep run finished",
						zap.Int("worker_id", id),
						zap.Int("job", i),
						zap.Int("trades", results[i].Metrics.TradeCount),
					)
				}
			}
		}(w)
	}

	for i := range paramSets {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case jobs <- i:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	return results
}

func (r *SweepRunner) runOne(points []model.PricePoint, p config.Params) SweepResult {
	res := SweepResult{Params: p}
	out, err := Run(points, p, r.logger)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Metrics = out.Report.Metrics
	return res
}
