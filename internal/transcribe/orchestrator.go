package transcribe

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"scribe/internal/chunk"
	"scribe/internal/logging"
	"scribe/internal/services"
)

// Extractor materializes a chunk window as a local audio artifact.
// Satisfied by *extraction.Extractor.
type Extractor interface {
	Extract(ctx context.Context, source string, c chunk.Chunk, destDir string) (string, error)
}

// Orchestrator fans chunks out to a bounded worker pool.
type Orchestrator struct {
	workers   int
	factory   EngineFactory
	extractor Extractor
	logger    *slog.Logger
}

// NewOrchestrator builds a pool driver. workers is clamped to at least one.
func NewOrchestrator(workers int, factory EngineFactory, extractor Extractor, logger *slog.Logger) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		workers:   workers,
		factory:   factory,
		extractor: extractor,
		logger:    logging.WithComponent(logger, "transcribe"),
	}
}

// Process extracts and recognizes every chunk, saturating at the pool
// width. The returned slice holds one ChunkResult per input chunk, sorted
// by chunk ID regardless of completion order. Extracted artifacts are left
// in workDir for the caller to clean up.
func (o *Orchestrator) Process(ctx context.Context, source string, chunks []chunk.Chunk, workDir string, opts RecognizeOptions) []ChunkResult {
	if len(chunks) == 0 {
		return nil
	}

	jobs := make(chan chunk.Chunk)
	results := make(chan ChunkResult, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			o.runWorker(ctx, slot, source, workDir, opts, jobs, results)
		}(i)
	}

	// Submission order is chunk-id order; completion order is unconstrained.
	go func() {
		defer close(jobs)
		for _, c := range chunks {
			select {
			case jobs <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	collected := make([]ChunkResult, 0, len(chunks))
	for res := range results {
		collected = append(collected, res)
	}

	// Chunks never submitted because the context was canceled still get a
	// failure record so nothing vanishes silently.
	if len(collected) < len(chunks) && ctx.Err() != nil {
		seen := make(map[int]struct{}, len(collected))
		for _, res := range collected {
			seen[res.Chunk.ID] = struct{}{}
		}
		for _, c := range chunks {
			if _, ok := seen[c.ID]; !ok {
				collected = append(collected, failedResult(c, 0, ctx.Err()))
			}
		}
	}

	sortByChunkID(collected)
	return collected
}

// runWorker drains the job queue. The engine is constructed on the first
// claimed chunk and reused for every later one; construction failures fail
// only the current chunk and are retried on the next.
func (o *Orchestrator) runWorker(ctx context.Context, slot int, source, workDir string, opts RecognizeOptions, jobs <-chan chunk.Chunk, results chan<- ChunkResult) {
	var engine Engine
	defer func() {
		if engine != nil {
			if err := engine.Close(); err != nil {
				o.logger.Warn("engine close failed", "worker", slot, "error", err)
			}
		}
	}()

	for c := range jobs {
		if ctx.Err() != nil {
			results <- failedResult(c, 0, ctx.Err())
			continue
		}
		chunkCtx := services.WithChunkID(ctx, c.ID)
		results <- o.processChunk(chunkCtx, &engine, slot, source, workDir, opts, c)
	}
}

func (o *Orchestrator) processChunk(ctx context.Context, engine *Engine, slot int, source, workDir string, opts RecognizeOptions, c chunk.Chunk) ChunkResult {
	logger := logging.WithContext(ctx, o.logger)
	started := time.Now()

	artifact, err := o.extractor.Extract(ctx, source, c, workDir)
	if err != nil {
		logger.Warn("chunk extraction failed", "error", err)
		return failedResult(c, time.Since(started), err)
	}

	if *engine == nil {
		built, err := o.factory()
		if err != nil {
			logger.Warn("engine construction failed", "worker", slot, "error", err)
			return failedResult(c, time.Since(started), services.Wrap(services.ErrExternalTool, "transcribe", "engine init", "", err))
		}
		*engine = built
		logger.Debug("engine ready", "worker", slot)
	}

	recognition, err := (*engine).Recognize(ctx, artifact, opts)
	elapsed := time.Since(started)
	if err != nil {
		logger.Warn("chunk recognition failed", "error", err)
		return failedResult(c, elapsed, err)
	}

	logger.Debug("chunk complete",
		"segments", len(recognition.Segments),
		"elapsed", elapsed,
	)

	return ChunkResult{
		Chunk:              c,
		Success:            true,
		Segments:           recognition.Segments,
		Language:           recognition.Language,
		LanguageConfidence: recognition.LanguageConfidence,
		SourceDuration:     recognition.SourceDuration,
		ProcessingTime:     elapsed,
	}
}
