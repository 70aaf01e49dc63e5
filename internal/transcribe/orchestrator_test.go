package transcribe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"scribe/internal/chunk"
)

type fakeExtractor struct {
	failIDs map[int]bool
}

func (f *fakeExtractor) Extract(ctx context.Context, source string, c chunk.Chunk, destDir string) (string, error) {
	if f.failIDs[c.ID] {
		return "", fmt.Errorf("extract chunk %d: boom", c.ID)
	}
	return fmt.Sprintf("%s/chunk_%03d.wav", destDir, c.ID), nil
}

type fakeEngine struct {
	id         int
	recognized *atomic.Int64
	closed     *atomic.Int64
	failPaths  map[string]bool
}

func (e *fakeEngine) Recognize(ctx context.Context, path string, opts RecognizeOptions) (Recognition, error) {
	e.recognized.Add(1)
	if e.failPaths[path] {
		return Recognition{}, errors.New("engine choked")
	}
	return Recognition{
		Segments: []Segment{{Start: 0, End: 2, Text: "hello from " + path}},
		Language: "en",
	}, nil
}

func (e *fakeEngine) Close() error {
	e.closed.Add(1)
	return nil
}

func planChunks(t *testing.T, total float64) []chunk.Chunk {
	t.Helper()
	chunks, err := chunk.Plan(total, chunk.Options{Target: 10, Max: 15, Min: 4, Overlap: 1})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return chunks
}

func TestProcessReturnsResultsSortedByChunkID(t *testing.T) {
	chunks := planChunks(t, 95)
	var recognized, closed atomic.Int64
	var built atomic.Int64

	factory := func() (Engine, error) {
		built.Add(1)
		return &fakeEngine{recognized: &recognized, closed: &closed}, nil
	}

	o := NewOrchestrator(4, factory, &fakeExtractor{}, nil)
	results := o.Process(context.Background(), "a.wav", chunks, t.TempDir(), RecognizeOptions{})

	if len(results) != len(chunks) {
		t.Fatalf("expected %d results, got %d", len(chunks), len(results))
	}
	for i, res := range results {
		if res.Chunk.ID != i {
			t.Fatalf("results not sorted: index %d has chunk %d", i, res.Chunk.ID)
		}
		if !res.Success {
			t.Fatalf("chunk %d unexpectedly failed: %s", res.Chunk.ID, res.Err)
		}
		if len(res.Segments) != 1 {
			t.Fatalf("chunk %d expected 1 segment, got %d", res.Chunk.ID, len(res.Segments))
		}
	}
	if recognized.Load() != int64(len(chunks)) {
		t.Fatalf("expected %d recognitions, got %d", len(chunks), recognized.Load())
	}
}

func TestWorkersReuseTheirEngine(t *testing.T) {
	chunks := planChunks(t, 95)
	var recognized, closed atomic.Int64
	var built atomic.Int64

	factory := func() (Engine, error) {
		built.Add(1)
		return &fakeEngine{recognized: &recognized, closed: &closed}, nil
	}

	const workers = 3
	o := NewOrchestrator(workers, factory, &fakeExtractor{}, nil)
	o.Process(context.Background(), "a.wav", chunks, t.TempDir(), RecognizeOptions{})

	// Lazy construction: at most one engine per worker, at least one total.
	if built.Load() < 1 || built.Load() > workers {
		t.Fatalf("expected between 1 and %d engines, got %d", workers, built.Load())
	}
	if closed.Load() != built.Load() {
		t.Fatalf("every built engine must be closed: built %d, closed %d", built.Load(), closed.Load())
	}
}

func TestExtractionFailureIsolatesChunk(t *testing.T) {
	chunks := planChunks(t, 28) // three chunks
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for fixture, got %d", len(chunks))
	}
	var recognized, closed atomic.Int64
	factory := func() (Engine, error) {
		return &fakeEngine{recognized: &recognized, closed: &closed}, nil
	}

	o := NewOrchestrator(2, factory, &fakeExtractor{failIDs: map[int]bool{1: true}}, nil)
	results := o.Process(context.Background(), "a.wav", chunks, t.TempDir(), RecognizeOptions{})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Success || !results[2].Success {
		t.Fatalf("neighboring chunks must survive: %+v", results)
	}
	failed := results[1]
	if failed.Success || failed.Err == "" || len(failed.Segments) != 0 {
		t.Fatalf("failed chunk must carry error and empty segments: %+v", failed)
	}
}

func TestEngineFailureIsRecordedNotFatal(t *testing.T) {
	chunks := planChunks(t, 28)
	var recognized, closed atomic.Int64
	badPath := ""
	var mu sync.Mutex

	factory := func() (Engine, error) {
		eng := &fakeEngine{recognized: &recognized, closed: &closed, failPaths: map[string]bool{}}
		mu.Lock()
		eng.failPaths[badPath] = true
		mu.Unlock()
		return eng, nil
	}

	dir := t.TempDir()
	badPath = fmt.Sprintf("%s/chunk_%03d.wav", dir, 0)

	o := NewOrchestrator(1, factory, &fakeExtractor{}, nil)
	results := o.Process(context.Background(), "a.wav", chunks, dir, RecognizeOptions{})

	if results[0].Success {
		t.Fatalf("expected chunk 0 to fail recognition")
	}
	if !results[1].Success || !results[2].Success {
		t.Fatalf("later chunks must still succeed: %+v", results)
	}
}

func TestFactoryFailureFailsChunkAndRetries(t *testing.T) {
	chunks := planChunks(t, 28)
	var recognized, closed atomic.Int64
	var calls atomic.Int64

	factory := func() (Engine, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("model download failed")
		}
		return &fakeEngine{recognized: &recognized, closed: &closed}, nil
	}

	o := NewOrchestrator(1, factory, &fakeExtractor{}, nil)
	results := o.Process(context.Background(), "a.wav", chunks, t.TempDir(), RecognizeOptions{})

	if results[0].Success {
		t.Fatalf("first chunk should fail while the factory is down")
	}
	if !results[1].Success || !results[2].Success {
		t.Fatalf("factory retry should recover later chunks: %+v", results)
	}
}

func TestProcessEmptyChunkList(t *testing.T) {
	o := NewOrchestrator(2, nil, &fakeExtractor{}, nil)
	if results := o.Process(context.Background(), "a.wav", nil, t.TempDir(), RecognizeOptions{}); results != nil {
		t.Fatalf("expected nil results for empty plan, got %v", results)
	}
}

func TestCanceledContextRecordsRemainingChunks(t *testing.T) {
	chunks := planChunks(t, 95)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var recognized, closed atomic.Int64
	factory := func() (Engine, error) {
		return &fakeEngine{recognized: &recognized, closed: &closed}, nil
	}

	o := NewOrchestrator(2, factory, &fakeExtractor{}, nil)
	results := o.Process(ctx, "a.wav", chunks, t.TempDir(), RecognizeOptions{})

	if len(results) != len(chunks) {
		t.Fatalf("every chunk needs a record even under cancellation: %d vs %d", len(results), len(chunks))
	}
	for _, res := range results {
		if res.Success {
			t.Fatalf("no chunk should succeed after cancellation: %+v", res)
		}
	}
}
