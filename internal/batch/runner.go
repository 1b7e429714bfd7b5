package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/captionprep/internal/caption"
	"github.com/mgpai22/captionprep/internal/logging"
)

// LockFileName is created inside the output directory while a batch runs.
const LockFileName = ".captionprep.lock"

// ErrLocked is returned when another run holds the output directory.
var ErrLocked = errors.New("output directory is in use by another run")

// Job converts one episode. Convert must not share mutable state with other
// jobs, since jobs may run in parallel.
type Job struct {
	Episode caption.EpisodeID
	Source  string
	Convert func(ctx context.Context) (caption.Result, error)
}

// EpisodeResult is the outcome of one job.
type EpisodeResult struct {
	Episode  caption.EpisodeID
	Source   string
	Output   string
	Records  int
	Skipped  []caption.Skip
	Err      error
	Duration time.Duration
}

func (r EpisodeResult) OK() bool {
	return r.Err == nil
}

// Summary collects every episode result of a run in job order.
type Summary struct {
	RunID   string
	Results []EpisodeResult
}

func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

func (s Summary) Failed() int {
	return len(s.Results) - s.Succeeded()
}

// Records is the total written across successful episodes.
func (s Summary) Records() int {
	n := 0
	for _, r := range s.Results {
		if r.OK() {
			n += r.Records
		}
	}
	return n
}

type Runner struct {
	Writer      *caption.Writer
	Concurrency int
	Logger      *logging.Logger
	// rewrite text in Unicode NFC before writing
	ComposeNFC bool
}

func NewRunner(writer *caption.Writer, concurrency int, logger *logging.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		Writer:      writer,
		Concurrency: concurrency,
		Logger:      logger,
	}
}

// Run converts and writes every job. A failing episode is recorded in its
// result and does not stop the others. The only returned error is a failure
// to lock the output directory.
func (r *Runner) Run(ctx context.Context, jobs []Job) (Summary, error) {
	summary := Summary{
		RunID:   uuid.NewString(),
		Results: make([]EpisodeResult, len(jobs)),
	}
	log := r.Logger.With("run", summary.RunID)

	unlock, err := r.lock()
	if err != nil {
		return summary, err
	}
	defer unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			// each goroutine owns its slot, no locking needed
			summary.Results[i] = r.runJob(gctx, log, job)
			return nil
		})
	}
	_ = g.Wait()

	log.Infow("Batch complete",
		"episodes", len(jobs),
		"succeeded", summary.Succeeded(),
		"failed", summary.Failed(),
		"records", summary.Records(),
	)
	return summary, nil
}

func (r *Runner) runJob(ctx context.Context, log *logging.Logger, job Job) (res EpisodeResult) {
	started := time.Now()
	res = EpisodeResult{Episode: job.Episode, Source: job.Source}
	log = log.With("episode", job.Episode.String())

	defer func() {
		res.Duration = time.Since(started)
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	log.Infow("Converting episode", "source", job.Source)
	converted, err := job.Convert(ctx)
	if err != nil {
		log.Errorw("Conversion failed", "error", err)
		res.Err = fmt.Errorf("failed to convert %s: %w", job.Episode, err)
		return res
	}

	for _, skip := range converted.Skipped {
		log.Debugw("Skipped entry", "index", skip.Index, "reason", skip.Reason)
	}
	res.Skipped = converted.Skipped

	records := caption.Normalize(converted.Records)
	if dropped := len(converted.Records) - len(records); dropped > 0 {
		log.Warnw("Dropped malformed records", "count", dropped)
	}
	if r.ComposeNFC {
		records = caption.ComposeNFC(records)
	}

	out, err := r.Writer.Write(caption.Episode{ID: job.Episode, Records: records})
	res.Output = out
	if err != nil {
		log.Errorw("Write failed", "output", out, "error", err)
		res.Err = err
		return res
	}

	res.Records = len(records)
	log.Infow("Saved episode",
		"output", out,
		"records", res.Records,
		"skipped", len(res.Skipped),
	)
	return res
}

func (r *Runner) lock() (func(), error) {
	dir := r.Writer.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock output directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			r.Logger.Warnw("Failed to release output lock", "error", err)
		}
	}, nil
}
