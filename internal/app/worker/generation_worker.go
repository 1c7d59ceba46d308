package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"papergen/internal/app/generation"
	"papergen/internal/app/identity"
	"papergen/internal/app/navigation"
	"papergen/internal/common"
	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const lockKeyPrefix = "papergen:generation:lock:"

// Sink receives the events produced while a job runs.
type Sink interface {
	Dispatch(ctx context.Context, userID string, ev navigation.Event) (navigation.State, bool)
	Pending(userID, requestID string) bool
}

// PaperSaver stores finished papers for the job's user.
type PaperSaver interface {
	SavePaper(ctx context.Context, p *model.QuestionPaper) (*model.QuestionPaper, error)
	SaveAttendedPaper(ctx context.Context, p *model.QuestionPaper) error
}

type Options struct {
	Workers    int
	QueueDepth int
	Timeout    time.Duration
	LockTTL    time.Duration
	RetryDelay time.Duration
	MaxRetries int
}

// GenerationWorker runs generation jobs in the background. At most
// Options.Workers jobs run at once, and at most one per user.
type GenerationWorker struct {
	gen    generation.Generator
	papers PaperSaver
	sink   Sink
	locker Locker
	opts   Options
	log    *logger.Logger

	jobs  chan navigation.Job
	sem   *semaphore.Weighted
	wg    sync.WaitGroup
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewGenerationWorker(gen generation.Generator, papers PaperSaver, sink Sink, locker Locker, opts Options, log *logger.Logger) *GenerationWorker {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &GenerationWorker{
		gen:    gen,
		papers: papers,
		sink:   sink,
		locker: locker,
		opts:   opts,
		log:    log,
		jobs:   make(chan navigation.Job, opts.QueueDepth),
		sem:    semaphore.NewWeighted(int64(opts.Workers)),
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Run queues job. It fails with common.ErrTooManyRequests when the queue is
// full.
func (w *GenerationWorker) Run(_ context.Context, job navigation.Job) error {
	select {
	case w.jobs <- job:
		w.log.Debug("generation job queued", "user_id", job.UserID, "request_id", job.Request.ID)
		return nil
	default:
		return common.Errorf("generation queue is full: %w", common.ErrTooManyRequests)
	}
}

// Start processes jobs until ctx is cancelled, then waits for running jobs.
func (w *GenerationWorker) Start(ctx context.Context) {
	w.log.Info("generation worker started", "workers", w.opts.Workers, "queue_depth", w.opts.QueueDepth)
	defer func() {
		w.wg.Wait()
		w.log.Info("generation worker stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.jobs:
			if err := w.sem.Acquire(ctx, 1); err != nil {
				return
			}
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				defer w.sem.Release(1)
				w.processWithLock(ctx, job)
			}()
		}
	}
}

func (w *GenerationWorker) processWithLock(ctx context.Context, job navigation.Job) {
	log := w.log.With("user_id", job.UserID, "request_id", job.Request.ID)

	release, ok, err := w.locker.Acquire(ctx, lockKeyPrefix+job.UserID, w.opts.LockTTL)
	if err != nil {
		log.Error("failed to acquire generation lock", "error", err)
		w.fail(ctx, job, generation.FailureMessage)
		return
	}
	if !ok {
		log.Warn("generation already running for user elsewhere")
		w.fail(ctx, job, generation.FailureMessage)
		return
	}
	defer release()

	w.process(ctx, job, log)
}

func (w *GenerationWorker) process(ctx context.Context, job navigation.Job, log *logger.Logger) {
	for attempt := 0; ; attempt++ {
		if !w.sink.Pending(job.UserID, job.Request.ID) {
			log.Debug("generation no longer awaited; dropping")
			return
		}

		genCtx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
		paper, err := w.gen.Generate(genCtx, job.Request)
		cancel()

		switch {
		case err == nil:
			w.complete(ctx, job, paper, log)
			return
		case ctx.Err() != nil:
			return
		case errors.Is(err, generation.ErrRateLimited) && attempt < w.opts.MaxRetries:
			retryAt := w.now().Add(w.opts.RetryDelay)
			log.Info("generation queued after rate limit", "attempt", attempt+1, "retry_at", retryAt)
			w.sink.Dispatch(ctx, job.UserID, navigation.GenerationQueued{RequestID: job.Request.ID, RetryAt: retryAt, Attempt: attempt + 1})
			if err := w.sleep(ctx, w.opts.RetryDelay); err != nil {
				return
			}
			w.sink.Dispatch(ctx, job.UserID, navigation.GenerationRetrying{RequestID: job.Request.ID})
		case errors.Is(err, generation.ErrRateLimited):
			log.Warn("generation rate limited; retries exhausted", "attempts", attempt+1)
			w.fail(ctx, job, generation.RateLimitMessage)
			return
		default:
			log.Error("generation failed", "error", err)
			w.fail(ctx, job, generation.FailureMessage)
			return
		}
	}
}

func (w *GenerationWorker) complete(ctx context.Context, job navigation.Job, paper *model.QuestionPaper, log *logger.Logger) {
	if !w.sink.Pending(job.UserID, job.Request.ID) {
		log.Debug("generation finished after the user moved on; result discarded")
		return
	}

	paper.ID = paperID()
	paper.CreatedAt = w.now().UTC()
	userCtx := identity.WithUserID(ctx, job.UserID)

	var err error
	if job.Role == model.RoleStudent {
		err = w.papers.SaveAttendedPaper(userCtx, paper)
	} else {
		var saved *model.QuestionPaper
		if saved, err = w.papers.SavePaper(userCtx, paper); err == nil && saved != nil {
			paper = saved
		}
	}
	if err != nil {
		log.Error("failed to save generated paper", "error", err)
		w.fail(ctx, job, generation.FailureMessage)
		return
	}

	log.Info("generation completed", "paper_id", paper.ID)
	w.sink.Dispatch(ctx, job.UserID, navigation.GenerationCompleted{RequestID: job.Request.ID, Paper: *paper})
}

func (w *GenerationWorker) fail(ctx context.Context, job navigation.Job, message string) {
	w.sink.Dispatch(ctx, job.UserID, navigation.GenerationFailed{RequestID: job.Request.ID, Message: message})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// paperID returns a UUIDv7, or a random UUID if the clock source fails.
func paperID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
