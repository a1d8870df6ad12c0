package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/pkg/clock"
	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/shared"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=dispatcher.go -destination=../../../tests/mock/commands/dispatcher_mock.go -package=commandsmock

// ErrPermanentJobFailure marks handler errors that retrying cannot fix.
var ErrPermanentJobFailure = errs.New("permanent job failure")

func permanent(err error) error {
	return errs.Mark(err, ErrPermanentJobFailure)
}

func isPermanent(err error) bool {
	return errs.Is(err, ErrPermanentJobFailure) ||
		errs.Is(err, job.ErrUnknownType) ||
		errs.Is(err, job.ErrInvalidPayload) ||
		errs.Is(err, shared.ErrHoldDeclined)
}

// JobHandler performs the side effect of one job type. A nil error completes
// the job with the returned outcome.
type JobHandler interface {
	Handle(ctx context.Context, j *job.Job, payload job.Payload) (job.Outcome, error)
}

// TerminalFailureHandler is implemented by handlers that own escalation once
// their job has failed for good.
type TerminalFailureHandler interface {
	OnTerminalFailure(ctx context.Context, j *job.Job, cause error) error
}

type JobHandlers map[job.Type]JobHandler

type DispatchSummary struct {
	Processed int
	Successes int
	Failures  int
}

type JobCommands interface {
	ProcessDueJobs(ctx context.Context) (*DispatchSummary, error)
}

type runResult int

const (
	runNotClaimed runResult = iota
	runSucceeded
	runFailed
)

type dispatcherImpl struct {
	uow      shared.UnitOfWork
	handlers JobHandlers
	notifier shared.Notifier
	clock    clock.Clock
	cfg      config.SchedulerConfig
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewDispatcher(
	uow shared.UnitOfWork,
	handlers JobHandlers,
	notifier shared.Notifier,
	clk clock.Clock,
	cfg config.Config,
	tracer trace.Tracer,
	logger *slog.Logger,
) JobCommands {
	return &dispatcherImpl{
		uow:      uow,
		handlers: handlers,
		notifier: notifier,
		clock:    clk,
		cfg:      cfg.Scheduler,
		tracer:   tracer,
		logger:   logger,
	}
}

// ProcessDueJobs runs one batch of due jobs. Individual job failures never
// abort siblings and are reported through the summary, not the error.
func (d *dispatcherImpl) ProcessDueJobs(ctx context.Context) (*DispatchSummary, error) {
	now := d.clock.Now()
	if n, err := d.uow.Jobs().ReclaimStale(ctx, now.Add(-d.cfg.ClaimTimeout), now); err != nil {
		d.logger.ErrorContext(ctx, "failed to reclaim stale jobs", "error", err)
	} else if n > 0 {
		d.logger.WarnContext(ctx, "reclaimed jobs stuck in processing", "count", n, "claim_timeout", d.cfg.ClaimTimeout)
	}

	jobs, err := d.uow.Jobs().FetchDue(ctx, now, d.cfg.BatchSize)
	if err != nil {
		return nil, errs.Wrap(err, "fetch due jobs")
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		summary DispatchSummary
	)
	g.SetLimit(max(d.cfg.Concurrency, 1))

	for _, j := range jobs {
		g.Go(func() error {
			res := d.runJob(ctx, j)

			mu.Lock()
			defer mu.Unlock()
			switch res {
			case runSucceeded:
				summary.Processed++
				summary.Successes++
			case runFailed:
				summary.Processed++
				summary.Failures++
			}
			return nil
		})
	}
	_ = g.Wait()

	d.logger.InfoContext(ctx, "job batch dispatched",
		"fetched", len(jobs),
		"processed", summary.Processed,
		"successes", summary.Successes,
		"failures", summary.Failures)
	return &summary, nil
}

func (d *dispatcherImpl) runJob(ctx context.Context, j *job.Job) runResult {
	ctx, span := d.tracer.Start(ctx, "job."+j.Type.String(), trace.WithAttributes(
		attribute.String("job.id", j.ID.String()),
		attribute.String("job.type", j.Type.String()),
		attribute.String("booking.id", j.BookingID.String()),
		attribute.Int("job.retry_count", j.RetryCount),
	))
	defer span.End()

	logger := d.logger.With("job_id", j.ID, "job_type", j.Type, "booking_id", j.BookingID)

	claimed, err := d.uow.Jobs().Claim(ctx, j.ID, d.clock.Now())
	if err != nil {
		logger.ErrorContext(ctx, "failed to claim job", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim failed")
		return runFailed
	}
	if !claimed {
		logger.DebugContext(ctx, "job already claimed by another worker")
		span.SetAttributes(attribute.Bool("job.skipped_claim", true))
		return runNotClaimed
	}

	handler, outcome, herr := d.invoke(ctx, j)
	if herr == nil {
		if err := d.uow.Jobs().Complete(ctx, j.ID, outcome, d.clock.Now()); err != nil {
			logger.ErrorContext(ctx, "failed to mark job completed", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "complete failed")
			return runFailed
		}
		span.SetAttributes(attribute.String("job.outcome", string(outcome.Kind)))
		switch outcome.Kind {
		case job.OutcomeSkipped:
			logger.InfoContext(ctx, "job skipped", "reason", outcome.Note)
		case job.OutcomeRequiresAction:
			logger.InfoContext(ctx, "job completed pending customer authentication", "note", outcome.Note)
		default:
			logger.InfoContext(ctx, "job completed")
		}
		return runSucceeded
	}

	span.RecordError(herr)
	span.SetStatus(codes.Error, herr.Error())
	d.handleFailure(ctx, logger, j, handler, herr)
	return runFailed
}

func (d *dispatcherImpl) invoke(ctx context.Context, j *job.Job) (JobHandler, job.Outcome, error) {
	payload, err := j.Payload()
	if err != nil {
		return nil, job.Outcome{}, err
	}

	handler, ok := d.handlers[j.Type]
	if !ok {
		return nil, job.Outcome{}, permanent(errs.Newf("no handler registered for job type %q", j.Type))
	}

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	defer cancel()

	outcome, err := handler.Handle(callCtx, j, payload)
	return handler, outcome, err
}

func (d *dispatcherImpl) handleFailure(ctx context.Context, logger *slog.Logger, j *job.Job, handler JobHandler, cause error) {
	now := d.clock.Now()
	msg := cause.Error()
	retryCount := j.RetryCount

	if !isPermanent(cause) {
		plan := j.PlanRetry(now, d.cfg.RetryDelay)
		if !plan.Exhausted {
			if err := d.uow.Jobs().Retry(ctx, j.ID, plan.RetryCount, plan.RunAt, msg, now); err != nil {
				logger.ErrorContext(ctx, "failed to reschedule job for retry", "error", err)
				return
			}
			logger.WarnContext(ctx, "job failed, retry scheduled",
				"attempt", plan.RetryCount,
				"max_retries", j.MaxRetries,
				"next_run_at", plan.RunAt,
				"error", msg)
			return
		}
		retryCount = plan.RetryCount
	}

	if err := d.uow.Jobs().Fail(ctx, j.ID, retryCount, msg, now); err != nil {
		logger.ErrorContext(ctx, "failed to mark job failed", "error", err)
		return
	}
	logger.ErrorContext(ctx, "job failed permanently",
		"retry_count", retryCount,
		"permanent", isPermanent(cause),
		"error", msg,
		"stack", errs.ExtractStackLines(cause, 8))

	d.escalate(ctx, logger, j, handler, retryCount, cause)
}

func (d *dispatcherImpl) escalate(ctx context.Context, logger *slog.Logger, j *job.Job, handler JobHandler, attempts int, cause error) {
	metadata := map[string]string{
		"job_id":      j.ID.String(),
		"job_type":    j.Type.String(),
		"booking_id":  j.BookingID.String(),
		"retry_count": strconv.Itoa(attempts),
		"error":       cause.Error(),
	}
	if tf, ok := handler.(TerminalFailureHandler); ok {
		err := tf.OnTerminalFailure(ctx, j, cause)
		if err == nil {
			return
		}
		logger.ErrorContext(ctx, "terminal failure handling failed, notifying admins directly", "error", err)
		metadata["escalation_error"] = err.Error()
	}

	err := d.notifier.Send(ctx, shared.Notification{
		Audience:  shared.AudienceAdmin,
		Channel:   shared.ChannelInApp,
		BookingID: j.BookingID,
		Kind:      shared.KindJobFailed,
		Title:     "Scheduled job failed",
		Message: fmt.Sprintf("%s job for booking %s failed after %d attempt(s): %s",
			j.Type, j.BookingID, max(attempts, 1), cause.Error()),
		Priority: shared.PriorityHigh,
		Metadata: metadata,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to notify admins of job failure", "error", err)
	}
}
