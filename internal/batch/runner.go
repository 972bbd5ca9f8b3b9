package batch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tvshelf/internal/logging"
)

const (
	defaultWorkers     = 3
	defaultUnitTimeout = 120 * time.Second
)

// Status is how a unit finished.
type Status int

const (
	Succeeded Status = iota
	// Partial means the work took effect but left something behind, such as
	// a copied file whose source could not be removed.
	Partial
	Failed
)

// Unit is one piece of work. Run should return promptly once ctx is
// cancelled.
type Unit interface {
	Run(ctx context.Context) Status
	Label() string
}

// DrainOrder selects how completions are reported.
type DrainOrder int

const (
	// DrainCompletion reports each unit as soon as it finishes.
	DrainCompletion DrainOrder = iota
	// DrainSubmission reports units strictly in the order they were
	// submitted, so a slow unit holds back reports for later ones.
	DrainSubmission
)

// ParseDrainOrder maps a configuration value onto a DrainOrder.
func ParseDrainOrder(value string) DrainOrder {
	if strings.EqualFold(strings.TrimSpace(value), "submission") {
		return DrainSubmission
	}
	return DrainCompletion
}

func (d DrainOrder) String() string {
	if d == DrainSubmission {
		return "submission"
	}
	return "completion"
}

// Progress observes a batch. Update is called once before any unit finishes
// and again after every completion or abandonment; Done is called once with
// the final summary.
type Progress interface {
	Update(total, remaining int)
	Done(summary Summary)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(total, remaining int)

func (f ProgressFunc) Update(total, remaining int) {
	if f != nil {
		f(total, remaining)
	}
}

func (ProgressFunc) Done(Summary) {}

// Summary reports how a batch ended.
type Summary struct {
	Total     int
	Succeeded int
	Partial   int
	Failed    int
	Abandoned int
	Elapsed   time.Duration
}

// abandoned is reported by the runner, never by a unit.
const abandoned Status = -1

// Runner executes batches. The zero value uses three workers, a two minute
// unit timeout and completion-order draining.
type Runner struct {
	Workers     int
	UnitTimeout time.Duration
	DrainOrder  DrainOrder
	Logger      *slog.Logger
}

// Run executes units and blocks until every unit has completed or been
// abandoned.
func (r *Runner) Run(ctx context.Context, units []Unit, progress Progress) Summary {
	if progress == nil {
		progress = ProgressFunc(nil)
	}
	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := r.UnitTimeout
	if timeout <= 0 {
		timeout = defaultUnitTimeout
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "batch"))

	start := time.Now()
	total := len(units)
	summary := Summary{Total: total}
	progress.Update(total, total)
	if total == 0 {
		progress.Done(summary)
		return summary
	}
	logger.Info("batch started",
		logging.Int("units", total),
		logging.Int("workers", workers),
		logging.Duration("unit_timeout", timeout),
		logging.String("drain_order", r.DrainOrder.String()),
	)

	slots := make([]chan Status, total)
	for i := range slots {
		slots[i] = make(chan Status, 1)
	}
	finished := make(chan int, total)

	var g errgroup.Group
	g.SetLimit(workers)
	go func() {
		for i, unit := range units {
			g.Go(func() error {
				r.runUnit(ctx, logger, unit, timeout, func(status Status) {
					slots[i] <- status
					finished <- i
				})
				return nil
			})
		}
	}()

	record := func(status Status) {
		switch status {
		case Succeeded:
			summary.Succeeded++
		case Partial:
			summary.Partial++
		case Failed:
			summary.Failed++
		default:
			summary.Abandoned++
		}
	}

	remaining := total
	for i := range total {
		idx := i
		if r.DrainOrder == DrainCompletion {
			idx = <-finished
		}
		record(<-slots[idx])
		remaining--
		progress.Update(total, remaining)
	}

	summary.Elapsed = time.Since(start)
	logger.Info("batch finished",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("partial", summary.Partial),
		logging.Int("failed", summary.Failed),
		logging.Int("abandoned", summary.Abandoned),
		logging.Duration("elapsed", summary.Elapsed),
	)
	progress.Done(summary)
	return summary
}

// runUnit runs one unit under its deadline and reports its status exactly
// once. On timeout the unit is reported abandoned right away, then the worker
// waits for the cancelled unit to return so the pool bound holds.
func (r *Runner) runUnit(ctx context.Context, logger *slog.Logger, unit Unit, timeout time.Duration, report func(Status)) {
	if err := ctx.Err(); err != nil {
		logger.Debug("unit skipped; batch cancelled", logging.String("unit", unit.Label()))
		report(abandoned)
		return
	}
	unitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Status, 1)
	go func() {
		done <- unit.Run(unitCtx)
	}()

	select {
	case status := <-done:
		report(status)
		return
	case <-unitCtx.Done():
	}

	// A unit that finished right at the deadline still counts.
	select {
	case status := <-done:
		report(status)
		return
	default:
	}

	logging.WarnWithContext(logger, "unit abandoned after timeout", "batch_unit_timeout",
		logging.String("unit", unit.Label()),
		logging.Duration("timeout", timeout),
		logging.String(logging.FieldErrorHint, "raise relocation.unit_timeout_seconds for slow volumes"),
		logging.String(logging.FieldImpact, "file may be left unmoved"),
	)
	report(abandoned)
	<-done
	logger.Debug("abandoned unit returned", logging.String("unit", unit.Label()))
}
