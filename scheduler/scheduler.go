/*
scheduler.go - Automated pay period close

PURPOSE:
  On a cron schedule, computes the payroll report for the pay period that has
  just ended and, when an export directory is configured, writes it as CSV.

DESIGN:
  - The closed period is the week or biweekly period before the one
    containing "now"
  - A period that already closed successfully is skipped
  - Every run is recorded (in memory) for the status endpoint

CONFIGURATION:
  - Spec:      standard 5-field cron expression, e.g. "0 6 * * 1"
  - Kind:      payroll.PeriodWeek or payroll.PeriodBiweekly
  - ExportDir: directory for payroll_<start>_<end>.csv, empty to skip

USAGE:
  closer := scheduler.NewPeriodCloser(calc, scheduler.Options{Kind: payroll.PeriodBiweekly}, logger)
  if err := closer.Start("0 6 * * 1"); err != nil { ... }
  defer closer.Stop()

SEE ALSO:
  - payroll/calculator.go: Report
  - export/csv.go: WritePayrollCSV
*/
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/payroll"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// maxRuns bounds the in-memory run history.
const maxRuns = 50

// Run records one attempt at closing a period.
type Run struct {
	ID          string
	Period      payroll.Period
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
	Employees   int
	TotalPay    string
	File        string
	Error       string
}

type Options struct {
	Kind      payroll.PeriodKind
	ExportDir string
	Timeout   time.Duration
}

// PeriodCloser generates the report for each pay period once it has ended.
type PeriodCloser struct {
	calc   *payroll.Calculator
	opts   Options
	logger *zap.Logger
	cron   *cron.Cron

	mu     sync.Mutex
	runs   []Run
	closed map[string]bool
	seq    int
}

func NewPeriodCloser(calc *payroll.Calculator, opts Options, logger *zap.Logger) *PeriodCloser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Kind == "" {
		opts.Kind = payroll.PeriodBiweekly
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &PeriodCloser{
		calc:   calc,
		opts:   opts,
		logger: logger,
		cron:   cron.New(),
		closed: make(map[string]bool),
	}
}

// ClosedPeriod returns the most recent period of kind that ended before now.
func ClosedPeriod(kind payroll.PeriodKind, now time.Time) (payroll.Period, error) {
	current, err := payroll.PeriodFor(kind, payroll.DateOf(now))
	if err != nil {
		return payroll.Period{}, err
	}
	return current.Previous(), nil
}

// Start schedules the close job on spec and starts the cron runner.
func (pc *PeriodCloser) Start(spec string) error {
	if _, err := pc.cron.AddFunc(spec, pc.tick); err != nil {
		return fmt.Errorf("schedule period close %q: %w", spec, err)
	}
	pc.cron.Start()
	pc.logger.Info("period close scheduled",
		zap.String("spec", spec),
		zap.String("period", string(pc.opts.Kind)),
		zap.String("export_dir", pc.opts.ExportDir),
	)
	return nil
}

// Stop stops the cron runner and waits for a running job to finish.
func (pc *PeriodCloser) Stop() {
	<-pc.cron.Stop().Done()
	pc.logger.Info("period close stopped")
}

// NextRun returns when the job fires next, or the zero time if not started.
func (pc *PeriodCloser) NextRun() time.Time {
	entries := pc.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (pc *PeriodCloser) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), pc.opts.Timeout)
	defer cancel()

	if _, err := pc.RunOnce(ctx, time.Now()); err != nil {
		pc.logger.Error("period close failed", zap.Error(err))
	}
}

// RunOnce closes the period that ended before now. A period that already
// closed successfully is recorded as skipped and not recomputed.
func (pc *PeriodCloser) RunOnce(ctx context.Context, now time.Time) (Run, error) {
	period, err := ClosedPeriod(pc.opts.Kind, now)
	if err != nil {
		return Run{}, err
	}

	run := pc.begin(period)
	if run.Status == StatusSkipped {
		pc.logger.Info("period already closed", zap.Stringer("period", period))
		return run, nil
	}

	report, err := pc.calc.Report(ctx, period)
	if err != nil {
		return pc.fail(run, err), err
	}
	run.Employees = report.Summary.TotalEmployees
	run.TotalPay = report.Summary.TotalPay.StringFixed(2)

	if pc.opts.ExportDir != "" {
		file, err := pc.writeExport(report)
		if err != nil {
			return pc.fail(run, err), err
		}
		run.File = file
	}

	pc.logger.Info("pay period closed",
		zap.Stringer("period", period),
		zap.Int("employees", run.Employees),
		zap.String("total_regular_hours", report.Summary.TotalRegularHours.String()),
		zap.String("total_overtime_hours", report.Summary.TotalOvertimeHours.String()),
		zap.String("total_pay", run.TotalPay),
		zap.String("file", run.File),
	)
	return pc.finish(run), nil
}

// Runs returns recorded runs, newest first.
func (pc *PeriodCloser) Runs() []Run {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	out := make([]Run, len(pc.runs))
	for i, r := range pc.runs {
		out[len(pc.runs)-1-i] = r
	}
	return out
}

func (pc *PeriodCloser) writeExport(report payroll.Report) (string, error) {
	if err := os.MkdirAll(pc.opts.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	name := fmt.Sprintf("payroll_%s_%s.csv", report.Period.Start, report.Period.End)
	path := filepath.Join(pc.opts.ExportDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := export.WritePayrollCSV(f, report); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// ===== Run bookkeeping =====

func (pc *PeriodCloser) begin(period payroll.Period) Run {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.seq++
	run := Run{
		ID:        fmt.Sprintf("run-%d", pc.seq),
		Period:    period,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
	if pc.closed[period.String()] {
		run.Status = StatusSkipped
		pc.record(run)
	}
	return run
}

func (pc *PeriodCloser) finish(run Run) Run {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	now := time.Now()
	run.Status = StatusCompleted
	run.CompletedAt = &now
	pc.closed[run.Period.String()] = true
	pc.record(run)
	return run
}

func (pc *PeriodCloser) fail(run Run, err error) Run {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	now := time.Now()
	run.Status = StatusFailed
	run.CompletedAt = &now
	run.Error = err.Error()
	pc.record(run)
	return run
}

// record appends run; callers hold pc.mu.
func (pc *PeriodCloser) record(run Run) {
	pc.runs = append(pc.runs, run)
	if len(pc.runs) > maxRuns {
		pc.runs = pc.runs[len(pc.runs)-maxRuns:]
	}
}
