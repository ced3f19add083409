package scheduler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
	"github.com/warp/payroll-engine/scheduler"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func seeded(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.SaveEmployee(ctx, payroll.Employee{ID: "a", Name: "Adam", HourlyRate: decimal.NewFromInt(20), IsActive: true}))
	// Monday of the first half of the 2025-01-06 biweekly period
	require.NoError(t, s.SaveShift(ctx, payroll.Shift{
		EmployeeID: "a",
		Date:       payroll.MustParseDate("2025-01-06"),
		Start:      payroll.MustParseTime("09:00"),
		End:        payroll.MustParseTime("17:00"),
	}))
	return s
}

func TestClosedPeriod(t *testing.T) {
	// Monday morning after the first biweekly period ends
	p, err := scheduler.ClosedPeriod(payroll.PeriodBiweekly, at("2025-01-20 06:00"))
	require.NoError(t, err)
	assert.Equal(t, "[2025-01-06, 2025-01-19]", p.String())

	// Mid-period still closes the previous one
	p, err = scheduler.ClosedPeriod(payroll.PeriodBiweekly, at("2025-01-27 06:00"))
	require.NoError(t, err)
	assert.Equal(t, "[2025-01-06, 2025-01-19]", p.String())

	p, err = scheduler.ClosedPeriod(payroll.PeriodWeek, at("2025-01-15 12:00"))
	require.NoError(t, err)
	assert.Equal(t, "[2025-01-06, 2025-01-12]", p.String())

	_, err = scheduler.ClosedPeriod(payroll.PeriodCustom, at("2025-01-15 12:00"))
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestRunOnce_WritesExportAndSkipsRepeat(t *testing.T) {
	// GIVEN: A closer configured with an export directory
	dir := filepath.Join(t.TempDir(), "exports")
	calc := payroll.NewCalculator(seeded(t))
	closer := scheduler.NewPeriodCloser(calc, scheduler.Options{Kind: payroll.PeriodBiweekly, ExportDir: dir}, nil)

	// WHEN: The job runs after the period ended
	run, err := closer.RunOnce(context.Background(), at("2025-01-20 06:00"))
	require.NoError(t, err)

	// THEN: The report is summarized and written to disk
	assert.Equal(t, scheduler.StatusCompleted, run.Status)
	assert.Equal(t, 1, run.Employees)
	assert.Equal(t, "160.00", run.TotalPay)
	assert.Equal(t, filepath.Join(dir, "payroll_2025-01-06_2025-01-19.csv"), run.File)

	content, err := os.ReadFile(run.File)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "Employee,Hourly Rate,"))
	assert.Contains(t, string(content), "Adam,20,8,0,8,160.00,0.00,160.00")

	// WHEN: It runs again for the same period
	again, err := closer.RunOnce(context.Background(), at("2025-01-21 06:00"))
	require.NoError(t, err)

	// THEN: The period is not recomputed
	assert.Equal(t, scheduler.StatusSkipped, again.Status)

	runs := closer.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, scheduler.StatusSkipped, runs[0].Status)
	assert.Equal(t, scheduler.StatusCompleted, runs[1].Status)
}

func TestRunOnce_NoExportDir(t *testing.T) {
	closer := scheduler.NewPeriodCloser(payroll.NewCalculator(seeded(t)), scheduler.Options{Kind: payroll.PeriodWeek}, nil)

	run, err := closer.RunOnce(context.Background(), at("2025-01-13 06:00"))
	require.NoError(t, err)
	assert.Empty(t, run.File)
	assert.Equal(t, "160.00", run.TotalPay)
}

func TestRunOnce_FailureIsRecordedAndRetried(t *testing.T) {
	// GIVEN: A store whose reads fail
	s := seeded(t)
	s.FailWith = errors.New("disk on fire")
	closer := scheduler.NewPeriodCloser(payroll.NewCalculator(s), scheduler.Options{Kind: payroll.PeriodWeek}, nil)

	// WHEN: The job runs
	run, err := closer.RunOnce(context.Background(), at("2025-01-13 06:00"))

	// THEN: The failure is returned and recorded
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrDataProvider)
	assert.Equal(t, scheduler.StatusFailed, run.Status)
	assert.Contains(t, run.Error, "disk on fire")

	// WHEN: The store recovers
	s.FailWith = nil
	run, err = closer.RunOnce(context.Background(), at("2025-01-13 07:00"))

	// THEN: The same period closes on the next attempt
	require.NoError(t, err)
	assert.Equal(t, scheduler.StatusCompleted, run.Status)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	closer := scheduler.NewPeriodCloser(payroll.NewCalculator(store.NewMemory()), scheduler.Options{}, nil)
	assert.Error(t, closer.Start("every tuesday"))
	assert.True(t, closer.NextRun().IsZero())
}

func TestStartStop(t *testing.T) {
	closer := scheduler.NewPeriodCloser(payroll.NewCalculator(store.NewMemory()), scheduler.Options{}, nil)
	require.NoError(t, closer.Start("0 6 * * 1"))
	next := closer.NextRun()
	assert.Equal(t, time.Monday, next.Weekday())
	closer.Stop()
}
