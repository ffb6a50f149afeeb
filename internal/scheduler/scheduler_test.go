package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/domain/models"
)

type fakeSource struct {
	days int
	err  error
}

func (f *fakeSource) Digest(_ context.Context, days int) (string, []models.SummaryRow, error) {
	f.days = days
	if f.err != nil {
		return "", nil, f.err
	}
	return "Stock summary", []models.SummaryRow{{ItemName: "Tea", TotalSold: 5}}, nil
}

type fakeExporter struct {
	date string
	rows []models.SummaryRow
	err  error
}

func (f *fakeExporter) ExportSummary(_ context.Context, reportDate string, rows []models.SummaryRow) error {
	f.date = reportDate
	f.rows = rows
	return f.err
}

type fakeNotifier struct {
	bodies []string
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, body string) (string, error) {
	f.bodies = append(f.bodies, body)
	return "wamid.1", f.err
}

var testReporting = config.ReportingConfig{CronSchedule: "0 22 * * *", Timezone: "UTC", WindowDays: 7}

func TestRunOnceDeliversToSinks(t *testing.T) {
	source := &fakeSource{}
	exporter := &fakeExporter{}
	notifier := &fakeNotifier{}

	s := NewScheduler(testReporting, time.UTC, source, exporter, notifier, nil)
	s.now = func() time.Time { return time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC) }
	require.NoError(t, s.RunOnce(context.Background()))

	assert.Equal(t, 7, source.days)
	assert.Equal(t, "2024-03-10", exporter.date)
	require.Len(t, exporter.rows, 1)
	assert.Equal(t, []string{"Stock summary"}, notifier.bodies)
}

func TestRunOnceStampsReportDateInLocation(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*60*60)
	exporter := &fakeExporter{}

	s := NewScheduler(testReporting, plus3, &fakeSource{}, exporter, nil, nil)
	s.now = func() time.Time { return time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC) }
	require.NoError(t, s.RunOnce(context.Background()))

	assert.Equal(t, "2024-03-11", exporter.date)
}

func TestRunOnceToleratesSinkFailures(t *testing.T) {
	exporter := &fakeExporter{err: errors.New("sheets down")}
	notifier := &fakeNotifier{err: errors.New("whatsapp down")}

	s := NewScheduler(testReporting, time.UTC, &fakeSource{}, exporter, notifier, nil)
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Len(t, notifier.bodies, 1)
}

func TestRunOnceWithoutSinks(t *testing.T) {
	s := NewScheduler(testReporting, nil, &fakeSource{}, nil, nil, nil)
	assert.NoError(t, s.RunOnce(context.Background()))
}

func TestRunOnceFailsWhenDigestFails(t *testing.T) {
	notifier := &fakeNotifier{}
	s := NewScheduler(testReporting, time.UTC, &fakeSource{err: errors.New("ledger offline")}, nil, notifier, nil)

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger offline")
	assert.Empty(t, notifier.bodies)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	cfg := testReporting
	cfg.CronSchedule = "every evening"

	s := NewScheduler(cfg, time.UTC, &fakeSource{}, nil, nil, nil)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(testReporting, time.UTC, &fakeSource{}, nil, nil, nil)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}
