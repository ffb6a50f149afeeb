package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository"
	"github.com/mamadbah2/stocktake/internal/service/validation"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

const (
	defaultSummaryDays = 7
	confirmWindow      = 5 * time.Minute
)

const helpText = `Stock commands:
/count <item> <current> <restocks> - record today's count
/today - list today's counts
/summary [days] - sales summary, default 7 days
/check <item> <actual sales> - compare with today's calculated sales
/delete <item> <YYYY-MM-DD> - remove an entry (asks for confirmation)`

// CountService is the ledger side of the command channel.
type CountService interface {
	RecordDailyCount(ctx context.Context, in models.SubmitCount) (models.CountResult, error)
	ListToday(ctx context.Context) ([]models.CountRecord, error)
	DeleteEntry(ctx context.Context, itemName, date string) error
}

// ReportService is the reporting side of the command channel.
type ReportService interface {
	Digest(ctx context.Context, days int) (string, []models.SummaryRow, error)
	CheckTheft(ctx context.Context, req models.TheftCheckRequest) (models.TheftCheck, error)
}

// Service executes parsed chat commands against the counting and reporting services.
type Service struct {
	counts   CountService
	reports  ReportService
	sessions *SessionManager
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(counts CountService, reports ReportService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		counts:   counts,
		reports:  reports,
		sessions: NewSessionManager(),
		logger:   logger,
		now:      time.Now,
	}
}

// HandleCommand runs cmd for sender and returns the reply text. Input
// problems become replies; only unexpected failures are returned as errors.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	var (
		reply string
		err   error
	)
	switch cmd.Type {
	case models.CommandCount:
		reply, err = s.count(ctx, cmd.Args)
	case models.CommandToday:
		reply, err = s.today(ctx)
	case models.CommandSummary:
		reply, err = s.summary(ctx, cmd.Args)
	case models.CommandCheck:
		reply, err = s.check(ctx, cmd.Args)
	case models.CommandDelete:
		reply, err = s.requestDelete(cmd.Args, sender)
	case models.CommandConfirm:
		reply, err = s.confirmDelete(ctx, sender)
	case models.CommandCancel:
		if s.sessions.Clear(sender) {
			return "Deletion cancelled.", nil
		}
		return "Nothing to cancel.", nil
	case models.CommandHelp:
		return helpText, nil
	default:
		return "Unknown command.\n" + helpText, nil
	}

	switch {
	case err == nil:
		return reply, nil
	case errors.Is(err, ErrInvalidArguments):
		return usage(cmd.Type), nil
	case errors.Is(err, validation.ErrInvalidInput):
		return "Could not do that: " + strings.TrimPrefix(err.Error(), validation.ErrInvalidInput.Error()+": "), nil
	case errors.Is(err, repository.ErrNotFound):
		return "Entry not found.", nil
	default:
		return "", err
	}
}

func (s *Service) count(ctx context.Context, args []string) (string, error) {
	if len(args) < 3 {
		return "", ErrInvalidArguments
	}
	n := len(args)
	current, err := models.ParseStrictInt(args[n-2])
	if err != nil {
		return "", ErrInvalidArguments
	}
	restocks, err := models.ParseStrictInt(args[n-1])
	if err != nil {
		return "", ErrInvalidArguments
	}

	result, err := s.counts.RecordDailyCount(ctx, models.SubmitCount{
		ItemName:         strings.Join(args[:n-2], " "),
		CurrentCount:     current,
		RestocksReceived: restocks,
	})
	if err != nil {
		return "", err
	}

	rec := result.Record
	return fmt.Sprintf("%s\n%s on %s: start %d, restocks %d, now %d, sold %d.",
		result.Message, rec.ItemName, rec.Date, rec.YesterdayCount, rec.RestocksReceived, rec.CurrentCount, rec.SoldCalculated), nil
}

func (s *Service) today(ctx context.Context) (string, error) {
	records, err := s.counts.ListToday(ctx)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "No counts recorded today.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today's counts (%s):", records[0].Date)
	for _, rec := range records {
		fmt.Fprintf(&b, "\n- %s: %d in stock, %d sold", rec.ItemName, rec.CurrentCount, rec.SoldCalculated)
	}
	return b.String(), nil
}

func (s *Service) summary(ctx context.Context, args []string) (string, error) {
	days := defaultSummaryDays
	if len(args) > 0 {
		parsed, err := models.ParseStrictInt(args[0])
		if err != nil {
			return "", ErrInvalidArguments
		}
		days = parsed
	}

	text, _, err := s.reports.Digest(ctx, days)
	return text, err
}

func (s *Service) check(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", ErrInvalidArguments
	}
	actual, err := models.ParseStrictInt(args[len(args)-1])
	if err != nil {
		return "", ErrInvalidArguments
	}

	check, err := s.reports.CheckTheft(ctx, models.TheftCheckRequest{
		ItemName:    strings.Join(args[:len(args)-1], " "),
		ActualSales: actual,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%s): calculated %d, actual %d.\n%s",
		check.ItemName, check.Date, check.CalculatedSales, check.ActualSales, check.Message), nil
}

func (s *Service) requestDelete(args []string, sender string) (string, error) {
	if len(args) < 2 {
		return "", ErrInvalidArguments
	}
	date := args[len(args)-1]
	if _, err := models.ParseDate(date); err != nil {
		return "", ErrInvalidArguments
	}
	itemName := strings.Join(args[:len(args)-1], " ")

	s.sessions.Remember(sender, PendingDelete{
		ItemName:  itemName,
		Date:      date,
		ExpiresAt: s.now().Add(confirmWindow),
	})
	return fmt.Sprintf("Reply YES to delete %s on %s, or NO to keep it.", itemName, date), nil
}

func (s *Service) confirmDelete(ctx context.Context, sender string) (string, error) {
	pending, ok := s.sessions.Take(sender, s.now())
	if !ok {
		return "Nothing to confirm.", nil
	}

	if err := s.counts.DeleteEntry(ctx, pending.ItemName, pending.Date); err != nil {
		return "", err
	}
	s.logger.Info("entry deleted over chat",
		zap.String("sender", sender),
		zap.String("item", pending.ItemName),
		zap.String("date", pending.Date))
	return fmt.Sprintf("Deleted %s on %s.", pending.ItemName, pending.Date), nil
}

func usage(cmd models.CommandType) string {
	switch cmd {
	case models.CommandCount:
		return "Usage: /count <item> <current> <restocks>, e.g. /count Coffee Beans 80 50"
	case models.CommandSummary:
		return "Usage: /summary [days], e.g. /summary 7"
	case models.CommandCheck:
		return "Usage: /check <item> <actual sales>, e.g. /check Coffee Beans 65"
	case models.CommandDelete:
		return "Usage: /delete <item> <YYYY-MM-DD>, e.g. /delete Coffee Beans 2024-03-02"
	default:
		return helpText
	}
}
