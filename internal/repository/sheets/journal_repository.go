package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/SleepTheGod/Cryptozoo/internal/config"
	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
)

const journalRange = "Journal!A:F"

// RowWriter appends a row of values to a sheet range.
type RowWriter interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository implements RowWriter using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// Journal writes one row per game event.
type Journal struct {
	writer RowWriter
}

// NewJournal wraps a row writer as a journal sink.
func NewJournal(writer RowWriter) *Journal {
	return &Journal{writer: writer}
}

// Record appends the event as a row.
func (j *Journal) Record(ctx context.Context, event models.JournalEvent) error {
	return j.writer.WriteRow(ctx, journalRange, EventRow(event))
}

// EventRow lays out a journal event as sheet cells.
func EventRow(event models.JournalEvent) []interface{} {
	return []interface{}{
		event.CreatedAt.UTC().Format(time.RFC3339),
		string(event.Type),
		event.SubjectID,
		event.Detail,
		event.Amount,
		event.Balance,
	}
}
