package lifecycle

import (
	"context"
	"errors"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
)

// Journal receives an audit record for every completed or failed flow.
type Journal interface {
	Record(ctx context.Context, event models.JournalEvent) error
}

// MultiJournal fans an event out to every sink and joins their errors.
type MultiJournal []Journal

// Record implements Journal.
func (m MultiJournal) Record(ctx context.Context, event models.JournalEvent) error {
	var errs []error
	for _, j := range m {
		if j == nil {
			continue
		}
		if err := j.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopJournal struct{}

func (nopJournal) Record(context.Context, models.JournalEvent) error { return nil }
