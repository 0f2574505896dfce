// Package reconcile merges freshly fetched spreadsheet rows into the
// persisted candidate records.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sort"

	"github.com/beluccky/candidate-bot/internal/dates"
	"github.com/beluccky/candidate-bot/internal/model"
)

// RowSource fetches all raw candidate rows from the spreadsheet.
type RowSource interface {
	FetchRows(ctx context.Context) ([]model.SheetRow, error)
}

// CandidateStore is the subset of store operations reconciliation needs.
type CandidateStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, c model.Candidate) (bool, error)
}

// Summary reports what one reconciliation pass did.
type Summary struct {
	// Labels is the sorted, de-duplicated set of recruiter labels seen in
	// this fetch. It replaces the previous directory wholesale.
	Labels []string

	RowsFetched  int
	Inserted     int
	AlreadyKnown int
	Skipped      int // rows with missing fields or unparseable dates
}

// Reconciler persists new candidates from fetched rows. Existing records are
// never touched: a later edit to a sheet row does not change a stored start
// date.
type Reconciler struct {
	source RowSource
	store  CandidateStore
}

// New constructs a Reconciler.
func New(source RowSource, store CandidateStore) *Reconciler {
	return &Reconciler{source: source, store: store}
}

// Run fetches all rows and inserts the candidates not seen before. A fetch
// failure aborts the pass with no writes; per-row store errors are logged
// and the remaining rows still processed.
func (r *Reconciler) Run(ctx context.Context) (Summary, error) {
	rows, err := r.source.FetchRows(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch rows: %w", err)
	}

	sum := Summary{RowsFetched: len(rows)}
	labels := map[string]struct{}{}

	for _, row := range rows {
		if row.Recruiter != "" {
			labels[row.Recruiter] = struct{}{}
		}

		c, ok := candidateFromRow(row)
		if !ok {
			sum.Skipped++
			continue
		}

		exists, err := r.store.Exists(ctx, c.ID)
		if err != nil {
			log.Printf("[reconcile] Exists(%s) error: %v — continuing", c.ID, err)
			continue
		}
		if exists {
			sum.AlreadyKnown++
			continue
		}

		inserted, err := r.store.Insert(ctx, c)
		if err != nil {
			log.Printf("[reconcile] Insert(%s) error: %v — continuing", c.ID, err)
			continue
		}
		if inserted {
			log.Printf("[reconcile] New candidate %s: %s | %s | %s",
				c.ID, c.Name, c.Object, c.StartDate.Format(dates.ISO))
			sum.Inserted++
		} else {
			// Lost an insert race with a concurrent writer: already tracked.
			sum.AlreadyKnown++
		}
	}

	sum.Labels = make([]string, 0, len(labels))
	for l := range labels {
		sum.Labels = append(sum.Labels, l)
	}
	sort.Strings(sum.Labels)

	return sum, nil
}

// candidateFromRow validates one raw row. Rows with an empty name, object or
// date cell are routine (future rows filled in ahead of time) and skipped
// quietly; a date cell that fails to parse is worth a warning.
func candidateFromRow(row model.SheetRow) (model.Candidate, bool) {
	if row.Name == "" || row.Object == "" || row.DateText == "" {
		slog.Debug("skipping incomplete row", "sheet", row.SheetName, "row", row.RowNumber)
		return model.Candidate{}, false
	}

	startDate, ok := dates.Normalize(row.DateText)
	if !ok {
		slog.Warn("unparseable start date",
			"sheet", row.SheetName, "row", row.RowNumber, "raw", row.DateText)
		return model.Candidate{}, false
	}

	return model.Candidate{
		ID:             fmt.Sprintf("%s_%d", row.SheetName, row.RowNumber),
		Name:           row.Name,
		Object:         row.Object,
		StartDate:      startDate,
		RecruiterLabel: row.Recruiter,
	}, true
}
